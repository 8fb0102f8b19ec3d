package shared

import (
	"log/slog"
	"net/http"

	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
)

// RespondError writes a problem response for err and logs server-side failures.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	if status, _ := HTTPStatus(err); status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), op, slog.Any("error", err))
	}
	httpx.RespondError(w, err, HTTPStatus)
}
