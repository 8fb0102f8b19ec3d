package balances

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/recalculate", h.Recalculate)
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req RecalculateRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeAndValidate(w, r, &req); err != nil {
			shared.RespondError(w, r, h.logger, "recalculate balances", err)
			return
		}
	}
	results, err := h.service.Recalculate(r.Context(), req.Scope())
	if err != nil {
		shared.RespondError(w, r, h.logger, "recalculate balances", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"accounts": results,
		"drifted":  Drifted(results),
	})
}
