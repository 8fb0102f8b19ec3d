package aging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/aging/ar", h.Receivables)
	r.Get("/aging/ap", h.Payables)
}

func (h *Handler) Receivables(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		shared.RespondError(w, r, h.logger, "ar aging", err)
		return
	}
	report, err := h.service.Receivables(r.Context(), asOf)
	if err != nil {
		shared.RespondError(w, r, h.logger, "ar aging", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) Payables(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		shared.RespondError(w, r, h.logger, "ap aging", err)
		return
	}
	report, err := h.service.Payables(r.Context(), asOf)
	if err != nil {
		shared.RespondError(w, r, h.logger, "ap aging", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) asOf(r *http.Request) (time.Time, error) {
	now := h.now()
	return httpx.QueryDate(r, "as_of", time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}
