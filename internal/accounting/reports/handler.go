package reports

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
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/income-statement", h.IncomeStatement)
	r.Get("/daysheet", h.Daysheet)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.window(r)
	if err != nil {
		shared.RespondError(w, r, h.logger, "trial balance", err)
		return
	}
	report, err := h.service.TrialBalance(r.Context(), from, to)
	if err != nil {
		shared.RespondError(w, r, h.logger, "trial balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := httpx.QueryDate(r, "as_of", today(h.service.now()))
	if err != nil {
		shared.RespondError(w, r, h.logger, "balance sheet", err)
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), asOf)
	if err != nil {
		shared.RespondError(w, r, h.logger, "balance sheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.window(r)
	if err != nil {
		shared.RespondError(w, r, h.logger, "income statement", err)
		return
	}
	report, err := h.service.IncomeStatement(r.Context(), from, to)
	if err != nil {
		shared.RespondError(w, r, h.logger, "income statement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Daysheet defaults to today only.
func (h *Handler) Daysheet(w http.ResponseWriter, r *http.Request) {
	now := today(h.service.now())
	from, err := httpx.QueryDate(r, "from", now)
	if err != nil {
		shared.RespondError(w, r, h.logger, "daysheet", err)
		return
	}
	to, err := httpx.QueryDate(r, "to", from)
	if err != nil {
		shared.RespondError(w, r, h.logger, "daysheet", err)
		return
	}
	report, err := h.service.Daysheet(r.Context(), from, to)
	if err != nil {
		shared.RespondError(w, r, h.logger, "daysheet", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// window reads from/to, defaulting to fiscal year to date.
func (h *Handler) window(r *http.Request) (time.Time, time.Time, error) {
	to, err := httpx.QueryDate(r, "to", today(h.service.now()))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	defFrom, _ := h.service.DefaultRange(to)
	from, err := httpx.QueryDate(r, "from", defFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
