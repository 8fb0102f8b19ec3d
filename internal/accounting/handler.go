package accounting

import (
	"github.com/go-chi/chi/v5"
)

// RouteMounter is implemented by each ledger sub-handler.
type RouteMounter interface {
	MountRoutes(r chi.Router)
}

// Handler wires the ledger endpoints under one router.
type Handler struct {
	accounts RouteMounter
	journals RouteMounter
	balances RouteMounter
	reports  RouteMounter
	aging    RouteMounter
}

// NewHandler assembles a Handler from already constructed sub-handlers.
func NewHandler(accounts, journals, balances, reports, aging RouteMounter) *Handler {
	return &Handler{accounts: accounts, journals: journals, balances: balances, reports: reports, aging: aging}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", h.accounts.MountRoutes)
	r.Route("/journals", h.journals.MountRoutes)
	r.Route("/balances", h.balances.MountRoutes)
	r.Route("/reports", func(r chi.Router) {
		h.reports.MountRoutes(r)
		h.aging.MountRoutes(r)
	})
}
