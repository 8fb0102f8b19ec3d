package accounts

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
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Subtype: q.Get("subtype"), ActiveOnly: q.Get("active") == "true"}
	if raw := q.Get("type"); raw != "" {
		t, err := ParseAccountType(raw)
		if err != nil {
			shared.RespondError(w, r, h.logger, "list accounts", err)
			return
		}
		filter.Type = t
	}
	accounts, err := h.service.List(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, r, h.logger, "list accounts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := httpx.DecodeAndValidate(w, r, &req); err != nil {
		shared.RespondError(w, r, h.logger, "create account", err)
		return
	}
	in, err := req.ToInput()
	if err != nil {
		shared.RespondError(w, r, h.logger, "create account", err)
		return
	}
	account, err := h.service.Create(r.Context(), in)
	if err != nil {
		shared.RespondError(w, r, h.logger, "create account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"), "account id")
	if err != nil {
		shared.RespondError(w, r, h.logger, "get account", err)
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, r, h.logger, "get account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"), "account id")
	if err != nil {
		shared.RespondError(w, r, h.logger, "deactivate account", err)
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		shared.RespondError(w, r, h.logger, "deactivate account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"), "account id")
	if err != nil {
		shared.RespondError(w, r, h.logger, "delete account", err)
		return
	}
	deactivated, err := h.service.Remove(r.Context(), id)
	if err != nil {
		shared.RespondError(w, r, h.logger, "delete account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "deleted": !deactivated, "deactivated": deactivated})
}
