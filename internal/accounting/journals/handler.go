package journals

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
	internalShared "github.com/razalrahmanp/palaka-sub014/internal/shared"
)

const idempotencyScope = "accounting.journals"

// IdempotencyPort records client supplied request keys.
type IdempotencyPort interface {
	Claim(ctx context.Context, scope, key string) error
	Release(ctx context.Context, scope, key string) error
}

type Handler struct {
	service     *Service
	logger      *slog.Logger
	idempotency IdempotencyPort
}

func NewHandler(logger *slog.Logger, service *Service, idempotency IdempotencyPort) *Handler {
	return &Handler{logger: logger, service: service, idempotency: idempotency}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.QueryInt(r, "page", 1)
	if err != nil {
		shared.RespondError(w, r, h.logger, "list journals", err)
		return
	}
	perPage, err := httpx.QueryInt(r, "per_page", 20)
	if err != nil {
		shared.RespondError(w, r, h.logger, "list journals", err)
		return
	}
	filter := ListFilter{
		Status:     JournalStatus(r.URL.Query().Get("status")),
		SourceType: r.URL.Query().Get("source_type"),
	}
	if filter.From, err = optionalDate(r, "from"); err != nil {
		shared.RespondError(w, r, h.logger, "list journals", err)
		return
	}
	if filter.To, err = optionalDate(r, "to"); err != nil {
		shared.RespondError(w, r, h.logger, "list journals", err)
		return
	}
	filter.Limit, filter.Offset = internalShared.LimitOffset(page, perPage)
	entries, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, r, h.logger, "list journals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"journal_entries": entries,
		"pagination":      internalShared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateJournalRequest
	if err := httpx.DecodeAndValidate(w, r, &req); err != nil {
		shared.RespondError(w, r, h.logger, "create journal", err)
		return
	}
	in, err := req.ToInput(internalShared.ActorFromContext(r.Context()))
	if err != nil {
		shared.RespondError(w, r, h.logger, "create journal", err)
		return
	}
	key := r.Header.Get(internalShared.IdempotencyHeader)
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.Claim(r.Context(), idempotencyScope, key); err != nil {
			switch {
			case errors.Is(err, internalShared.ErrKeyReplayed):
				err = httpx.ErrDuplicate
			case errors.Is(err, internalShared.ErrKeyInvalid):
				err = shared.Validationf("invalid %s header", internalShared.IdempotencyHeader)
			default:
				err = shared.StoreFailure("idempotency", err)
			}
			shared.RespondError(w, r, h.logger, "create journal", err)
			return
		}
	}
	entry, err := h.service.CreateDraft(r.Context(), in)
	if err != nil {
		if key != "" && h.idempotency != nil {
			_ = h.idempotency.Release(r.Context(), idempotencyScope, key)
		}
		shared.RespondError(w, r, h.logger, "create journal", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"), "journal id")
	if err != nil {
		shared.RespondError(w, r, h.logger, "get journal", err)
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, r, h.logger, "get journal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"), "journal id")
	if err != nil {
		shared.RespondError(w, r, h.logger, "post journal", err)
		return
	}
	entry, err := h.service.Post(r.Context(), PostInput{EntryID: id, ActorID: internalShared.ActorFromContext(r.Context())})
	if err != nil {
		shared.RespondError(w, r, h.logger, "post journal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathInt64(chi.URLParam(r, "id"), "journal id")
	if err != nil {
		shared.RespondError(w, r, h.logger, "delete journal", err)
		return
	}
	result, err := h.service.ReverseOrDelete(r.Context(), ReverseInput{
		EntryID: id,
		ActorID: internalShared.ActorFromContext(r.Context()),
		Reason:  r.URL.Query().Get("reason"),
	})
	if err != nil {
		shared.RespondError(w, r, h.logger, "delete journal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// DeleteBySource unwinds every entry raised by one business document, e.g. a
// cancelled sales invoice.
func (h *Handler) DeleteBySource(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(chi.URLParam(r, "docID"))
	if err != nil {
		shared.RespondError(w, r, h.logger, "delete journals by source", shared.Validationf("source document id must be a uuid"))
		return
	}
	results, err := h.service.ReverseBySource(r.Context(), chi.URLParam(r, "type"), docID, internalShared.ActorFromContext(r.Context()))
	if err != nil {
		shared.RespondError(w, r, h.logger, "delete journals by source", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"results": results})
}

func optionalDate(r *http.Request, name string) (*time.Time, error) {
	if r.URL.Query().Get(name) == "" {
		return nil, nil
	}
	d, err := httpx.QueryDate(r, name, time.Time{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}
