package journals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	internalShared "github.com/razalrahmanp/palaka-sub014/internal/shared"
)

type memoryKeys struct {
	claimed map[string]bool
}

func (m *memoryKeys) Claim(_ context.Context, scope, key string) error {
	if m.claimed[scope+"/"+key] {
		return internalShared.ErrKeyReplayed
	}
	m.claimed[scope+"/"+key] = true
	return nil
}

func (m *memoryKeys) Release(_ context.Context, scope, key string) error {
	delete(m.claimed, scope+"/"+key)
	return nil
}

func newTestRouter(t *testing.T) (http.Handler, *memoryKeys) {
	t.Helper()
	svc, _, _, _ := newTestService(t)
	keys := &memoryKeys{claimed: map[string]bool{}}
	r := chi.NewRouter()
	r.Route("/journals", NewHandler(nil, svc, keys).MountRoutes)
	return r, keys
}

func send(h http.Handler, method, path, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(internalShared.IdempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const cashSaleBody = `{"entry_date":"2025-05-02","description":"walk-in sofa sale","lines":[
	{"account_id":1,"debit_amount":"450.00"},
	{"account_id":2,"credit_amount":"450.00"}]}`

func TestCreateJournalHonoursIdempotencyKey(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := send(h, http.MethodPost, "/journals", cashSaleBody, "till-7-0001")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(h, http.MethodPost, "/journals", cashSaleBody, "till-7-0001")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateJournalReleasesKeyOnRejection(t *testing.T) {
	h, keys := newTestRouter(t)
	body := `{"entry_date":"2025-05-02","lines":[{"account_id":5,"debit_amount":"10"},{"account_id":2,"credit_amount":"10"}]}`

	rec := send(h, http.MethodPost, "/journals", body, "till-7-0002")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, keys.claimed)
}

func TestPostJournalTwiceConflicts(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := send(h, http.MethodPost, "/journals", cashSaleBody, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "/journals/1/post", "", "").Code)
	require.Equal(t, http.StatusConflict, send(h, http.MethodPost, "/journals/1/post", "", "").Code)
}

func TestDeleteBySourceRejectsMalformedID(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := send(h, http.MethodDelete, "/journals/by-source/sales_invoice/not-a-uuid", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
