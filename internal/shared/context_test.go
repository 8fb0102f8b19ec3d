package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActorMiddleware(t *testing.T) {
	var got int64
	h := ActorMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorHeader, "42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, int64(42), got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorHeader, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Zero(t, got)
}

func TestPaginationBounds(t *testing.T) {
	p := NewPagination(0, 0, 45)
	require.Equal(t, Pagination{Page: 1, PerPage: 20, Total: 45, TotalPages: 3}, p)

	limit, offset := LimitOffset(3, 500)
	require.Equal(t, 200, limit)
	require.Equal(t, 400, offset)
}

func TestRecalcLockKey(t *testing.T) {
	require.Equal(t, "ledger:recalc:bank,cash:lock", RecalcLockKey("BANK,CASH"))
	require.Equal(t, "ledger:recalc:all:lock", RecalcLockKey(""))
}

func TestJournalAudit(t *testing.T) {
	at := time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC)
	log := JournalAudit(7, AuditJournalPost, 981, at, map[string]any{"journal_number": "JE-20260331-000981"})
	require.Equal(t, AuditEntityJournal, log.Entity)
	require.Equal(t, "981", log.EntityID)
	require.Equal(t, "journal.post", log.Action)
	require.Equal(t, at, log.At)
}

func TestNilAuditLoggerIsNoop(t *testing.T) {
	var l *AuditLogger
	require.NoError(t, l.Record(context.Background(), AuditLog{}))
}
