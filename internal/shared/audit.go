package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ledger audit actions.
const (
	AuditJournalCreate  = "journal.create"
	AuditJournalPost    = "journal.post"
	AuditJournalReverse = "journal.reverse"
	AuditJournalDelete  = "journal.delete"
)

// AuditEntityJournal is the entity recorded for journal entry events.
const AuditEntityJournal = "journal_entry"

// AuditLog is one row of audit_logs.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// JournalAudit builds the audit row for an event on a journal entry.
func JournalAudit(actorID int64, action string, entryID int64, at time.Time, meta map[string]any) AuditLog {
	return AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   AuditEntityJournal,
		EntityID: strconv.FormatInt(entryID, 10),
		Meta:     meta,
		At:       at,
	}
}

var errIncompleteAudit = errors.New("audit: action, entity and entity id required")

// AuditLogger appends ledger events to audit_logs, outside the posting
// transaction.
type AuditLogger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAuditLogger(pool *pgxpool.Pool, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{pool: pool, logger: logger}
}

func (l *AuditLogger) Record(ctx context.Context, entry AuditLog) error {
	if l == nil || l.pool == nil {
		return nil
	}
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errIncompleteAudit
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	meta, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6)`, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, meta, entry.At.UTC())
	if err != nil && l.logger != nil {
		l.logger.WarnContext(ctx, "audit insert failed",
			slog.String("action", entry.Action),
			slog.String("entity_id", entry.EntityID),
			slog.Any("error", err))
	}
	return err
}
