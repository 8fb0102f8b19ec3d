package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]JournalEntry, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Get(ctx context.Context, id int64) (JournalEntry, error)
	FindBySource(ctx context.Context, docType string, docID uuid.UUID) ([]int64, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	GetAccounts(ctx context.Context, ids []int64) (map[int64]accounts.Account, error)
	NextJournalNumber(ctx context.Context, date time.Time) (string, error)
	InsertJournalEntry(ctx context.Context, in CreateInput) (JournalEntry, error)
	InsertJournalLines(ctx context.Context, entryID int64, lines []LineInput) ([]JournalLine, error)
	GetJournalForUpdate(ctx context.Context, entryID int64) (JournalEntry, []JournalLine, error)
	MarkPosted(ctx context.Context, entryID, actorID int64, at time.Time) error
	IncrementBalance(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error)
	InsertLedgerRows(ctx context.Context, rows []GeneralLedgerRow) error
	DeleteJournal(ctx context.Context, entryID int64) error
}

const entryColumns = `id, journal_number, entry_date, description, reference, status, source_document_type, source_document_id, posted_at, posted_by, created_by, created_at, updated_at`

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.JournalNumber, &e.EntryDate, &e.Description, &e.Reference, &e.Status,
		&e.SourceDocumentType, &e.SourceDocumentID, &e.PostedAt, &e.PostedBy, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func filterClause(filter ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("entry_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("entry_date <= $%d", len(args)))
	}
	if filter.SourceType != "" {
		args = append(args, filter.SourceType)
		where = append(where, fmt.Sprintf("source_document_type = $%d", len(args)))
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]JournalEntry, error) {
	clause, args := filterClause(filter)
	query := `SELECT ` + entryColumns + ` FROM journal_entries` + clause + ` ORDER BY entry_date DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StoreFailure("list journals", err)
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, shared.StoreFailure("scan journal", err)
		}
		entries = append(entries, e)
	}
	return entries, shared.StoreFailure("list journals", rows.Err())
}

func (r *repository) Count(ctx context.Context, filter ListFilter) (int, error) {
	clause, args := filterClause(filter)
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries`+clause, args...).Scan(&total); err != nil {
		return 0, shared.StoreFailure("count journals", err)
	}
	return total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.NotFoundf("journal entry %d", id)
		}
		return JournalEntry{}, shared.StoreFailure("get journal", err)
	}
	lines, err := queryLines(ctx, r.db, id)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *repository) FindBySource(ctx context.Context, docType string, docID uuid.UUID) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM journal_entries WHERE source_document_type = $1 AND source_document_id = $2 ORDER BY id`, docType, docID)
	if err != nil {
		return nil, shared.StoreFailure("find journals by source", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	return ids, shared.StoreFailure("find journals by source", err)
}

// WithTx runs fn at read committed; concurrent posters serialise on the
// account and entry row locks taken inside.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, pgx.ReadCommitted, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q querier, entryID int64) ([]JournalLine, error) {
	rows, err := q.Query(ctx, `SELECT id, journal_entry_id, line_number, account_id, debit_amount, credit_amount, description
FROM journal_entry_lines WHERE journal_entry_id = $1 ORDER BY line_number`, entryID)
	if err != nil {
		return nil, shared.StoreFailure("query journal lines", err)
	}
	defer rows.Close()
	var lines []JournalLine
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.JournalEntryID, &line.LineNumber, &line.AccountID, &line.DebitAmount, &line.CreditAmount, &line.Description); err != nil {
			return nil, shared.StoreFailure("scan journal line", err)
		}
		lines = append(lines, line)
	}
	return lines, shared.StoreFailure("query journal lines", rows.Err())
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccounts(ctx context.Context, ids []int64) (map[int64]accounts.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+accounts.SelectColumns+` FROM accounts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, shared.StoreFailure("load accounts", err)
	}
	defer rows.Close()
	out := make(map[int64]accounts.Account, len(ids))
	for rows.Next() {
		a, err := accounts.ScanAccount(rows)
		if err != nil {
			return nil, shared.StoreFailure("scan account", err)
		}
		out[a.ID] = a
	}
	return out, shared.StoreFailure("load accounts", rows.Err())
}

func (r *txRepository) NextJournalNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	if err := r.tx.QueryRow(ctx, `SELECT nextval('journal_number_seq')`).Scan(&seq); err != nil {
		return "", shared.StoreFailure("next journal number", err)
	}
	return FormatJournalNumber(date, seq), nil
}

// FormatJournalNumber renders JE-YYYYMMDD-NNNNNN.
func FormatJournalNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("JE-%s-%06d", date.Format("20060102"), seq)
}

func (r *txRepository) InsertJournalEntry(ctx context.Context, in CreateInput) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (journal_number, entry_date, description, reference, status, source_document_type, source_document_id, created_by)
VALUES ($1, $2, $3, $4, 'DRAFT', $5, $6, $7)
RETURNING `+entryColumns,
		in.JournalNumber, in.EntryDate, in.Description, in.Reference, in.SourceDocumentType, in.SourceDocumentID, in.CreatedBy)
	entry, err := scanEntry(row)
	if err != nil {
		if db.IsUniqueViolation(err, "journal_entries_number_key") {
			return JournalEntry{}, fmt.Errorf("%w: %s", shared.ErrDuplicateNumber, in.JournalNumber)
		}
		return JournalEntry{}, shared.StoreFailure("insert journal", err)
	}
	return entry, nil
}

func (r *txRepository) InsertJournalLines(ctx context.Context, entryID int64, lines []LineInput) ([]JournalLine, error) {
	out := make([]JournalLine, 0, len(lines))
	for idx, line := range lines {
		jl := JournalLine{
			JournalEntryID: entryID,
			LineNumber:     idx + 1,
			AccountID:      line.AccountID,
			DebitAmount:    line.Debit,
			CreditAmount:   line.Credit,
			Description:    line.Description,
		}
		err := r.tx.QueryRow(ctx, `INSERT INTO journal_entry_lines (journal_entry_id, line_number, account_id, debit_amount, credit_amount, description)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			entryID, jl.LineNumber, jl.AccountID, shared.Numeric(jl.DebitAmount), shared.Numeric(jl.CreditAmount), jl.Description).Scan(&jl.ID)
		if err != nil {
			return nil, shared.StoreFailure("insert journal line", err)
		}
		out = append(out, jl)
	}
	return out, nil
}

func (r *txRepository) GetJournalForUpdate(ctx context.Context, entryID int64) (JournalEntry, []JournalLine, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1 FOR UPDATE`, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, nil, shared.NotFoundf("journal entry %d", entryID)
		}
		return JournalEntry{}, nil, shared.StoreFailure("lock journal", err)
	}
	lines, err := queryLines(ctx, r.tx, entryID)
	if err != nil {
		return JournalEntry{}, nil, err
	}
	return entry, lines, nil
}

func (r *txRepository) MarkPosted(ctx context.Context, entryID, actorID int64, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status = 'POSTED', posted_at = $2, posted_by = $3, updated_at = NOW()
WHERE id = $1 AND status = 'DRAFT'`, entryID, at, nullInt(actorID))
	if err != nil {
		return shared.StoreFailure("mark posted", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %d", shared.ErrAlreadyPosted, entryID)
	}
	return nil
}

func (r *txRepository) IncrementBalance(ctx context.Context, accountID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.tx.QueryRow(ctx, `UPDATE accounts SET current_balance = current_balance + $2, updated_at = NOW()
WHERE id = $1 RETURNING current_balance`, accountID, shared.Numeric(delta)).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, shared.NotFoundf("account %d", accountID)
		}
		return decimal.Decimal{}, shared.StoreFailure("increment balance", err)
	}
	return balance, nil
}

func (r *txRepository) InsertLedgerRows(ctx context.Context, rows []GeneralLedgerRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`INSERT INTO general_ledger (journal_entry_id, journal_number, line_number, account_id, entry_date, description,
    debit_amount, credit_amount, delta, running_balance, fiscal_year, fiscal_period, is_reversal)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			row.JournalEntryID, row.JournalNumber, row.LineNumber, row.AccountID, row.EntryDate, row.Description,
			shared.Numeric(row.DebitAmount), shared.Numeric(row.CreditAmount), shared.Numeric(row.Delta),
			shared.Numeric(row.RunningBalance), row.FiscalYear, row.FiscalPeriod, row.IsReversal)
	}
	br := r.tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return shared.StoreFailure("insert ledger rows", err)
		}
	}
	return shared.StoreFailure("insert ledger rows", br.Close())
}

func (r *txRepository) DeleteJournal(ctx context.Context, entryID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE journal_entry_id = $1`, entryID); err != nil {
		return shared.StoreFailure("delete journal lines", err)
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1`, entryID)
	if err != nil {
		return shared.StoreFailure("delete journal", err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.NotFoundf("journal entry %d", entryID)
	}
	return nil
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
