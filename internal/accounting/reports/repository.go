package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

// Repository reads ledger aggregates for reports.
type Repository interface {
	AccountBalances(ctx context.Context, from, to time.Time) ([]AccountBalance, error)
	LedgerRows(ctx context.Context, from, to time.Time) ([]DaysheetRow, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// AccountBalances returns every account with its opening balance as of from
// and its movements inside [from, to].
func (r *repository) AccountBalances(ctx context.Context, from, to time.Time) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.code, a.name, a.type, a.normal_balance, a.opening_balance,
    COALESCE(SUM(g.debit_amount) FILTER (WHERE g.entry_date < $1), 0),
    COALESCE(SUM(g.credit_amount) FILTER (WHERE g.entry_date < $1), 0),
    COALESCE(SUM(g.debit_amount) FILTER (WHERE g.entry_date >= $1), 0),
    COALESCE(SUM(g.credit_amount) FILTER (WHERE g.entry_date >= $1), 0)
FROM accounts a
LEFT JOIN general_ledger g ON g.account_id = a.id AND g.entry_date <= $2
GROUP BY a.id
ORDER BY a.code`, from, to)
	if err != nil {
		return nil, shared.StoreFailure("account balances", err)
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var (
			acc               AccountBalance
			opening           decimal.Decimal
			preDebit, preCred decimal.Decimal
		)
		if err := rows.Scan(&acc.AccountID, &acc.Code, &acc.Name, &acc.Type, &acc.NormalBalance, &opening,
			&preDebit, &preCred, &acc.Debit, &acc.Credit); err != nil {
			return nil, shared.StoreFailure("scan account balance", err)
		}
		acc.Opening = opening.Add(acc.NormalBalance.Delta(preDebit, preCred))
		out = append(out, acc)
	}
	return out, shared.StoreFailure("account balances", rows.Err())
}

func (r *repository) LedgerRows(ctx context.Context, from, to time.Time) ([]DaysheetRow, error) {
	rows, err := r.db.Query(ctx, `SELECT g.journal_entry_id, g.journal_number, g.entry_date, g.line_number, a.code, a.name,
    g.description, g.debit_amount, g.credit_amount, g.is_reversal
FROM general_ledger g
JOIN accounts a ON a.id = g.account_id
WHERE g.entry_date BETWEEN $1 AND $2
ORDER BY g.entry_date, g.journal_number, g.is_reversal, g.line_number`, from, to)
	if err != nil {
		return nil, shared.StoreFailure("ledger rows", err)
	}
	defer rows.Close()
	var out []DaysheetRow
	for rows.Next() {
		var row DaysheetRow
		if err := rows.Scan(&row.JournalEntryID, &row.JournalNumber, &row.EntryDate, &row.LineNumber, &row.AccountCode,
			&row.AccountName, &row.Description, &row.Debit, &row.Credit, &row.IsReversal); err != nil {
			return nil, shared.StoreFailure("scan ledger row", err)
		}
		out = append(out, row)
	}
	return out, shared.StoreFailure("ledger rows", rows.Err())
}
