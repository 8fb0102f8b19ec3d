package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGIntegritySource runs the integrity checks against PostgreSQL.
type PGIntegritySource struct {
	pool *pgxpool.Pool
}

// NewPGIntegritySource wraps a pool.
func NewPGIntegritySource(pool *pgxpool.Pool) *PGIntegritySource {
	return &PGIntegritySource{pool: pool}
}

// UnbalancedEntries lists posted entries whose lines do not balance.
func (s *PGIntegritySource) UnbalancedEntries(ctx context.Context) ([]Finding, error) {
	return s.collect(ctx, CheckUnbalancedEntries, `SELECT e.journal_number, COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
FROM journal_entries e
LEFT JOIN journal_entry_lines l ON l.journal_entry_id = e.id
WHERE e.status = 'POSTED'
GROUP BY e.id, e.journal_number
HAVING ROUND(COALESCE(SUM(l.debit_amount), 0), 2) <> ROUND(COALESCE(SUM(l.credit_amount), 0), 2)
ORDER BY e.journal_number`)
}

// UnbalancedLedger lists ledger row groups, postings and reversals apart, whose
// debits and credits disagree.
func (s *PGIntegritySource) UnbalancedLedger(ctx context.Context) ([]Finding, error) {
	return s.collect(ctx, CheckUnbalancedLedger, `SELECT journal_number || CASE WHEN is_reversal THEN ' (reversal)' ELSE '' END,
    SUM(debit_amount), SUM(credit_amount)
FROM general_ledger
GROUP BY journal_entry_id, journal_number, is_reversal
HAVING ROUND(SUM(debit_amount), 2) <> ROUND(SUM(credit_amount), 2)
ORDER BY journal_number`)
}

// MissingLedgerRows lists posted entries that never reached the ledger.
func (s *PGIntegritySource) MissingLedgerRows(ctx context.Context) ([]Finding, error) {
	return s.collect(ctx, CheckMissingLedgerRows, `SELECT e.journal_number, COUNT(l.id)::numeric, 0::numeric
FROM journal_entries e
JOIN journal_entry_lines l ON l.journal_entry_id = e.id
WHERE e.status = 'POSTED'
  AND NOT EXISTS (SELECT 1 FROM general_ledger g WHERE g.journal_entry_id = e.id AND NOT g.is_reversal)
GROUP BY e.id, e.journal_number
ORDER BY e.journal_number`)
}

// BalanceDrift lists accounts whose cached balance differs from the replay of
// their ledger rows.
func (s *PGIntegritySource) BalanceDrift(ctx context.Context) ([]Finding, error) {
	return s.collect(ctx, CheckBalanceDrift, `SELECT a.code, a.opening_balance + COALESCE(SUM(g.delta), 0), a.current_balance
FROM accounts a
LEFT JOIN general_ledger g ON g.account_id = a.id
GROUP BY a.id, a.code, a.opening_balance, a.current_balance
HAVING a.current_balance <> a.opening_balance + COALESCE(SUM(g.delta), 0)
ORDER BY a.code`)
}

func (s *PGIntegritySource) collect(ctx context.Context, check, sql string) ([]Finding, error) {
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Finding, error) {
		f := Finding{Check: check}
		err := row.Scan(&f.Reference, &f.Expected, &f.Actual)
		return f, err
	})
}
