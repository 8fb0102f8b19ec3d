package balances

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/accounts"
	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

type TxRepository interface {
	LockAccounts(ctx context.Context, scope Scope) ([]accounts.Account, error)
	LedgerEntries(ctx context.Context, accountID int64) ([]LedgerEntry, error)
	RewriteRunningBalances(ctx context.Context, updates []RunningBalance) error
	SetCurrentBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, pgx.ReadCommitted, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// LockAccounts takes row locks in id order so concurrent posters wait.
func (r *txRepository) LockAccounts(ctx context.Context, scope Scope) ([]accounts.Account, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case len(scope.AccountIDs) > 0:
		args = append(args, scope.AccountIDs)
		where = append(where, fmt.Sprintf("id = ANY($%d)", len(args)))
	case len(scope.Subtypes) > 0:
		args = append(args, scope.Subtypes)
		where = append(where, fmt.Sprintf("subtype = ANY($%d)", len(args)), "is_active")
	}
	query := `SELECT ` + accounts.SelectColumns + ` FROM accounts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id FOR UPDATE`
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StoreFailure("lock accounts", err)
	}
	defer rows.Close()
	var out []accounts.Account
	for rows.Next() {
		a, err := accounts.ScanAccount(rows)
		if err != nil {
			return nil, shared.StoreFailure("scan account", err)
		}
		out = append(out, a)
	}
	return out, shared.StoreFailure("lock accounts", rows.Err())
}

func (r *txRepository) LedgerEntries(ctx context.Context, accountID int64) ([]LedgerEntry, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, delta, running_balance FROM general_ledger WHERE account_id = $1 ORDER BY entry_date, id`, accountID)
	if err != nil {
		return nil, shared.StoreFailure("ledger entries", err)
	}
	defer rows.Close()
	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.Delta, &e.RunningBalance); err != nil {
			return nil, shared.StoreFailure("scan ledger entry", err)
		}
		out = append(out, e)
	}
	return out, shared.StoreFailure("ledger entries", rows.Err())
}

func (r *txRepository) RewriteRunningBalances(ctx context.Context, updates []RunningBalance) error {
	if len(updates) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE general_ledger SET running_balance = $2 WHERE id = $1`, u.LedgerID, shared.Numeric(u.Balance))
	}
	br := r.tx.SendBatch(ctx, batch)
	for range updates {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return shared.StoreFailure("rewrite running balances", err)
		}
	}
	return shared.StoreFailure("rewrite running balances", br.Close())
}

func (r *txRepository) SetCurrentBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounts SET current_balance = $2, updated_at = NOW() WHERE id = $1`, accountID, shared.Numeric(balance))
	return shared.StoreFailure("set current balance", err)
}
