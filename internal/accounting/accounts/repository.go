package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
	"github.com/razalrahmanp/palaka-sub014/internal/platform/db"
)

// Repository persists chart of accounts rows.
type Repository interface {
	Create(ctx context.Context, in CreateInput, normal NormalBalance) (Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	List(ctx context.Context, filter ListFilter) ([]Account, error)
	HasActivity(ctx context.Context, id int64) (bool, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// SelectColumns lists account columns in ScanAccount order.
const SelectColumns = `id, code, name, type, subtype, normal_balance, parent_id, opening_balance, current_balance, is_active, created_at, updated_at`

// ScanAccount scans a row selected with SelectColumns.
func ScanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.Subtype, &a.NormalBalance, &a.ParentID,
		&a.OpeningBalance, &a.CurrentBalance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) Create(ctx context.Context, in CreateInput, normal NormalBalance) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (code, name, type, subtype, normal_balance, parent_id, opening_balance, current_balance)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
RETURNING `+SelectColumns,
		in.Code, in.Name, in.Type, in.Subtype, normal, in.ParentID, shared.Numeric(in.OpeningBalance))
	a, err := ScanAccount(row)
	if err != nil {
		if db.IsUniqueViolation(err, "accounts_code_key") {
			return Account{}, fmt.Errorf("%w: account code %s already exists", shared.ErrConflict, in.Code)
		}
		return Account{}, shared.StoreFailure("insert account", err)
	}
	return a, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	a, err := ScanAccount(r.db.QueryRow(ctx, `SELECT `+SelectColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.NotFoundf("account %d", id)
		}
		return Account{}, shared.StoreFailure("get account", err)
	}
	return a, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Subtype != "" {
		args = append(args, filter.Subtype)
		where = append(where, fmt.Sprintf("subtype = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "is_active")
	}
	query := `SELECT ` + SelectColumns + ` FROM accounts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY code`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StoreFailure("list accounts", err)
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := ScanAccount(rows)
		if err != nil {
			return nil, shared.StoreFailure("scan account", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, shared.StoreFailure("list accounts", rows.Err())
}

func (r *repository) HasActivity(ctx context.Context, id int64) (bool, error) {
	var used bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journal_entry_lines WHERE account_id = $1)
    OR EXISTS (SELECT 1 FROM general_ledger WHERE account_id = $1)
    OR EXISTS (SELECT 1 FROM accounts WHERE parent_id = $1)`, id).Scan(&used)
	if err != nil {
		return false, shared.StoreFailure("account activity", err)
	}
	return used, nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return shared.StoreFailure("update account", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("account %d", id)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return shared.StoreFailure("delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundf("account %d", id)
	}
	return nil
}
