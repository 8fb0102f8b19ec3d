package aging

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razalrahmanp/palaka-sub014/internal/accounting/shared"
)

// Repository loads documents that may still carry an unpaid remainder.
type Repository interface {
	OpenReceivables(ctx context.Context, asOf time.Time) ([]OpenDocument, error)
	OpenPayables(ctx context.Context, asOf time.Time) ([]OpenDocument, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const receivablesSQL = `SELECT c.id, c.name, i.id, i.invoice_number, i.invoice_date, i.total_amount,
    COALESCE((SELECT SUM(p.amount) FROM sales_payments p WHERE p.invoice_id = i.id AND p.payment_date <= $1), 0)
FROM sales_invoices i
JOIN customers c ON c.id = i.customer_id
WHERE i.invoice_date <= $1 AND i.status NOT IN ('CANCELLED', 'VOID')
ORDER BY c.name, i.invoice_date, i.id`

const payablesSQL = `SELECT s.id, s.name, b.id, b.bill_number, b.bill_date, b.total_amount,
    COALESCE((SELECT SUM(p.amount) FROM vendor_payments p WHERE p.bill_id = b.id AND p.payment_date <= $1), 0)
FROM vendor_bills b
JOIN suppliers s ON s.id = b.supplier_id
WHERE b.bill_date <= $1 AND b.status NOT IN ('CANCELLED', 'VOID')
ORDER BY s.name, b.bill_date, b.id`

func (r *repository) OpenReceivables(ctx context.Context, asOf time.Time) ([]OpenDocument, error) {
	return r.query(ctx, "open receivables", receivablesSQL, asOf)
}

func (r *repository) OpenPayables(ctx context.Context, asOf time.Time) ([]OpenDocument, error) {
	return r.query(ctx, "open payables", payablesSQL, asOf)
}

func (r *repository) query(ctx context.Context, op, sql string, asOf time.Time) ([]OpenDocument, error) {
	rows, err := r.db.Query(ctx, sql, asOf)
	if err != nil {
		return nil, shared.StoreFailure(op, err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (OpenDocument, error) {
		var doc OpenDocument
		err := row.Scan(&doc.CounterpartyID, &doc.CounterpartyName, &doc.DocumentID, &doc.DocumentNumber,
			&doc.DocumentDate, &doc.Amount, &doc.Paid)
		return doc, err
	})
	if err != nil {
		return nil, shared.StoreFailure(op, err)
	}
	return docs, nil
}
