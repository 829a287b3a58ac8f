package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/catalog"
	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// ListFilter narrows List. Zero values mean no filtering on that axis.
// Page and PerPage of zero disable pagination.
type ListFilter struct {
	Range      shared.DateRange
	CustomerID *int64
	Page       int
	PerPage    int
}

type Repository interface {
	// Create persists the invoice header, its line items in order, and the
	// matching stock decrements as one transaction. A missing product,
	// either at insert or at decrement time, aborts the whole unit.
	Create(ctx context.Context, invoice Invoice) (Invoice, error)
	Get(ctx context.Context, id string) (Invoice, error)
	// List returns a page of invoices newest first plus the total match count.
	List(ctx context.Context, filter ListFilter) ([]Invoice, int, error)
	MarkRefunded(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Create(ctx context.Context, invoice Invoice) (Invoice, error) {
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now()
	}

	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if invoice.ID == "" {
			id, err := nextNumber(ctx, tx, invoice.CreatedAt)
			if err != nil {
				return fmt.Errorf("generate invoice number: %w", err)
			}
			invoice.ID = id
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO invoices (id, created_at, customer_id, cashier_id, subtotal, discount, total, payment_method, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			invoice.ID, invoice.CreatedAt, invoice.CustomerID, invoice.CashierID,
			invoice.Subtotal, invoice.Discount, invoice.Total, invoice.PaymentMethod, invoice.Status)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: invoice %s already exists", shared.ErrConflict, invoice.ID)
			}
			return err
		}

		for i := range invoice.Items {
			item := &invoice.Items[i]
			item.InvoiceID = invoice.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO invoice_items (invoice_id, product_id, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				item.InvoiceID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal).Scan(&item.ID)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23503" {
					return fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
				}
				return err
			}

			ok, err := catalog.AdjustStock(ctx, tx, item.ProductID, -item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("product %d: %w", item.ProductID, shared.ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

// nextNumber draws the per-day sequence from the invoice_counters row for the
// day. The upsert takes a row lock, so concurrent checkouts queue here and
// each gets a distinct number. Runs inside the checkout transaction.
func nextNumber(ctx context.Context, q db.Querier, at time.Time) (string, error) {
	day := at.Format("060102")
	var n int
	err := q.QueryRow(ctx, `
		INSERT INTO invoice_counters (day, counter) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET counter = invoice_counters.counter + 1
		RETURNING counter`, day).Scan(&n)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%04d", day, n), nil
}

const invoiceColumns = `i.id, i.created_at, i.customer_id, c.name, i.cashier_id, i.subtotal, i.discount, i.total, i.payment_method, i.status`

func (r *repository) Get(ctx context.Context, id string) (Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices i LEFT JOIN customers c ON c.id = i.customer_id WHERE i.id = $1`
	invoice, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, fmt.Errorf("invoice %s: %w", id, shared.ErrNotFound)
		}
		return Invoice{}, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT it.id, it.invoice_id, it.product_id, p.name, it.quantity, it.unit_price, it.line_total
		FROM invoice_items it
		JOIN products p ON p.id = it.product_id
		WHERE it.invoice_id = $1
		ORDER BY it.id`, id)
	if err != nil {
		return Invoice{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return Invoice{}, err
		}
		invoice.Items = append(invoice.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	argPos := 1

	if !filter.Range.From.IsZero() {
		where += fmt.Sprintf(" AND i.created_at >= $%d", argPos)
		args = append(args, filter.Range.From)
		argPos++
	}
	if !filter.Range.To.IsZero() {
		where += fmt.Sprintf(" AND i.created_at <= $%d", argPos)
		args = append(args, filter.Range.To)
		argPos++
	}
	if filter.CustomerID != nil {
		where += fmt.Sprintf(" AND i.customer_id = $%d", argPos)
		args = append(args, *filter.CustomerID)
		argPos++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM invoices i` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices i LEFT JOIN customers c ON c.id = i.customer_id` + where
	query += " ORDER BY i.created_at DESC"
	if filter.PerPage > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, filter.PerPage, (page-1)*filter.PerPage)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, total, rows.Err()
}

func (r *repository) MarkRefunded(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET status = $1 WHERE id = $2 AND status = $3`, StatusRefunded, id, StatusPaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("invoice %s: %w", id, shared.ErrNotFound)
	}
	return fmt.Errorf("%w: invoice %s is not refundable", shared.ErrConflict, id)
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var customerID, cashierID pgtype.Int8
	var customerName pgtype.Text
	err := row.Scan(&inv.ID, &inv.CreatedAt, &customerID, &customerName, &cashierID,
		&inv.Subtotal, &inv.Discount, &inv.Total, &inv.PaymentMethod, &inv.Status)
	if err != nil {
		return Invoice{}, err
	}
	if customerID.Valid {
		inv.CustomerID = &customerID.Int64
	}
	if customerName.Valid {
		inv.CustomerName = &customerName.String
	}
	if cashierID.Valid {
		inv.CashierID = &cashierID.Int64
	}
	return inv, nil
}
