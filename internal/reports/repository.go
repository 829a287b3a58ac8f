package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Repository computes aggregations over paid invoices. Empty windows yield
// empty slices.
type Repository interface {
	SalesByDay(ctx context.Context, r shared.DateRange) ([]SalesByDayRow, error)
	SalesByProduct(ctx context.Context, r shared.DateRange) ([]SalesByProductRow, error)
	SalesByCashier(ctx context.Context, r shared.DateRange) ([]SalesByCashierRow, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// rangeClause appends inclusive created_at bounds to a query that already
// filters on status.
func rangeClause(query string, r shared.DateRange, args []interface{}) (string, []interface{}) {
	argPos := len(args) + 1
	if !r.From.IsZero() {
		query += fmt.Sprintf(" AND i.created_at >= $%d", argPos)
		args = append(args, r.From)
		argPos++
	}
	if !r.To.IsZero() {
		query += fmt.Sprintf(" AND i.created_at <= $%d", argPos)
		args = append(args, r.To)
	}
	return query, args
}

func (r *repository) SalesByDay(ctx context.Context, dateRange shared.DateRange) ([]SalesByDayRow, error) {
	query := `
		SELECT to_char(i.created_at, 'YYYY-MM-DD') AS day, COALESCE(SUM(i.total), 0), COUNT(*)
		FROM invoices i
		WHERE i.status = 'paid'`
	var args []interface{}
	query, args = rangeClause(query, dateRange, args)
	query += " GROUP BY day ORDER BY day"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]SalesByDayRow, 0)
	for rows.Next() {
		var row SalesByDayRow
		if err := rows.Scan(&row.Date, &row.Sales, &row.Transactions); err != nil {
			return nil, err
		}
		row.Profit = row.Sales * ProfitMarginRatio
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *repository) SalesByProduct(ctx context.Context, dateRange shared.DateRange) ([]SalesByProductRow, error) {
	query := `
		SELECT p.id, p.name, p.category, COALESCE(SUM(it.quantity), 0), COALESCE(SUM(it.line_total), 0)
		FROM invoice_items it
		JOIN invoices i ON i.id = it.invoice_id
		JOIN products p ON p.id = it.product_id
		WHERE i.status = 'paid'`
	var args []interface{}
	query, args = rangeClause(query, dateRange, args)
	query += " GROUP BY p.id, p.name, p.category ORDER BY SUM(it.line_total) DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]SalesByProductRow, 0)
	for rows.Next() {
		var row SalesByProductRow
		if err := rows.Scan(&row.ProductID, &row.Name, &row.Category, &row.Quantity, &row.Sales); err != nil {
			return nil, err
		}
		row.Profit = row.Sales * ProfitMarginRatio
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *repository) SalesByCashier(ctx context.Context, dateRange shared.DateRange) ([]SalesByCashierRow, error) {
	query := `
		SELECT i.cashier_id, COALESCE(u.name, 'Unassigned'), COUNT(*), COALESCE(SUM(i.total), 0)
		FROM invoices i
		LEFT JOIN users u ON u.id = i.cashier_id
		WHERE i.status = 'paid'`
	var args []interface{}
	query, args = rangeClause(query, dateRange, args)
	query += " GROUP BY i.cashier_id, u.name ORDER BY SUM(i.total) DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]SalesByCashierRow, 0)
	for rows.Next() {
		var row SalesByCashierRow
		var cashierID pgtype.Int8
		if err := rows.Scan(&cashierID, &row.CashierName, &row.Transactions, &row.Sales); err != nil {
			return nil, err
		}
		if cashierID.Valid {
			row.CashierID = &cashierID.Int64
		}
		row.Profit = row.Sales * ProfitMarginRatio
		result = append(result, row)
	}
	return result, rows.Err()
}
