package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/catalog"
	"github.com/meridian-pos/meridian-pos/internal/platform/db"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// ListFilter narrows List. Zero values mean no filtering on that axis.
type ListFilter struct {
	ProductID *int64
	Type      EntryType
	Range     shared.DateRange
}

type Repository interface {
	// Record inserts the entry and applies its stock delta as one
	// transaction. A missing product aborts both.
	Record(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Record(ctx context.Context, entry Entry) (Entry, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO inventory_transactions (created_at, type, product_id, quantity, notes)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			entry.CreatedAt, entry.Type, entry.ProductID, entry.Quantity, entry.Notes).Scan(&entry.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("product %d: %w", entry.ProductID, shared.ErrNotFound)
			}
			return err
		}

		ok, err := catalog.AdjustStock(ctx, tx, entry.ProductID, entry.Type.Delta(entry.Quantity))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("product %d: %w", entry.ProductID, shared.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := `
		SELECT t.id, t.created_at, t.type, t.product_id, p.name, t.quantity, t.notes
		FROM inventory_transactions t
		JOIN products p ON p.id = t.product_id
		WHERE 1=1`
	var args []interface{}
	argPos := 1

	if filter.ProductID != nil {
		query += fmt.Sprintf(" AND t.product_id = $%d", argPos)
		args = append(args, *filter.ProductID)
		argPos++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND t.type = $%d", argPos)
		args = append(args, filter.Type)
		argPos++
	}
	if !filter.Range.From.IsZero() {
		query += fmt.Sprintf(" AND t.created_at >= $%d", argPos)
		args = append(args, filter.Range.From)
		argPos++
	}
	if !filter.Range.To.IsZero() {
		query += fmt.Sprintf(" AND t.created_at <= $%d", argPos)
		args = append(args, filter.Range.To)
		argPos++
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var notes pgtype.Text
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Type, &e.ProductID, &e.ProductName, &e.Quantity, &notes); err != nil {
			return nil, err
		}
		if notes.Valid {
			e.Notes = &notes.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
