package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	ByCategory(ctx context.Context, category string) ([]Product, error)
	LowStock(ctx context.Context, threshold int) ([]Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const productColumns = `id, barcode, name, price, stock, category`

func (r *repository) List(ctx context.Context) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	return r.queryProducts(ctx, query)
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *repository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`
	return r.scanProduct(r.db.QueryRow(ctx, query, barcode))
}

func (r *repository) Search(ctx context.Context, search string) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name ILIKE $1 OR barcode ILIKE $1 ORDER BY name`
	return r.queryProducts(ctx, query, "%"+search+"%")
}

func (r *repository) ByCategory(ctx context.Context, category string) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY name`
	return r.queryProducts(ctx, query, category)
}

func (r *repository) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE stock < $1 ORDER BY stock ASC`
	return r.queryProducts(ctx, query, threshold)
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	query := `INSERT INTO products (barcode, name, price, stock, category) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query, product.Barcode, product.Name, product.Price, product.Stock, product.Category).Scan(&product.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, fmt.Errorf("%w: barcode %s already exists", shared.ErrConflict, product.Barcode)
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE products SET id = id"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"barcode", "name", "price", "stock", "category"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: product %d is referenced by invoices or ledger entries", shared.ErrConflict, id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *repository) AdjustStock(ctx context.Context, id int64, delta int) (bool, error) {
	return AdjustStock(ctx, r.db, id, delta)
}

func (r *repository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Name, &p.Price, &p.Stock, &p.Category); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Price, &p.Stock, &p.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("product: %w", shared.ErrNotFound)
		}
		return Product{}, err
	}
	return p, nil
}
