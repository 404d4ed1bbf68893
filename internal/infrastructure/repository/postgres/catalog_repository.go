// Package postgres backs the product catalog and the bill archive.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	gst_percent DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_lower ON products (LOWER(name));

CREATE TABLE IF NOT EXISTS bills (
	id BIGSERIAL PRIMARY KEY,
	customer_name TEXT NOT NULL,
	grand_total DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_created_at ON bills(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// LookupByName matches case-insensitively; catalog names are unique under
// LOWER(name).
func (r *CatalogRepository) LookupByName(ctx context.Context, name string) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, unit_price, gst_percent
FROM products
WHERE LOWER(name) = LOWER($1)
`, name)

	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.GSTPercent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.WrapError(domain.ErrProductNotFound, "lookup product", fmt.Errorf("no catalog entry for %q", name))
		}
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, unit_price, gst_percent
FROM products
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.GSTPercent); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r *CatalogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, unit_price, gst_percent
FROM products
WHERE id = $1
`, id)

	var p domain.Product
	if err := row.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.GSTPercent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.WrapError(domain.ErrProductNotFound, "get product", fmt.Errorf("no product with id %d", id))
		}
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

// Upsert inserts or, when the name already exists in any casing, replaces
// that entry's price and GST.
func (r *CatalogRepository) Upsert(ctx context.Context, name string, unitPrice, gstPercent float64) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (name, unit_price, gst_percent)
VALUES ($1, $2, $3)
ON CONFLICT ((LOWER(name))) DO UPDATE
SET unit_price = EXCLUDED.unit_price, gst_percent = EXCLUDED.gst_percent
`, name, unitPrice, gstPercent)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) Update(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products
SET name = $2, unit_price = $3, gst_percent = $4
WHERE id = $1
`, p.ID, p.Name, p.UnitPrice, p.GSTPercent)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrProductNotFound, "update product", fmt.Errorf("no product with id %d", p.ID))
	}
	return nil
}

func (r *CatalogRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrProductNotFound, "delete product", fmt.Errorf("no product with id %d", id))
	}
	return nil
}

func (r *CatalogRepository) UpdateGlobalGST(ctx context.Context, gstPercent float64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE products SET gst_percent = $1`, gstPercent); err != nil {
		return fmt.Errorf("update global gst: %w", err)
	}
	return nil
}
