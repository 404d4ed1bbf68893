package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

// BillRepository is the statistics archive of generated bills. It keeps
// the summary row only; the PDF lives on disk.
type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) SaveBill(ctx context.Context, rec domain.BillRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO bills (customer_name, grand_total, created_at)
VALUES ($1, $2, $3)
`, rec.CustomerName, rec.GrandTotal, createdAt)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (r *BillRepository) RecentActivity(ctx context.Context, since time.Time) (int64, float64, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(grand_total), 0)
FROM bills
WHERE created_at >= $1
`, since)

	var count int64
	var revenue float64
	if err := row.Scan(&count, &revenue); err != nil {
		return 0, 0, fmt.Errorf("scan recent activity: %w", err)
	}
	return count, revenue, nil
}

func (r *BillRepository) ListBills(ctx context.Context, limit int) ([]domain.BillRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, customer_name, grand_total, created_at
FROM bills
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var records []domain.BillRecord
	for rows.Next() {
		var rec domain.BillRecord
		if err := rows.Scan(&rec.ID, &rec.CustomerName, &rec.GrandTotal, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return records, nil
}
