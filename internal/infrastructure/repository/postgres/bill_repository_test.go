package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

func TestBillRepositorySaveBill(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBillRepository(db)
	createdAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO bills").
		WithArgs("Ramesh", 239.4, createdAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.SaveBill(context.Background(), domain.BillRecord{
		CustomerName: "Ramesh",
		GrandTotal:   239.4,
		CreatedAt:    createdAt,
	})
	if err != nil {
		t.Fatalf("SaveBill() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBillRepositoryRecentActivity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBillRepository(db)
	since := time.Now().AddDate(0, 0, -30)

	mock.ExpectQuery("FROM bills").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count", "coalesce"}).AddRow(int64(12), 4820.5))

	count, revenue, err := repo.RecentActivity(context.Background(), since)
	if err != nil {
		t.Fatalf("RecentActivity() error = %v", err)
	}
	if count != 12 || revenue != 4820.5 {
		t.Fatalf("activity = (%d, %v), want (12, 4820.5)", count, revenue)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestBillRepositoryListBillsNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewBillRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "customer_name", "grand_total", "created_at"}).
		AddRow(int64(2), "Sita", 310.0, now).
		AddRow(int64(1), "Ramesh", 239.4, now.Add(-time.Hour))

	mock.ExpectQuery("FROM bills").
		WithArgs(50).
		WillReturnRows(rows)

	records, err := repo.ListBills(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(records) != 2 || records[0].CustomerName != "Sita" {
		t.Fatalf("unexpected records %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
