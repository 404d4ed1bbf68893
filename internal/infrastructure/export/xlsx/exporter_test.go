package xlsx

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

type archiveFake struct {
	records []domain.BillRecord
	err     error
}

func (a *archiveFake) SaveBill(context.Context, domain.BillRecord) error { return nil }

func (a *archiveFake) RecentActivity(context.Context, time.Time) (int64, float64, error) {
	return 0, 0, nil
}

func (a *archiveFake) ListBills(context.Context, int) ([]domain.BillRecord, error) {
	return a.records, a.err
}

func TestExportBillsXLSX(t *testing.T) {
	archive := &archiveFake{records: []domain.BillRecord{
		{CustomerName: "Ramesh", GrandTotal: 239.4, CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)},
		{CustomerName: "Sita", GrandTotal: 310, CreatedAt: time.Date(2026, 8, 28, 18, 30, 0, 0, time.UTC)},
	}}

	data, err := New(archive, nil).ExportBillsXLSX(context.Background(), 100)
	if err != nil {
		t.Fatalf("ExportBillsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Bills", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "Ramesh" {
		t.Fatalf("B2 = %q, want %q", got, "Ramesh")
	}

	header, _ := f.GetCellValue("Bills", "C1")
	if header != "Grand Total" {
		t.Fatalf("C1 = %q, want %q", header, "Grand Total")
	}
}

func TestExportBillsXLSXArchiveError(t *testing.T) {
	archive := &archiveFake{err: errors.New("db down")}
	if _, err := New(archive, nil).ExportBillsXLSX(context.Background(), 100); err == nil {
		t.Fatalf("expected error")
	}
}
