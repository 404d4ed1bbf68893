package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/voicebill/internal/core/domain"
	"github.com/kirillkom/voicebill/internal/core/usecase"
)

func testBill(lineCount int) *domain.Bill {
	items := make([]domain.PricedLineItem, 0, lineCount)
	for i := 0; i < lineCount; i++ {
		items = append(items, usecase.PriceLine(domain.NormalizedLineItem{
			Name:     fmt.Sprintf("Item %02d", i+1),
			Quantity: 2,
			Unit:     domain.UnitKg,
		}, 50, 5))
	}
	return &domain.Bill{
		CustomerName: "Ramesh",
		Phone:        "9876543210",
		Address:      "MG Road, Pune",
		Items:        items,
		Totals:       usecase.SumTotals(items),
		GeneratedAt:  time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC),
	}
}

func pageCount(t *testing.T, path string) int {
	t.Helper()
	f, reader, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("open rendered pdf: %v", err)
	}
	defer f.Close()
	return reader.NumPage()
}

func TestRenderSmallBillFitsOnePage(t *testing.T) {
	dir := t.TempDir()
	renderer, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	name, err := renderer.Render(context.Background(), testBill(5))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := pageCount(t, filepath.Join(dir, name)); got != 1 {
		t.Fatalf("pages = %d, want 1", got)
	}
}

func TestRenderPaginatesLongBill(t *testing.T) {
	dir := t.TempDir()
	// Taller rows shrink the page to roughly 25 item rows.
	renderer, err := NewWithLayout(dir, Layout{RowHeight: 9})
	if err != nil {
		t.Fatalf("NewWithLayout() error = %v", err)
	}

	name, err := renderer.Render(context.Background(), testBill(60))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := pageCount(t, filepath.Join(dir, name)); got < 3 {
		t.Fatalf("pages = %d, want at least 3", got)
	}
}

func TestRenderFileNameShape(t *testing.T) {
	dir := t.TempDir()
	renderer, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	name, err := renderer.Render(context.Background(), testBill(1))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	pattern := regexp.MustCompile(`^bill_20260829_101500_[0-9a-f]{8}\.pdf$`)
	if !pattern.MatchString(name) {
		t.Fatalf("file name %q does not match %v", name, pattern)
	}
}

func TestRenderSameSecondDoesNotCollide(t *testing.T) {
	dir := t.TempDir()
	renderer, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	bill := testBill(1)
	first, err := renderer.Render(context.Background(), bill)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := renderer.Render(context.Background(), bill)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if first == second {
		t.Fatalf("same-second renders collided on %q", first)
	}
}

func TestRenderCancelledContext(t *testing.T) {
	renderer, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, testBill(1)); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
