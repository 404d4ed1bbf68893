package usecase

import (
	"math/rand"
	"testing"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

func TestPriceLine(t *testing.T) {
	line := PriceLine(domain.NormalizedLineItem{
		Name:     "Sugar",
		Quantity: 2,
		Unit:     domain.UnitKg,
	}, 100, 5)

	if line.LineBase != 200 {
		t.Fatalf("LineBase = %v, want 200", line.LineBase)
	}
	if line.GSTAmount != 10 {
		t.Fatalf("GSTAmount = %v, want 10", line.GSTAmount)
	}
	if line.LineTotal != 210 {
		t.Fatalf("LineTotal = %v, want 210", line.LineTotal)
	}
}

func TestPriceLineZeroPrice(t *testing.T) {
	line := PriceLine(domain.NormalizedLineItem{
		Name:     "Unknown Thing",
		Quantity: 4,
		Unit:     domain.UnitPcs,
	}, 0, 0)

	if line.LineBase != 0 || line.GSTAmount != 0 || line.LineTotal != 0 {
		t.Fatalf("zero-priced line must stay zero, got %+v", line)
	}
}

func TestSumTotals(t *testing.T) {
	lines := []domain.PricedLineItem{
		PriceLine(domain.NormalizedLineItem{Name: "Sugar", Quantity: 2, Unit: domain.UnitKg}, 50, 5),
		PriceLine(domain.NormalizedLineItem{Name: "Oil", Quantity: 1, Unit: domain.UnitLitre}, 120, 12),
	}

	totals := SumTotals(lines)
	if totals.Subtotal != 220 {
		t.Fatalf("Subtotal = %v, want 220", totals.Subtotal)
	}
	if totals.TotalGST != 19.4 {
		t.Fatalf("TotalGST = %v, want 19.4", totals.TotalGST)
	}
	if totals.GrandTotal != 239.4 {
		t.Fatalf("GrandTotal = %v, want 239.4", totals.GrandTotal)
	}
}

// The grand total must equal the ordered sum of line bases plus the ordered
// sum of GST amounts exactly, for arbitrary positive inputs.
func TestSumTotalsAggregateInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(40)
		lines := make([]domain.PricedLineItem, 0, n)
		for i := 0; i < n; i++ {
			lines = append(lines, PriceLine(domain.NormalizedLineItem{
				Name:     "Item",
				Quantity: rng.Float64()*10 + 0.01,
				Unit:     domain.UnitKg,
			}, rng.Float64()*500, rng.Float64()*28))
		}

		totals := SumTotals(lines)

		var base, gst float64
		for _, line := range lines {
			base += line.LineBase
			gst += line.GSTAmount
		}
		if totals.Subtotal != base || totals.TotalGST != gst {
			t.Fatalf("trial %d: component sums diverge: %+v vs (%v, %v)", trial, totals, base, gst)
		}
		if totals.GrandTotal != base+gst {
			t.Fatalf("trial %d: GrandTotal = %v, want %v", trial, totals.GrandTotal, base+gst)
		}
		for _, line := range lines {
			if line.LineTotal != line.LineBase+line.GSTAmount {
				t.Fatalf("trial %d: line invariant broken: %+v", trial, line)
			}
		}
	}
}
