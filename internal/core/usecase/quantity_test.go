package usecase

import (
	"testing"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in       string
		quantity float64
		unit     domain.Unit
	}{
		{"2 kg", 2.0, domain.UnitKg},
		{"3kg", 3.0, domain.UnitKg},
		{"", 1.0, domain.UnitPcs},
		{"5", 5.0, domain.UnitPcs},
		{"2 ltr", 2.0, domain.UnitLitre},
		{"1.5l", 1.5, domain.UnitLitre},
		{"500 gm", 500.0, domain.UnitGram},
		{"250ml", 250.0, domain.UnitMl},
		{"2 kilo", 2.0, domain.UnitKg},
		{"3 pieces", 3.0, domain.UnitPcs},
		{"  4 KG ", 4.0, domain.UnitKg},
		{"two kg", 1.0, domain.UnitKg},
		{"7 dozen", 7.0, domain.UnitPcs},
		{"packet", 1.0, domain.UnitPcs},
		{"0 kg", 1.0, domain.UnitKg},
		{"-2 kg", 1.0, domain.UnitKg},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			quantity, unit := ParseQuantity(tt.in)
			if quantity != tt.quantity || unit != tt.unit {
				t.Fatalf("ParseQuantity(%q) = (%v, %v), want (%v, %v)",
					tt.in, quantity, unit, tt.quantity, tt.unit)
			}
		})
	}
}

func TestParseQuantityAlwaysCanonical(t *testing.T) {
	for _, in := range []string{"2 bottles", "1 cup", "9 xyz", "3box", "1 KGS"} {
		quantity, unit := ParseQuantity(in)
		if quantity <= 0 {
			t.Fatalf("ParseQuantity(%q) quantity = %v, want > 0", in, quantity)
		}
		if !unit.IsCanonical() {
			t.Fatalf("ParseQuantity(%q) unit = %q, not canonical", in, unit)
		}
	}
}

func TestNormalizeItemsMergesSameNameAndUnit(t *testing.T) {
	items := NormalizeItems([]domain.RawLineRequest{
		{Name: "Sugar", QuantityText: "1 kg"},
		{Name: "Oil", QuantityText: "1 litre"},
		{Name: "sugar ", QuantityText: "2 kg"},
	})

	if len(items) != 2 {
		t.Fatalf("expected 2 merged items, got %d: %+v", len(items), items)
	}
	if items[0].Name != "Sugar" || items[0].Quantity != 3.0 || items[0].Unit != domain.UnitKg {
		t.Fatalf("merged line = %+v, want Sugar 3 kg", items[0])
	}
	if items[1].Name != "Oil" {
		t.Fatalf("expected first-seen order preserved, got %+v", items)
	}
}

func TestNormalizeItemsKeepsDifferentUnitsSeparate(t *testing.T) {
	items := NormalizeItems([]domain.RawLineRequest{
		{Name: "Milk", QuantityText: "1 litre"},
		{Name: "milk", QuantityText: "500 ml"},
	})

	if len(items) != 2 {
		t.Fatalf("unit mismatch must not merge, got %d items: %+v", len(items), items)
	}
	if items[0].Unit != domain.UnitLitre || items[1].Unit != domain.UnitMl {
		t.Fatalf("unexpected units: %+v", items)
	}
}

func TestNormalizeItemsEmptyInput(t *testing.T) {
	if items := NormalizeItems(nil); len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
}
