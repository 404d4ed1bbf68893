package domain

import "time"

// Unit is a canonical measurement unit. Every line item on a bill carries
// exactly one of these; raw spoken tokens are normalized before pricing.
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitGram  Unit = "g"
	UnitLitre Unit = "litre"
	UnitMl    Unit = "ml"
	UnitPcs   Unit = "pcs"
)

func (u Unit) IsCanonical() bool {
	switch u {
	case UnitKg, UnitGram, UnitLitre, UnitMl, UnitPcs:
		return true
	}
	return false
}

// RawLineRequest is one item as the extraction model reported it, with the
// quantity still in free text ("2 kg", "3kg", "two").
type RawLineRequest struct {
	Name         string `json:"name"`
	QuantityText string `json:"quantity"`
}

// ExtractedOrder is the structured order recovered from a transcript.
// Error carries a model-reported degradation note, not a call failure.
type ExtractedOrder struct {
	Customer string           `json:"customer"`
	Phone    string           `json:"phone,omitempty"`
	Address  string           `json:"address,omitempty"`
	Items    []RawLineRequest `json:"items"`
	Error    string           `json:"error,omitempty"`
}

// NormalizedLineItem has a parsed positive quantity and a canonical unit.
type NormalizedLineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
}

// PricedLineItem is a normalized item with catalog pricing applied.
// LineTotal = LineBase + GSTAmount, carried at full precision.
type PricedLineItem struct {
	NormalizedLineItem
	UnitPrice  float64 `json:"unit_price"`
	GSTPercent float64 `json:"gst_percent"`
	LineBase   float64 `json:"line_base"`
	GSTAmount  float64 `json:"gst_amount"`
	LineTotal  float64 `json:"line_total"`
}

type BillTotals struct {
	Subtotal   float64 `json:"subtotal"`
	TotalGST   float64 `json:"total_gst"`
	GrandTotal float64 `json:"grand_total"`
}

// Bill is the finished result of one voice order. Error aggregates the
// soft-failure annotations collected along the pipeline; a bill with a
// non-empty Error is still a valid, rendered bill.
type Bill struct {
	CustomerName string           `json:"customer_name"`
	Phone        string           `json:"phone,omitempty"`
	Address      string           `json:"address,omitempty"`
	Items        []PricedLineItem `json:"items"`
	Totals       BillTotals       `json:"totals"`
	GeneratedAt  time.Time        `json:"generated_at"`
	DocumentRef  string           `json:"document_ref,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Product is one catalog entry. Names are unique case-insensitively.
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	GSTPercent float64 `json:"gst_percent"`
}

// BillRecord is the statistics row persisted per generated bill.
type BillRecord struct {
	ID           int64     `json:"id,omitempty"`
	CustomerName string    `json:"customer_name"`
	GrandTotal   float64   `json:"grand_total"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stats is the dashboard aggregate over the catalog and recent bills.
type Stats struct {
	TotalProducts int64   `json:"total_products"`
	RecentBills   int64   `json:"recent_bills"`
	RecentRevenue float64 `json:"recent_revenue"`
}
