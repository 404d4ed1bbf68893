package usecase

import "github.com/kirillkom/voicebill/internal/core/domain"

// PriceLine applies catalog pricing to one normalized item. LineTotal is
// derived from the already-computed base and GST amount so the
// line-level invariant holds bit for bit.
func PriceLine(item domain.NormalizedLineItem, unitPrice, gstPercent float64) domain.PricedLineItem {
	lineBase := item.Quantity * unitPrice
	gstAmount := lineBase * gstPercent / 100.0
	return domain.PricedLineItem{
		NormalizedLineItem: item,
		UnitPrice:          unitPrice,
		GSTPercent:         gstPercent,
		LineBase:           lineBase,
		GSTAmount:          gstAmount,
		LineTotal:          lineBase + gstAmount,
	}
}

// SumTotals accumulates bill totals over lines in list order, at full
// precision. Currency rounding happens at render time only.
func SumTotals(lines []domain.PricedLineItem) domain.BillTotals {
	var totals domain.BillTotals
	for _, line := range lines {
		totals.Subtotal += line.LineBase
		totals.TotalGST += line.GSTAmount
	}
	totals.GrandTotal = totals.Subtotal + totals.TotalGST
	return totals
}
