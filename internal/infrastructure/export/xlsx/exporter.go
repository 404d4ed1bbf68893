// Package xlsx produces the bill register workbook for download.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/voicebill/internal/core/ports"
)

// Exporter renders the recent bill archive as an XLSX workbook.
type Exporter struct {
	archive ports.BillArchive
	logger  *slog.Logger
}

func New(archive ports.BillArchive, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{archive: archive, logger: logger}
}

// ExportBillsXLSX returns workbook bytes for up to limit most recent bills.
func (e *Exporter) ExportBillsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	records, err := e.archive.ListBills(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Bills"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{"Date", "Customer", "Grand Total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, rec.CreatedAt.Format("2006-01-02 15:04"))
		write(2, rec.CustomerName)
		write(3, rec.GrandTotal)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
