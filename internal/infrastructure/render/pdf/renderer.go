// Package pdf renders the final bill document on an A4 page. Rendering is
// the one pipeline stage whose failure aborts the request: the document is
// the deliverable.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

// Layout fixes the page geometry in millimetres.
type Layout struct {
	TopMargin    float64
	BottomMargin float64
	RowHeight    float64
}

func DefaultLayout() Layout {
	return Layout{
		TopMargin:    30,
		BottomMargin: 30,
		RowHeight:    6,
	}
}

type Renderer struct {
	dir    string
	layout Layout
}

func New(dir string) (*Renderer, error) {
	return NewWithLayout(dir, DefaultLayout())
}

func NewWithLayout(dir string, layout Layout) (*Renderer, error) {
	if dir == "" {
		dir = "./data/bills"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bills dir: %w", err)
	}
	def := DefaultLayout()
	if layout.TopMargin <= 0 {
		layout.TopMargin = def.TopMargin
	}
	if layout.BottomMargin <= 0 {
		layout.BottomMargin = def.BottomMargin
	}
	if layout.RowHeight <= 0 {
		layout.RowHeight = def.RowHeight
	}
	return &Renderer{dir: dir, layout: layout}, nil
}

// Render writes the bill as a paginated PDF and returns the generated file
// name. Names carry a second-resolution timestamp plus a random suffix so
// concurrent requests never collide.
func (r *Renderer) Render(ctx context.Context, bill *domain.Bill) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	generatedAt := bill.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}
	name := fmt.Sprintf("bill_%s_%s.pdf",
		generatedAt.Format("20060102_150405"),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
	)

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	_, pageHeight := doc.GetPageSize()
	bottomY := pageHeight - r.layout.BottomMargin

	doc.AddPage()
	y := r.layout.TopMargin

	doc.SetFont("Helvetica", "B", 16)
	doc.Text(70, y, "Shopkeeper Bill")
	y += 12

	doc.SetFont("Helvetica", "", 11)
	doc.Text(15, y, "Customer: "+bill.CustomerName)
	y += 6
	doc.Text(15, y, "Phone: "+bill.Phone)
	y += 6
	doc.Text(15, y, "Address: "+bill.Address)
	y += 12

	doc.SetFont("Helvetica", "B", 11)
	doc.Text(15, y, "Product")
	doc.Text(80, y, "Qty")
	doc.Text(100, y, "Unit Price")
	doc.Text(130, y, "GST%")
	doc.Text(150, y, "Total")
	y += 6
	doc.Line(15, y, 195, y)
	y += 6

	doc.SetFont("Helvetica", "", 10)
	for _, item := range bill.Items {
		doc.Text(15, y, item.Name)
		doc.Text(80, y, fmt.Sprintf("%g %s", item.Quantity, item.Unit))
		doc.Text(100, y, money(item.UnitPrice))
		doc.Text(130, y, fmt.Sprintf("%g", item.GSTPercent))
		doc.Text(150, y, money(item.LineTotal))
		y += r.layout.RowHeight
		if y > bottomY {
			doc.AddPage()
			y = r.layout.TopMargin
		}
	}

	y += 6
	doc.Line(120, y, 195, y)
	y += 6

	doc.SetFont("Helvetica", "B", 11)
	doc.Text(120, y, "Subtotal:")
	rightText(doc, 195, y, money(bill.Totals.Subtotal))
	y += 6
	doc.Text(120, y, "Total GST:")
	rightText(doc, 195, y, money(bill.Totals.TotalGST))
	y += 6
	doc.Text(120, y, "Grand Total:")
	rightText(doc, 195, y, money(bill.Totals.GrandTotal))

	doc.SetFont("Helvetica", "", 9)
	doc.Text(15, pageHeight-15, "Generated: "+generatedAt.Format("02-01-2006 15:04"))

	path := filepath.Join(r.dir, name)
	if err := doc.OutputFileAndClose(path); err != nil {
		return "", domain.WrapError(domain.ErrRender, "write pdf", err)
	}
	return name, nil
}

// money rounds for presentation only; all arithmetic upstream stays at
// full precision.
func money(v float64) string {
	return fmt.Sprintf("Rs %.2f", v)
}

func rightText(doc *gofpdf.Fpdf, x, y float64, s string) {
	doc.Text(x-doc.GetStringWidth(s), y, s)
}
