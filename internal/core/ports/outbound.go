package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/voicebill/internal/core/domain"
)

// Transcriber converts a stored audio recording into free text. The
// underlying engine is loaded once and shared across requests.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// OrderExtractor turns a raw transcript into a structured grocery order.
// Implementations must survive malformed model output: code fences and
// leading junk are stripped before parsing, and only an unrecoverable
// call/parse failure is returned as an error.
type OrderExtractor interface {
	Extract(ctx context.Context, transcript string) (domain.ExtractedOrder, error)
}

// PriceCatalog resolves a product name to its catalog entry. A miss is
// reported as domain.ErrProductNotFound, never as a zero-value hit.
type PriceCatalog interface {
	LookupByName(ctx context.Context, name string) (domain.Product, error)
}

// CatalogRepository is the admin-facing catalog store.
type CatalogRepository interface {
	PriceCatalog
	List(ctx context.Context) ([]domain.Product, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (domain.Product, error)
	Upsert(ctx context.Context, name string, unitPrice, gstPercent float64) error
	Update(ctx context.Context, p domain.Product) error
	Delete(ctx context.Context, id int64) error
	UpdateGlobalGST(ctx context.Context, gstPercent float64) error
}

// BillRenderer lays out a bill document and returns its file name.
type BillRenderer interface {
	Render(ctx context.Context, bill *domain.Bill) (string, error)
}

// BillArchive records and reads bill statistics.
type BillArchive interface {
	SaveBill(ctx context.Context, rec domain.BillRecord) error
	RecentActivity(ctx context.Context, since time.Time) (count int64, revenue float64, err error)
	ListBills(ctx context.Context, limit int) ([]domain.BillRecord, error)
}

// BillEventQueue publishes/consumes bill-recorded events. Publishing is
// best effort; callers decide whether a failure matters.
type BillEventQueue interface {
	PublishBillRecorded(ctx context.Context, rec domain.BillRecord) error
	SubscribeBillRecorded(ctx context.Context, handler func(context.Context, domain.BillRecord) error) error
}

// ObjectStorage holds uploaded audio and generated documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	Path(key string) string
}
