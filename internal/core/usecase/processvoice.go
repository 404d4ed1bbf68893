package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/voicebill/internal/core/domain"
	"github.com/kirillkom/voicebill/internal/core/ports"
)

// StageFunc observes one pipeline stage completion; degraded marks a soft
// failure that was absorbed into the bill instead of aborting the request.
type StageFunc func(stage string, duration time.Duration, degraded bool)

// ProcessVoiceUseCase sequences the voice-to-bill pipeline. It is the only
// component that knows which stage failures are soft and which are fatal:
//
//	transcription error  -> empty transcript, continue
//	extraction error     -> empty order + annotation, continue
//	catalog miss         -> zero price/GST for that line, continue
//	render error         -> abort, no bill without a document
//	event publish error  -> ignored, the document already exists
type ProcessVoiceUseCase struct {
	transcriber ports.Transcriber
	extractor   ports.OrderExtractor
	catalog     ports.PriceCatalog
	renderer    ports.BillRenderer
	audio       ports.ObjectStorage
	events      ports.BillEventQueue
	observe     StageFunc
}

func NewProcessVoiceUseCase(
	transcriber ports.Transcriber,
	extractor ports.OrderExtractor,
	catalog ports.PriceCatalog,
	renderer ports.BillRenderer,
	audio ports.ObjectStorage,
	events ports.BillEventQueue,
	observe StageFunc,
) *ProcessVoiceUseCase {
	if observe == nil {
		observe = func(string, time.Duration, bool) {}
	}
	return &ProcessVoiceUseCase{
		transcriber: transcriber,
		extractor:   extractor,
		catalog:     catalog,
		renderer:    renderer,
		audio:       audio,
		events:      events,
		observe:     observe,
	}
}

func (uc *ProcessVoiceUseCase) ProcessVoiceOrder(ctx context.Context, filename string, body io.Reader) (*domain.Bill, error) {
	audioKey := fmt.Sprintf("voice_%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.audio.Save(ctx, audioKey, body); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save uploaded audio", err)
	}
	// The recording is request-scoped scratch space; release it on every
	// exit path, success or failure.
	defer func() {
		if err := uc.audio.Remove(context.WithoutCancel(ctx), audioKey); err != nil {
			slog.Warn("temp_audio_cleanup_failed", "key", audioKey, "error", err)
		}
	}()

	var warnings []string

	transcript := uc.transcribe(ctx, audioKey, &warnings)
	order := uc.extract(ctx, transcript, &warnings)
	normalized := NormalizeItems(order.Items)
	lines, totals := uc.price(ctx, normalized, &warnings)

	bill := &domain.Bill{
		CustomerName: customerOrUnknown(order.Customer),
		Phone:        order.Phone,
		Address:      order.Address,
		Items:        lines,
		Totals:       totals,
		GeneratedAt:  time.Now().UTC(),
		Error:        strings.Join(warnings, "; "),
	}

	start := time.Now()
	ref, err := uc.renderer.Render(ctx, bill)
	uc.observe("render", time.Since(start), false)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRender, "render bill document", err)
	}
	bill.DocumentRef = ref

	uc.record(ctx, bill)
	return bill, nil
}

func (uc *ProcessVoiceUseCase) transcribe(ctx context.Context, audioKey string, warnings *[]string) string {
	start := time.Now()
	transcript, err := uc.transcriber.Transcribe(ctx, uc.audio.Path(audioKey))
	if err != nil {
		uc.observe("transcribe", time.Since(start), true)
		slog.Warn("stage_degraded", "stage", "transcribe", "error", err)
		*warnings = append(*warnings, "transcription failed, empty order assumed")
		return ""
	}
	uc.observe("transcribe", time.Since(start), false)
	return transcript
}

func (uc *ProcessVoiceUseCase) extract(ctx context.Context, transcript string, warnings *[]string) domain.ExtractedOrder {
	start := time.Now()
	order, err := uc.extractor.Extract(ctx, transcript)
	if err != nil {
		uc.observe("extract", time.Since(start), true)
		slog.Warn("stage_degraded", "stage", "extract", "error", err)
		*warnings = append(*warnings, fmt.Sprintf("extraction failed: %v", err))
		return domain.ExtractedOrder{Items: []domain.RawLineRequest{}, Error: err.Error()}
	}
	uc.observe("extract", time.Since(start), false)
	if order.Error != "" {
		*warnings = append(*warnings, "extraction degraded: "+order.Error)
	}
	return order
}

func (uc *ProcessVoiceUseCase) price(ctx context.Context, items []domain.NormalizedLineItem, warnings *[]string) ([]domain.PricedLineItem, domain.BillTotals) {
	start := time.Now()
	degraded := false

	lines := make([]domain.PricedLineItem, 0, len(items))
	for _, item := range items {
		product, err := uc.catalog.LookupByName(ctx, item.Name)
		if err != nil {
			// A missing product (or an unreachable catalog) zeroes this
			// line instead of failing the bill: the shopkeeper still sees
			// that the product was requested.
			degraded = true
			if domain.IsKind(err, domain.ErrProductNotFound) {
				*warnings = append(*warnings, fmt.Sprintf("unknown product %q priced at zero", item.Name))
			} else {
				slog.Warn("stage_degraded", "stage", "price", "product", item.Name, "error", err)
				*warnings = append(*warnings, fmt.Sprintf("price lookup for %q failed, priced at zero", item.Name))
			}
			product = domain.Product{Name: item.Name}
		}
		lines = append(lines, PriceLine(item, product.UnitPrice, product.GSTPercent))
	}

	uc.observe("price", time.Since(start), degraded)
	return lines, SumTotals(lines)
}

// record publishes the statistics event. Failures are swallowed: the bill
// and its document have already been produced for the caller.
func (uc *ProcessVoiceUseCase) record(ctx context.Context, bill *domain.Bill) {
	start := time.Now()
	err := uc.events.PublishBillRecorded(ctx, domain.BillRecord{
		CustomerName: bill.CustomerName,
		GrandTotal:   bill.Totals.GrandTotal,
		CreatedAt:    bill.GeneratedAt,
	})
	uc.observe("record", time.Since(start), err != nil)
	if err != nil {
		slog.Warn("stage_degraded", "stage", "record", "error", err)
	}
}

func customerOrUnknown(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	return name
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "recording.bin"
	}
	return base
}
