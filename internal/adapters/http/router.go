// Package httpadapter exposes the billing pipeline and the catalog over
// HTTP. Handlers stay thin; pipeline policy lives in the use case.
package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/kirillkom/voicebill/internal/core/ports"
	"github.com/kirillkom/voicebill/internal/observability/metrics"
)

// statsWindow bounds the "recent" aggregates on the dashboard.
const statsWindow = 30 * 24 * time.Hour

// billFileName is the only shape servable from the bills directory; it
// doubles as path traversal protection.
var billFileName = regexp.MustCompile(`^bill_[0-9]{8}_[0-9]{6}_[0-9a-f]{8}\.pdf$`)

type BillExporter interface {
	ExportBillsXLSX(ctx context.Context, limit int) ([]byte, error)
}

type Router struct {
	processor ports.VoiceBillProcessor
	catalog   ports.CatalogRepository
	archive   ports.BillArchive
	exporter  BillExporter
	billsDir  string

	metrics       *metrics.HTTPServerMetrics
	service       string
	rateLimitRPS  float64
	rateLimit     int
	maxConcurrent int
}

type RouterOptions struct {
	Processor ports.VoiceBillProcessor
	Catalog   ports.CatalogRepository
	Archive   ports.BillArchive
	Exporter  BillExporter
	BillsDir  string

	Metrics        *metrics.HTTPServerMetrics
	Service        string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
}

func NewRouter(options RouterOptions) *Router {
	if options.Service == "" {
		options.Service = "api"
	}
	return &Router{
		processor:     options.Processor,
		catalog:       options.Catalog,
		archive:       options.Archive,
		exporter:      options.Exporter,
		billsDir:      options.BillsDir,
		metrics:       options.Metrics,
		service:       options.Service,
		rateLimitRPS:  options.RateLimitRPS,
		rateLimit:     options.RateLimitBurst,
		maxConcurrent: options.MaxConcurrent,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/bills/voice", rt.createVoiceBill)
	mux.HandleFunc("/v1/bills/", rt.downloadBill)
	mux.HandleFunc("/v1/products", rt.productsCollection)
	mux.HandleFunc("/v1/products/global-gst", rt.updateGlobalGST)
	mux.HandleFunc("/v1/products/", rt.productByID)
	mux.HandleFunc("/v1/stats", rt.stats)
	mux.HandleFunc("/v1/exports/bills", rt.exportBills)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimit)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	count, err := rt.catalog.Count(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	bills, revenue, err := rt.archive.RecentActivity(r.Context(), time.Now().UTC().Add(-statsWindow))
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_products": count,
		"recent_bills":   bills,
		"recent_revenue": revenue,
	})
}

func (rt *Router) exportBills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	data, err := rt.exporter.ExportBillsXLSX(r.Context(), 1000)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bills.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
