package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	stageDuration     *prometheus.HistogramVec
	stageDegraded     *prometheus.CounterVec
	billsTotal        *prometheus.CounterVec
	billLineItems     *prometheus.HistogramVec
	billGrandTotalSum *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vb",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vb",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vb",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Voice pipeline stage duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"service", "stage"},
	)
	stageDegraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vb",
			Subsystem: "pipeline",
			Name:      "stage_degraded_total",
			Help:      "Total soft stage failures absorbed into bills.",
		},
		[]string{"service", "stage"},
	)
	billsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vb",
			Subsystem: "bills",
			Name:      "generated_total",
			Help:      "Total bills generated by degradation status.",
		},
		[]string{"service", "status"},
	)
	billLineItems := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vb",
			Subsystem: "bills",
			Name:      "line_items",
			Help:      "Distribution of line items per generated bill.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	billGrandTotalSum := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vb",
			Subsystem: "bills",
			Name:      "grand_total_sum",
			Help:      "Running sum of generated bill grand totals.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		stageDuration,
		stageDegraded,
		billsTotal,
		billLineItems,
		billGrandTotalSum,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		stageDuration:     stageDuration,
		stageDegraded:     stageDegraded,
		billsTotal:        billsTotal,
		billLineItems:     billLineItems,
		billGrandTotalSum: billGrandTotalSum,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/bills/") && path != "/v1/bills/voice":
		return "/v1/bills/{filename}"
	case strings.HasPrefix(path, "/v1/products/") && path != "/v1/products/global-gst":
		return "/v1/products/{id}"
	default:
		return path
	}
}

// StageObserver produces the pipeline stage callback for one service.
func (m *HTTPServerMetrics) StageObserver(service string) func(stage string, duration time.Duration, degraded bool) {
	return func(stage string, duration time.Duration, degraded bool) {
		m.stageDuration.WithLabelValues(service, stage).Observe(duration.Seconds())
		if degraded {
			m.stageDegraded.WithLabelValues(service, stage).Inc()
		}
	}
}

func (m *HTTPServerMetrics) RecordBill(service string, lineItems int, grandTotal float64, degraded bool) {
	status := "clean"
	if degraded {
		status = "degraded"
	}
	m.billsTotal.WithLabelValues(service, status).Inc()
	m.billLineItems.WithLabelValues(service).Observe(float64(lineItems))
	if grandTotal > 0 {
		m.billGrandTotalSum.WithLabelValues(service).Add(grandTotal)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
