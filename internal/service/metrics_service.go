package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the admission
// API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	importedRows    *prometheus.CounterVec
	reportsRendered *prometheus.CounterVec
	rulesGenerated  prometheus.Counter
}

// NewMetricsService registers the core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	importedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Rows processed by CSV imports",
	}, []string{"bank", "outcome"})

	reportsRendered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archive_reports_rendered_total",
		Help: "Archive reports rendered by format",
	}, []string{"format"})

	rulesGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_rules_generated_total",
		Help: "Rules created by bulk generation runs",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, importedRows, reportsRendered, rulesGenerated, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		importedRows:    importedRows,
		reportsRendered: reportsRendered,
		rulesGenerated:  rulesGenerated,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveCacheLookup tracks cache hit/miss counts.
func (m *MetricsService) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveImport records CSV import outcomes for a question bank.
func (m *MetricsService) ObserveImport(bank string, created, skipped int) {
	if m == nil {
		return
	}
	m.importedRows.WithLabelValues(bank, "created").Add(float64(created))
	m.importedRows.WithLabelValues(bank, "skipped").Add(float64(skipped))
}

// ObserveReport counts a rendered archive report.
func (m *MetricsService) ObserveReport(format string) {
	if m == nil {
		return
	}
	m.reportsRendered.WithLabelValues(format).Inc()
}

// ObserveRulesGenerated adds to the bulk generation counter.
func (m *MetricsService) ObserveRulesGenerated(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rulesGenerated.Add(float64(count))
}
