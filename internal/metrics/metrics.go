package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Generation metrics
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	GenerationWarnings prometheus.Counter

	// Extraction metrics
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec

	// Template cache metrics
	TemplateCacheHits   prometheus.Counter
	TemplateCacheMisses prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates the collectors and registers them on registry.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billdoc_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billdoc_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billdoc_generations_total",
				Help: "Total number of notice generations",
			},
			[]string{"status"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "billdoc_generation_duration_seconds",
				Help:    "Notice generation duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		GenerationWarnings: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billdoc_generation_warnings_total",
				Help: "Total number of warnings reported by generations",
			},
		),

		ExtractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billdoc_extractions_total",
				Help: "Total number of bill extractions",
			},
			[]string{"model", "status"},
		),
		ExtractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billdoc_extraction_duration_seconds",
				Help:    "Bill extraction duration in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"model"},
		),

		TemplateCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billdoc_template_cache_hits_total",
				Help: "Total number of template cache hits",
			},
		),
		TemplateCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billdoc_template_cache_misses_total",
				Help: "Total number of template cache misses",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GenerationsTotal,
		m.GenerationDuration,
		m.GenerationWarnings,
		m.ExtractionsTotal,
		m.ExtractionDuration,
		m.TemplateCacheHits,
		m.TemplateCacheMisses,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
