// Package metrics provides Prometheus metrics for the descriptor loader.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axonops/protodesc-core/internal/descriptor"
)

// Metrics holds all Prometheus collectors for the descriptor ingestion path.
type Metrics struct {
	IngestTotal    *prometheus.CounterVec
	IngestErrors   *prometheus.CounterVec
	IngestDuration prometheus.Histogram
	IngestDepth    prometheus.Histogram
	DefsLoaded     *prometheus.GaugeVec

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheSize   prometheus.Gauge

	StorageOperations *prometheus.CounterVec
	StorageLatency    *prometheus.HistogramVec
	StorageErrors     *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "descriptor_loader_ingest_total",
			Help: "Total number of FileDescriptorSet ingestion attempts",
		},
		[]string{"result"},
	)

	m.IngestErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "descriptor_loader_ingest_errors_total",
			Help: "Total number of ingestion failures by error taxonomy",
		},
		[]string{"kind"}, // schema_incomplete, schema_invalid, default_parse_error, structural_error
	)

	m.IngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "descriptor_loader_ingest_duration_seconds",
			Help:    "Wall-clock time to parse a FileDescriptorSet into definitions",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.IngestDepth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "descriptor_loader_ingest_max_nesting_depth",
			Help:    "Deepest scope nesting observed while ingesting a FileDescriptorSet",
			Buckets: prometheus.LinearBuckets(0, 8, 9),
		},
	)

	m.DefsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "descriptor_loader_defs_loaded",
			Help: "Number of definitions currently held by the last successful ingest",
		},
		[]string{"kind"}, // message, enum
	)

	m.CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "descriptor_loader_cache_hits_total",
			Help: "Total number of definition-graph cache hits",
		},
		[]string{"cache"},
	)

	m.CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "descriptor_loader_cache_misses_total",
			Help: "Total number of definition-graph cache misses",
		},
		[]string{"cache"},
	)

	m.CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "descriptor_loader_cache_size",
			Help: "Number of entries currently held in the definition-graph cache",
		},
	)

	m.StorageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "descriptor_loader_storage_operations_total",
			Help: "Total number of ingestion-record storage operations",
		},
		[]string{"backend", "operation"},
	)

	m.StorageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "descriptor_loader_storage_latency_seconds",
			Help:    "Storage operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	m.StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "descriptor_loader_storage_errors_total",
			Help: "Total number of storage operation errors",
		},
		[]string{"backend", "operation"},
	)

	m.registry.MustRegister(
		m.IngestTotal,
		m.IngestErrors,
		m.IngestDuration,
		m.IngestDepth,
		m.DefsLoaded,
		m.CacheHits,
		m.CacheMisses,
		m.CacheSize,
		m.StorageOperations,
		m.StorageLatency,
		m.StorageErrors,
	)
	m.registry.MustRegister(prometheus.NewGoCollector())
	m.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Handler returns an HTTP handler exposing the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordIngest records the outcome of one ingestion attempt.
func (m *Metrics) RecordIngest(duration time.Duration, maxDepth int, err error) {
	if err == nil {
		m.IngestTotal.WithLabelValues("success").Inc()
	} else {
		m.IngestTotal.WithLabelValues("failure").Inc()
		m.IngestErrors.WithLabelValues(errorKind(err)).Inc()
	}
	m.IngestDuration.Observe(duration.Seconds())
	m.IngestDepth.Observe(float64(maxDepth))
}

// RecordCacheAccess records a cache hit or miss for the named cache.
func (m *Metrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(cache).Inc()
	} else {
		m.CacheMisses.WithLabelValues(cache).Inc()
	}
}

// UpdateCacheSize sets the current cache occupancy gauge.
func (m *Metrics) UpdateCacheSize(size float64) {
	m.CacheSize.Set(size)
}

// UpdateDefsLoaded sets the message/enum definition count gauges.
func (m *Metrics) UpdateDefsLoaded(messages, enums float64) {
	m.DefsLoaded.WithLabelValues("message").Set(messages)
	m.DefsLoaded.WithLabelValues("enum").Set(enums)
}

// RecordStorageOperation records a storage call's latency and outcome.
func (m *Metrics) RecordStorageOperation(backend, operation string, duration time.Duration, err error) {
	m.StorageOperations.WithLabelValues(backend, operation).Inc()
	m.StorageLatency.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		m.StorageErrors.WithLabelValues(backend, operation).Inc()
	}
}

// errorKind classifies err against the error taxonomy in internal/descriptor.
func errorKind(err error) string {
	switch {
	case errors.Is(err, descriptor.ErrSchemaIncomplete):
		return "schema_incomplete"
	case errors.Is(err, descriptor.ErrSchemaInvalid):
		return "schema_invalid"
	case errors.Is(err, descriptor.ErrDefaultParse):
		return "default_parse_error"
	default:
		return "structural_error"
	}
}
