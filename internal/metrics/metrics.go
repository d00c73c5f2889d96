package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Concordance
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Knowledge-base lookup metrics
	KBLookupsTotal   prometheus.CounterVec
	KBLookupDuration prometheus.HistogramVec

	// Entity search metrics
	SearchQueriesTotal    prometheus.CounterVec
	StaleSearchDropsTotal prometheus.Counter

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Engine metrics
	ReconciliationsTotal prometheus.CounterVec
	AutoMapBatchesTotal  prometheus.CounterVec
	SessionsActive       prometheus.Gauge
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concordance_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "concordance_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Knowledge-base lookups
		KBLookupsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_kb_lookups_total",
				Help: "Total knowledge-base API calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		KBLookupDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "concordance_kb_lookup_duration_seconds",
				Help:    "Knowledge-base API call latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		// Entity search
		SearchQueriesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_search_queries_total",
				Help: "Total entity search queries by outcome",
			},
			[]string{"outcome"},
		),
		StaleSearchDropsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "concordance_stale_search_drops_total",
				Help: "Search results dropped because a newer query superseded them",
			},
		),

		// Cache Metrics
		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Engine metrics
		ReconciliationsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_reconciliations_total",
				Help: "Reconciliation state transitions by target status",
			},
			[]string{"status"},
		),
		AutoMapBatchesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordance_automap_batches_total",
				Help: "Auto-mapping batch results by outcome",
			},
			[]string{"outcome"},
		),
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "concordance_sessions_active",
				Help: "Current number of in-memory mapping sessions",
			},
		),
	}
}
