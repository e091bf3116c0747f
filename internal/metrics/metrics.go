package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for AirTrack.
// A nil *MetricsRegistry is valid and records nothing.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Upstream (flight data provider) Metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Query Cache Metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheCoalescedTotal *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec

	// Business Metrics
	SessionsActive         prometheus.Gauge
	SupersededResultsTotal *prometheus.CounterVec
}

// NewMetricsRegistry registers all metrics with the default Prometheus registerer
func NewMetricsRegistry() *MetricsRegistry {
	return NewMetricsRegistryWith(prometheus.DefaultRegisterer)
}

// NewMetricsRegistryWith registers all metrics with reg. Tests pass a fresh prometheus.NewRegistry().
func NewMetricsRegistryWith(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airtrack_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airtrack_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "airtrack_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airtrack_upstream_requests_total",
				Help: "Outbound flight data requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airtrack_upstream_request_duration_seconds",
				Help:    "Outbound flight data request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airtrack_query_cache_hits_total",
				Help: "Fresh query cache hits by query tag",
			},
			[]string{"tag"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airtrack_query_cache_misses_total",
				Help: "Query cache misses (absent or stale) by query tag",
			},
			[]string{"tag"},
		),
		CacheCoalescedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airtrack_query_cache_coalesced_total",
				Help: "Callers that shared an in-flight request instead of issuing their own",
			},
			[]string{"tag"},
		),
		CacheEvictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airtrack_query_cache_evictions_total",
				Help: "Entries dropped after the retention window",
			},
			[]string{"tag"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "airtrack_sessions_active",
				Help: "Current number of tracking sessions",
			},
		),
		SupersededResultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airtrack_superseded_results_total",
				Help: "Settled results discarded because the input changed while in flight",
			},
			[]string{"tag"},
		),
	}
}

func (m *MetricsRegistry) ObserveUpstream(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *MetricsRegistry) CacheHit(tag string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(tag).Inc()
}

func (m *MetricsRegistry) CacheMiss(tag string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(tag).Inc()
}

func (m *MetricsRegistry) CacheCoalesced(tag string) {
	if m == nil {
		return
	}
	m.CacheCoalescedTotal.WithLabelValues(tag).Inc()
}

func (m *MetricsRegistry) CacheEvicted(tag string) {
	if m == nil {
		return
	}
	m.CacheEvictionsTotal.WithLabelValues(tag).Inc()
}

func (m *MetricsRegistry) ResultSuperseded(tag string) {
	if m == nil {
		return
	}
	m.SupersededResultsTotal.WithLabelValues(tag).Inc()
}

func (m *MetricsRegistry) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *MetricsRegistry) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}
