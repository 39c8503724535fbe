package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodreads_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodreads_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodreads_backend_requests_total",
		Help: "Requests sent to recommendation backend endpoints by outcome",
	}, []string{"endpoint", "outcome"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodreads_backend_request_duration_seconds",
		Help:    "Latency of recommendation backend requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "moodreads_backend_circuit_state",
		Help: "Circuit breaker state per endpoint (0=closed, 1=half-open, 2=open)",
	}, []string{"endpoint"})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodreads_cache_lookups_total",
		Help: "Recommendation cache lookups by result",
	}, []string{"result"})

	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodreads_submissions_total",
		Help: "Mood submissions by outcome (success, no_results, failure, validation, stale)",
	}, []string{"outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moodreads_active_sessions",
		Help: "Number of live page sessions",
	})
)
