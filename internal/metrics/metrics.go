package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Recommendations served, by strategy (advanced, simple, default)
	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grocer_recommendations_total",
		Help: "Total number of recommendations served",
	}, []string{"strategy"})

	// Signal provider failures, by pipeline stage
	ProviderFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grocer_provider_failures_total",
		Help: "Total number of signal provider failures",
	}, []string{"stage"})

	// Duration of each analysis stage
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grocer_stage_duration_seconds",
		Help:    "Duration of recommendation pipeline stages",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	// Confidence of served recommendations; can exceed 100
	RecommendationConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "grocer_recommendation_confidence",
		Help:    "Confidence of served recommendations",
		Buckets: []float64{40, 60, 70, 80, 90, 100, 110, 120, 140},
	})

	// Cache lookups, by cache and result (hit, miss, error)
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grocer_cache_lookups_total",
		Help: "Total number of cache lookups",
	}, []string{"cache", "result"})

	// Circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grocer_circuit_breaker_state",
		Help: "Current circuit breaker state",
	}, []string{"name"})

	// Circuit breaker calls, by result (success, failure, rejected)
	CircuitBreakerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grocer_circuit_breaker_requests_total",
		Help: "Total number of calls through the circuit breaker",
	}, []string{"name", "result"})

	// Scheduled job runs, by job and status
	JobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grocer_job_runs_total",
		Help: "Total number of scheduled job runs",
	}, []string{"job", "status"})
)

var once sync.Once

// Init registers all collectors with the default registry.
// Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RecommendationsTotal,
			ProviderFailuresTotal,
			StageDuration,
			RecommendationConfidence,
			CacheLookupsTotal,
			CircuitBreakerState,
			CircuitBreakerRequests,
			JobRunsTotal,
		)
	})
}
