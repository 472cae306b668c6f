package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline Prometheus metrics.
var (
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Vector store search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Matches returned per search after thresholding",
			Buckets:   []float64{0, 1, 2, 3, 4, 8},
		},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	BreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_requests_total",
			Help:      "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Recommendation pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"stage"},
	)

	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendations by outcome (ok, no_match, fallback, error)",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register registers all application metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderTokensTotal,
			ProviderErrorsTotal,
			BudgetTokensRemaining,
			EmbeddingCacheTotal,
			SearchDuration,
			SearchResults,
			BreakerState,
			BreakerRequests,
			StageDuration,
			RecommendationsTotal,
		)
	})
}
