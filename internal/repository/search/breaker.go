package search

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/db"
)

// BreakerConfig controls when the vector store circuit opens.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that open the circuit
	OpenTimeout      time.Duration // time in open state before a half-open probe
	HalfOpenRequests uint32
}

// BreakerStore fails fast while the vector store is unhealthy. It never retries.
type BreakerStore struct {
	inner    store
	cb       *gobreaker.CircuitBreaker[*db.SearchResult]
	name     string
	requests *prometheus.CounterVec
}

// NewBreakerStore wraps s with a circuit breaker.
// state is a gauge vec labelled by breaker name (0 closed, 1 half-open, 2 open);
// requests is a counter vec labelled by name and result. Both may be nil.
func NewBreakerStore(
	s store,
	cfg BreakerConfig,
	state *prometheus.GaugeVec,
	requests *prometheus.CounterVec,
	logger *zap.Logger,
) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = "vector-store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}
	if state != nil {
		state.WithLabelValues(cfg.Name).Set(0)
	}

	cb := gobreaker.NewCircuitBreaker[*db.SearchResult](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if state != nil {
				state.WithLabelValues(name).Set(stateValue(to))
			}
		},
	})

	return &BreakerStore{inner: s, cb: cb, name: cfg.Name, requests: requests}
}

// SearchKNN runs the inner search through the breaker.
func (b *BreakerStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	res, err := b.cb.Execute(func() (*db.SearchResult, error) {
		return b.inner.SearchKNN(ctx, q)
	})
	b.record(err)
	return res, err
}

// State reports the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) record(err error) {
	if b.requests == nil {
		return
	}
	result := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	b.requests.WithLabelValues(b.name, result).Inc()
}

// isBreakerSuccess keeps caller mistakes and cancellations from tripping the circuit.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, db.ErrInvalidQuery) ||
		errors.Is(err, context.Canceled)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
