package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/domain"
)

func newTestBreaker(ms *mockStore, threshold uint32) (*BreakerStore, *prometheus.GaugeVec, *prometheus.CounterVec) {
	state := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "test_breaker_state"}, []string{"name"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_breaker_requests"}, []string{"name", "result"})
	b := NewBreakerStore(ms, BreakerConfig{
		Name:             "test",
		FailureThreshold: threshold,
		OpenTimeout:      time.Hour,
	}, state, requests, zap.NewNop())
	return b, state, requests
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	ms := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("down")
	}}
	b, state, requests := newTestBreaker(ms, 2)
	q := &db.KNNQuery{Collection: "movies", Vector: testVector(), K: 4}

	for range 2 {
		if _, err := b.SearchKNN(context.Background(), q); err == nil {
			t.Fatal("expected error")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	_, err := b.SearchKNN(context.Background(), q)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if ms.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (open circuit must not call store)", ms.calls)
	}
	if v := testutil.ToFloat64(state.WithLabelValues("test")); v != 2 {
		t.Errorf("state gauge = %v, want 2", v)
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("test", "rejected")); v != 1 {
		t.Errorf("rejected = %v, want 1", v)
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("test", "failure")); v != 2 {
		t.Errorf("failures = %v, want 2", v)
	}
}

func TestBreaker_IgnoresInvalidQueryAndCancel(t *testing.T) {
	ms := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, context.Canceled
	}}
	b, _, _ := newTestBreaker(ms, 1)

	for range 3 {
		_, _ = b.SearchKNN(context.Background(), &db.KNNQuery{})
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreaker_OpenCircuitSurfacesAsUpstream(t *testing.T) {
	ms := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("down")
	}}
	b, _, _ := newTestBreaker(ms, 1)
	repo := New(b, "movies")

	_, _ = repo.Search(context.Background(), testVector(), 0.5, 4)
	_, err := repo.Search(context.Background(), testVector(), 0.5, 4)
	if !errors.Is(err, domain.ErrUpstream) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected upstream error wrapping ErrOpenState, got %v", err)
	}
}

func TestBreaker_PassesResults(t *testing.T) {
	ms := &mockStore{searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
		return entries("1", 0.9), nil
	}}
	b, _, requests := newTestBreaker(ms, 3)

	res, err := b.SearchKNN(context.Background(), &db.KNNQuery{Collection: "movies", Vector: testVector(), K: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(res.Entries))
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("test", "success")); v != 1 {
		t.Errorf("success = %v, want 1", v)
	}
}
