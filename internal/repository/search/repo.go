package search

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/domain/match"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo is the similarity search client over one collection.
type Repo struct {
	store      store
	collection string
	duration   prometheus.Observer
	results    prometheus.Observer
}

// Option configures a Repo.
type Option func(*Repo)

// WithMetrics records search latency and result counts.
func WithMetrics(duration, results prometheus.Observer) Option {
	return func(r *Repo) {
		r.duration = duration
		r.results = results
	}
}

// New creates a search repository over the named collection.
func New(s store, collection string, opts ...Option) *Repo {
	r := &Repo{store: s, collection: collection}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Search returns matches with similarity >= threshold, similarity descending, at most topK.
// Ties are broken by id ascending. An empty set is a valid result.
// Store failures are returned as *domain.UpstreamError carrying the cause.
func (r *Repo) Search(ctx context.Context, vector []float32, threshold float64, topK int) (match.Set, error) {
	if len(vector) == 0 {
		return nil, domain.Validationf("search vector is empty")
	}
	if threshold < 0 || threshold > 1 {
		return nil, domain.Validationf("threshold %v out of [0, 1]", threshold)
	}
	if topK < 1 {
		return nil, domain.Validationf("top_k must be >= 1, got %d", topK)
	}

	start := time.Now()
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		Collection: r.collection,
		Vector:     vector,
		K:          topK,
		MinScore:   threshold,
	})
	if r.duration != nil {
		r.duration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, domain.NewUpstreamError(domain.StageSearch,
			fmt.Errorf("search knn %s: %w", r.collection, err))
	}

	set := match.Select(toMatches(sr), threshold, topK)
	if r.results != nil {
		r.results.Observe(float64(len(set)))
	}
	return set, nil
}

func toMatches(sr *db.SearchResult) []match.Match {
	if sr == nil {
		return nil
	}
	out := make([]match.Match, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		out = append(out, match.Match{ID: e.ID, Content: e.Content, Similarity: e.Score})
	}
	return out
}
