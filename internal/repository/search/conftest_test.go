package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/popchoice/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	calls       int
	lastQuery   *db.KNNQuery
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.calls++
	m.lastQuery = q
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "movies"), ms
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}

func entries(pairs ...any) *db.SearchResult {
	res := &db.SearchResult{}
	for i := 0; i+1 < len(pairs); i += 2 {
		id := pairs[i].(string)
		res.Entries = append(res.Entries, db.SearchEntry{ID: id, Content: "movie " + id, Score: pairs[i+1].(float64)})
	}
	res.Total = len(res.Entries)
	return res
}
