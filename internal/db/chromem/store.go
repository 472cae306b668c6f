package chromem

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/philippgille/chromem-go"

	"github.com/kailas-cloud/popchoice/internal/db"
)

var _ db.Store = (*Store)(nil)

var errNoEmbedder = errors.New("chromem: embeddings must be computed before insert")

// Config selects in-memory or on-disk storage. An empty Path keeps everything in memory.
type Config struct {
	Path     string
	Compress bool
}

// Store implements db.Store on an embedded chromem-go database.
type Store struct {
	db *chromem.DB
}

// NewStore opens the embedded database.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return &Store{db: chromem.NewDB()}, nil
	}
	d, err := chromem.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem db %s: %w", cfg.Path, err)
	}
	return &Store{db: d}, nil
}

// Ping always succeeds: the database lives in-process.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op. Persistent writes are flushed per document.
func (s *Store) Close() {}

// SearchKNN runs an exhaustive cosine search over the collection.
// A missing or empty collection yields an empty result.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	col := s.db.GetCollection(q.Collection, noEmbed)
	if col == nil {
		return &db.SearchResult{}, nil
	}
	// chromem requires nResults <= document count
	k := min(q.K, col.Count())
	if k == 0 {
		return &db.SearchResult{}, nil
	}

	results, err := col.QueryEmbedding(ctx, q.Vector, k, nil, nil)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(results))
	for _, r := range results {
		score := db.Clamp01(float64(r.Similarity))
		if q.MinScore > 0 && float32(score) < float32(q.MinScore) {
			continue
		}
		entries = append(entries, db.SearchEntry{ID: r.ID, Content: r.Content, Score: score})
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// EnsureCollection creates the collection. chromem infers the dimension from the first insert.
func (s *Store) EnsureCollection(_ context.Context, collection string, _ int) error {
	if _, err := s.db.GetOrCreateCollection(collection, nil, noEmbed); err != nil {
		return &db.Error{Op: db.OpCreateCollection, Err: err}
	}
	return nil
}

// Upsert adds documents with precomputed embeddings. Existing ids are overwritten.
func (s *Store) Upsert(ctx context.Context, collection string, points []db.Point) error {
	if len(points) == 0 {
		return nil
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, noEmbed)
	if err != nil {
		return &db.Error{Op: db.OpCreateCollection, Err: err}
	}

	docs := make([]chromem.Document, len(points))
	for i, p := range points {
		docs[i] = chromem.Document{
			ID:        p.ID,
			Content:   p.Content,
			Embedding: normalize(p.Vector),
		}
	}
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

// normalize returns a unit-length copy so cosine similarity reduces to a dot product.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	n := float32(math.Sqrt(sum))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}
