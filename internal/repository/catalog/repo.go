package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/domain"
)

const defaultBatchSize = 100

// store is the consumer interface for the seeding write path (ISP).
type store interface {
	EnsureCollection(ctx context.Context, collection string, dim int) error
	Upsert(ctx context.Context, collection string, points []db.Point) error
}

// Repo writes passages into one collection. Implements usecase/ingest.Repository.
type Repo struct {
	store      store
	collection string
	dim        int
	batchSize  int
}

// New creates a catalog repository for a collection of dim-sized vectors.
func New(s store, collection string, dim int) *Repo {
	return &Repo{store: s, collection: collection, dim: dim, batchSize: defaultBatchSize}
}

// WithBatchSize sets how many passages go into one upsert.
func (r *Repo) WithBatchSize(n int) *Repo {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Ensure creates the collection or index if missing.
func (r *Repo) Ensure(ctx context.Context) error {
	if err := r.store.EnsureCollection(ctx, r.collection, r.dim); err != nil {
		return fmt.Errorf("ensure collection %s: %w", r.collection, err)
	}
	return nil
}

// Save upserts passages in batches. Vectors of the wrong dimension are rejected before any write.
func (r *Repo) Save(ctx context.Context, passages []domain.Passage) error {
	for i := range passages {
		if err := domain.CheckDimensions(passages[i].Vector, r.dim); err != nil {
			return fmt.Errorf("passage %s: %w", passages[i].ID, err)
		}
	}

	for start := 0; start < len(passages); start += r.batchSize {
		end := min(start+r.batchSize, len(passages))
		points := make([]db.Point, 0, end-start)
		for _, p := range passages[start:end] {
			points = append(points, db.Point{ID: p.ID, Content: p.Content, Vector: p.Vector})
		}
		if err := r.store.Upsert(ctx, r.collection, points); err != nil {
			return fmt.Errorf("upsert %s [%d:%d]: %w", r.collection, start, end, err)
		}
	}
	return nil
}
