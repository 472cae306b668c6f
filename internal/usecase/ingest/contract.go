package ingest

import (
	"context"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// Splitter cuts a document into passages.
type Splitter interface {
	SplitText(text string) ([]string, error)
}

// Repository persists embedded passages.
type Repository interface {
	Ensure(ctx context.Context) error
	Save(ctx context.Context, passages []domain.Passage) error
}
