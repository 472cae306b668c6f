package recommend

import (
	"context"

	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/domain/match"
)

// Summarizer condenses the combined answers into an intent sentence.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher finds stored passages similar to a vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, threshold float64, topK int) (match.Set, error)
}

// Synthesizer writes the recommendation from context and intent.
type Synthesizer interface {
	Synthesize(ctx context.Context, contextText, intent string) (string, error)
}
