package db

import "fmt"

// Stored field names shared by every backend.
const (
	FieldContent   = "content"
	FieldEmbedding = "embedding"
)

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	Collection string
	Vector     []float32
	K          int
	// MinScore is pushed down to backends that filter natively. Zero disables it.
	MinScore float64
}

// Validate rejects queries no backend can serve.
func (q *KNNQuery) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: collection is required", ErrInvalidQuery)
	}
	if len(q.Vector) == 0 {
		return fmt.Errorf("%w: vector is required", ErrInvalidQuery)
	}
	if q.K <= 0 {
		return fmt.Errorf("%w: k must be positive", ErrInvalidQuery)
	}
	return nil
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single passage hit. Score is a similarity in [0, 1], higher is closer.
type SearchEntry struct {
	ID      string
	Content string
	Score   float64
}

// SimilarityFromCosineDistance converts a cosine distance to a similarity clamped to [0, 1].
func SimilarityFromCosineDistance(d float64) float64 {
	return Clamp01(1.0 - d)
}

// Clamp01 bounds a score to [0, 1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
