package domain

// Passage is one stored reference text with its embedding.
// Passages are written by the seeding job and only read by the pipeline.
type Passage struct {
	ID      string
	Content string
	Vector  []float32
}
