package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// Default passage sizing for movie descriptions.
const (
	DefaultChunkSize    = 250
	DefaultChunkOverlap = 35
)

// NewSplitter returns a recursive character splitter with the given sizing.
func NewSplitter(chunkSize, chunkOverlap int) Splitter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
}

// Stats summarizes one ingestion run.
type Stats struct {
	Passages int
	Tokens   int
	Duration time.Duration
}

// Added describes one passage stored by Add.
type Added struct {
	ID     string
	Tokens int
}

// Service seeds the vector store: split, embed, upsert.
type Service struct {
	splitter Splitter
	embedder domain.Embedder
	repo     Repository
	logger   *zap.Logger
}

// New creates an ingestion service.
func New(splitter Splitter, embedder domain.Embedder, repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{splitter: splitter, embedder: embedder, repo: repo, logger: logger}
}

// Ingest splits text into passages, embeds them in batches and stores them.
// Passage ids are 1-based positions so every backend accepts them.
func (s *Service) Ingest(ctx context.Context, text string) (Stats, error) {
	start := time.Now()

	chunks, err := s.splitter.SplitText(text)
	if err != nil {
		return Stats{}, fmt.Errorf("split text: %w", err)
	}
	contents := chunks[:0]
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			contents = append(contents, c)
		}
	}
	if len(contents) == 0 {
		return Stats{}, domain.Validationf("document has no text to ingest")
	}

	if err := s.repo.Ensure(ctx); err != nil {
		return Stats{}, fmt.Errorf("ensure collection: %w", err)
	}

	res, err := domain.BatchEmbed(ctx, s.embedder, contents)
	if err != nil {
		return Stats{}, fmt.Errorf("embed passages: %w", err)
	}
	if len(res.Embeddings) != len(contents) {
		return Stats{}, fmt.Errorf("embed passages: got %d vectors for %d passages: %w",
			len(res.Embeddings), len(contents), domain.ErrUpstream)
	}

	passages := make([]domain.Passage, len(contents))
	for i, c := range contents {
		passages[i] = domain.Passage{ID: strconv.Itoa(i + 1), Content: c, Vector: res.Embeddings[i]}
	}

	if err := s.repo.Save(ctx, passages); err != nil {
		return Stats{}, fmt.Errorf("save passages: %w", err)
	}

	stats := Stats{Passages: len(passages), Tokens: res.TotalTokens, Duration: time.Since(start)}
	s.logger.Info("Ingestion completed",
		zap.Int("passages", stats.Passages),
		zap.Int("tokens", stats.Tokens),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// Add embeds one description as a single passage and stores it under a fresh UUID.
// Supabase tables assign their own row id; the returned id is then informational.
func (s *Service) Add(ctx context.Context, content string) (Added, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Added{}, domain.Validationf("content is required")
	}

	if err := s.repo.Ensure(ctx); err != nil {
		return Added{}, fmt.Errorf("ensure collection: %w", err)
	}

	res, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return Added{}, fmt.Errorf("embed content: %w", err)
	}

	p := domain.Passage{ID: uuid.NewString(), Content: content, Vector: res.Embedding}
	if err := s.repo.Save(ctx, []domain.Passage{p}); err != nil {
		return Added{}, fmt.Errorf("save passage: %w", err)
	}

	s.logger.Info("Passage added", zap.String("id", p.ID), zap.Int("tokens", res.TotalTokens))
	return Added{ID: p.ID, Tokens: res.TotalTokens}, nil
}
