package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/domain/match"
	"github.com/kailas-cloud/popchoice/internal/domain/query"
	"github.com/kailas-cloud/popchoice/internal/domain/recommendation"
	"github.com/kailas-cloud/popchoice/internal/metrics"
)

// Config holds the retrieval knobs and the per-call deadline.
type Config struct {
	Threshold   float64
	TopK        int
	Dimensions  int
	CallTimeout time.Duration
}

// Service runs the recommendation pipeline: summarize, embed, search, assemble, synthesize.
type Service struct {
	summarizer  Summarizer
	embedder    Embedder
	searcher    Searcher
	synthesizer Synthesizer
	cfg         Config
	logger      *zap.Logger
}

// New creates a recommendation service.
func New(
	summarizer Summarizer, embedder Embedder, searcher Searcher, synthesizer Synthesizer,
	cfg Config, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		summarizer:  summarizer,
		embedder:    embedder,
		searcher:    searcher,
		synthesizer: synthesizer,
		cfg:         cfg,
		logger:      logger,
	}
}

// RecommendAnswers validates the raw answers and runs Recommend.
func (s *Service) RecommendAnswers(ctx context.Context, q1, q2, q3 string) (recommendation.Result, error) {
	q, err := query.New(q1, q2, q3)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return recommendation.Result{}, err
	}
	return s.Recommend(ctx, q)
}

// Recommend produces one recommendation.
// Validation errors are returned before any remote call. An empty match set yields the
// no-match result without calling the synthesizer; a synthesizer failure yields the
// fallback result and no error. Other remote failures are returned as *domain.UpstreamError.
func (s *Service) Recommend(ctx context.Context, q query.Query) (recommendation.Result, error) {
	res, err := s.recommend(ctx, q)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		return recommendation.Result{}, err
	}
	metrics.RecommendationsTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

func (s *Service) recommend(ctx context.Context, q query.Query) (recommendation.Result, error) {
	// A zero Query bypassed the constructor.
	if _, err := query.New(q.FavoriteMovie(), q.Mood(), q.Tone()); err != nil {
		return recommendation.Result{}, err
	}

	intent, err := s.summarize(ctx, q.CombinedText())
	if err != nil {
		return recommendation.Result{}, err
	}

	vector, err := s.embed(ctx, intent)
	if err != nil {
		return recommendation.Result{}, err
	}

	matches, err := s.search(ctx, vector)
	if err != nil {
		return recommendation.Result{}, err
	}
	if matches.Empty() {
		s.logger.Debug("No passages above threshold",
			zap.Float64("threshold", s.cfg.Threshold),
			zap.String("intent", intent),
		)
		return recommendation.NoMatch(), nil
	}

	content, err := s.synthesize(ctx, match.Assemble(matches), intent)
	if err != nil {
		s.logger.Warn("Synthesis failed, returning fallback",
			zap.Int("matches", len(matches)),
			zap.Error(err),
		)
		return recommendation.Fallback(matches), nil
	}

	return recommendation.Generated(content, matches), nil
}

func (s *Service) summarize(ctx context.Context, text string) (string, error) {
	ctx, done := s.stage(ctx, domain.StageSummarize)
	defer done()

	intent, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", domain.NewUpstreamError(domain.StageSummarize, err)
	}
	s.logger.Debug("Intent summarized", zap.String("intent", intent))
	return intent, nil
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, done := s.stage(ctx, domain.StageEmbed)
	defer done()

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, fmt.Errorf("embed: %w", err)
		}
		return nil, domain.NewUpstreamError(domain.StageEmbed, err)
	}
	if err := domain.CheckDimensions(res.Embedding, s.cfg.Dimensions); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return res.Embedding, nil
}

func (s *Service) search(ctx context.Context, vector []float32) (match.Set, error) {
	ctx, done := s.stage(ctx, domain.StageSearch)
	defer done()

	matches, err := s.searcher.Search(ctx, vector, s.cfg.Threshold, s.cfg.TopK)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, fmt.Errorf("search: %w", err)
		}
		return nil, domain.NewUpstreamError(domain.StageSearch, err)
	}
	s.logger.Debug("Search completed", zap.Int("matches", len(matches)))
	return matches, nil
}

func (s *Service) synthesize(ctx context.Context, contextText, intent string) (string, error) {
	ctx, done := s.stage(ctx, domain.StageSynthesize)
	defer done()

	content, err := s.synthesizer.Synthesize(ctx, contextText, intent)
	if err != nil {
		return "", domain.NewUpstreamError(domain.StageSynthesize, err)
	}
	return content, nil
}

// stage bounds one remote call by CallTimeout and records its duration.
func (s *Service) stage(ctx context.Context, st domain.Stage) (context.Context, func()) {
	start := time.Now()
	cancel := context.CancelFunc(func() {})
	if s.cfg.CallTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
	}
	return ctx, func() {
		cancel()
		metrics.StageDuration.WithLabelValues(string(st)).Observe(time.Since(start).Seconds())
	}
}
