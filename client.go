package popchoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/config"
	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/db/backend"
	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/domain/recommendation"
	searchrepo "github.com/kailas-cloud/popchoice/internal/repository/search"
	openaiTransport "github.com/kailas-cloud/popchoice/internal/transport/openai"
	"github.com/kailas-cloud/popchoice/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/popchoice/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/popchoice/internal/usecase/recommend"
)

const defaultReadinessTimeout = 10 * time.Second

// recommendUseCase is the internal interface for the pipeline, swapped in tests.
type recommendUseCase interface {
	RecommendAnswers(ctx context.Context, q1, q2, q3 string) (recommendation.Result, error)
}

// Client is the popchoice SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	recSvc    recommendUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and waits for the vector store to respond.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.db.Driver == config.DriverSupabase && cfg.db.Supabase.MatchFunction == "" {
		cfg.db.Supabase.MatchFunction = "match_" + cfg.db.Collection
	}

	h, err := backend.Open(cfg.db)
	if err != nil {
		return nil, fmt.Errorf("popchoice: %w", err)
	}

	if err := db.WaitForReady(ctx, h.Store, defaultReadinessTimeout); err != nil {
		h.Store.Close()
		return nil, fmt.Errorf("popchoice: vector store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		h.Store.Close()
		return nil, err
	}
	return wireClient(h.Store, cfg, obs), nil
}

func (c *clientConfig) validate() error {
	if c.db.Driver == "" {
		return errors.New("popchoice: vector store required " +
			"(use WithSupabase, WithQdrant, WithValkey, WithRedis or WithChromem)")
	}
	if c.apiKey == "" {
		return errors.New("popchoice: OpenAI API key required (use WithOpenAI)")
	}
	if c.pipeline.Threshold < 0 || c.pipeline.Threshold > 1 {
		return fmt.Errorf("popchoice: threshold must be within [0, 1], got %v", c.pipeline.Threshold)
	}
	if c.pipeline.TopK <= 0 {
		return fmt.Errorf("popchoice: top k must be positive, got %d", c.pipeline.TopK)
	}
	return nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()

	completer := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:   cfg.apiKey,
		BaseURL:  cfg.baseURL,
		Model:    cfg.chatModel,
		Provider: defaultProvider,
		Logger:   logger,
	})

	var embedder domain.Embedder
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	} else {
		embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.embeddingModel,
			Dimensions: cfg.pipeline.Dimensions,
			Provider:   defaultProvider,
			Logger:     logger,
		})
	}

	p := cfg.pipeline
	recSvc := recommenduc.New(
		generation.NewSummarizer(completer, p.SummaryTemperature),
		embedder,
		searchrepo.New(store, cfg.db.Collection),
		generation.NewSynthesizer(completer, generation.SynthesizerConfig{
			Temperature:      p.SynthesisTemperature,
			MaxTokens:        p.SynthesisMaxTokens,
			FrequencyPenalty: p.FrequencyPenalty,
		}),
		recommenduc.Config{
			Threshold:   p.Threshold,
			TopK:        p.TopK,
			Dimensions:  p.Dimensions,
			CallTimeout: cfg.callTimeout,
		},
		logger,
	)

	return &Client{
		store:     store,
		recSvc:    recSvc,
		healthSvc: healthuc.New(store, completer, logger),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks vector store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, "", err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Recommend runs the pipeline for one set of answers:
// q1 is the favorite movie and why, q2 new or classic, q3 fun or serious.
// Blank answers fail with ErrValidation before any remote call.
// Remote failures before generation fail with an *UpstreamError.
func (c *Client) Recommend(ctx context.Context, q1, q2, q3 string) (rec Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, string(rec.Outcome), err) }()

	res, err := c.recSvc.RecommendAnswers(ctx, q1, q2, q3)
	if err != nil {
		return Recommendation{}, fmt.Errorf("recommend: %w", err)
	}
	return fromResult(res), nil
}
