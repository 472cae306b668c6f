package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/metrics"
)

// Config holds the settings of one OpenAI-compatible model endpoint.
// RateLimit is requests per second; zero disables client-side limiting.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	RateLimit  float64
	RateBurst  int
	Logger     *zap.Logger
}

// base carries what the embedder and the completer share.
type base struct {
	client    *openai.Client
	model     string
	user      string
	provider  string
	operation string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func newBase(cfg *Config, operation string) base {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return base{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		user:      cfg.User,
		provider:  cfg.Provider,
		operation: operation,
		limiter:   limiter,
		logger:    logger,
	}
}

// wait blocks until the rate limiter admits one request or ctx is done.
func (b *base) wait(ctx context.Context) error {
	if b.limiter == nil {
		return nil
	}
	if err := b.limiter.Wait(ctx); err != nil {
		b.recordError("rate_limited")
		return fmt.Errorf("%s rate limiter: %v: %w", b.operation, err, domain.ErrUpstream)
	}
	return nil
}

func (b *base) recordSuccess(d time.Duration, promptTokens, completionTokens, totalTokens int) {
	metrics.ProviderRequestsTotal.WithLabelValues(b.provider, b.model, b.operation, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(b.provider, b.model, b.operation).Observe(d.Seconds())
	if totalTokens > 0 {
		tokens := metrics.ProviderTokensTotal
		tokens.WithLabelValues(b.provider, b.model, b.operation, "prompt").Add(float64(promptTokens))
		tokens.WithLabelValues(b.provider, b.model, b.operation, "completion").Add(float64(completionTokens))
		tokens.WithLabelValues(b.provider, b.model, b.operation, "total").Add(float64(totalTokens))
	}
}

func (b *base) recordError(errorType string) {
	metrics.ProviderRequestsTotal.WithLabelValues(b.provider, b.model, b.operation, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(b.provider, b.model, b.operation, errorType).Inc()
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (b *base) HealthCheck(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
