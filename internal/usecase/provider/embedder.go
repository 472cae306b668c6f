package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/metrics"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one embeddings request.
const DefaultMaxAPIBatchSize = 256

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedEmbedder wraps an embedder with budget enforcement, usage accounting and logging.
// Transport metrics are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. budget may be nil.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Embed checks the budget, delegates and records token usage.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := checkBudget(ctx, p.budget); err != nil {
		p.logger.Error("Budget exceeded",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)
	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	recordBudget(p.budget, p.provider, result.TotalTokens)
	domain.UsageFromContext(ctx).AddEmbedding(result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed checks the budget, splits texts into API-sized chunks and delegates.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	result := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += DefaultMaxAPIBatchSize {
		if err := checkBudget(ctx, p.budget); err != nil {
			p.logger.Error("Budget exceeded (batch)",
				zap.String("provider", p.provider),
				zap.Int("chunk_offset", offset),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, err
		}

		end := min(offset+DefaultMaxAPIBatchSize, len(texts))
		chunk, err := domain.BatchEmbed(ctx, p.inner, texts[offset:end])
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", end-offset),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("chunk %d: %w", offset, err)
		}

		recordBudget(p.budget, p.provider, chunk.TotalTokens)
		domain.UsageFromContext(ctx).AddEmbedding(chunk.TotalTokens)

		result.Embeddings = append(result.Embeddings, chunk.Embeddings...)
		result.PromptTokens += chunk.PromptTokens
		result.TotalTokens += chunk.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

func checkBudget(ctx context.Context, budget BudgetChecker) error {
	if budget == nil {
		return nil
	}
	if err := budget.Check(ctx); err != nil {
		return fmt.Errorf("budget check: %w", err)
	}
	return nil
}

func recordBudget(budget BudgetChecker, provider string, tokens int) {
	if budget == nil || tokens <= 0 {
		return
	}
	budget.Record(int64(tokens))
	remaining := metrics.BudgetTokensRemaining
	remaining.WithLabelValues(provider, "daily").Set(float64(budget.RemainingDaily()))
	remaining.WithLabelValues(provider, "monthly").Set(float64(budget.RemainingMonthly()))
}
