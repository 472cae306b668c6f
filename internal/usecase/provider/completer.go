package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// InstrumentedCompleter wraps a completer with the same budget and usage accounting as embeddings.
type InstrumentedCompleter struct {
	inner    domain.Completer
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedCompleter wraps inner. budget may be nil.
func NewInstrumentedCompleter(
	inner domain.Completer, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedCompleter {
	return &InstrumentedCompleter{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Complete checks the budget, delegates and records token usage.
func (p *InstrumentedCompleter) Complete(
	ctx context.Context, req domain.CompletionRequest,
) (domain.CompletionResult, error) {
	if err := checkBudget(ctx, p.budget); err != nil {
		p.logger.Error("Budget exceeded",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Error(err),
		)
		return domain.CompletionResult{}, err
	}

	start := time.Now()
	result, err := p.inner.Complete(ctx, req)
	duration := time.Since(start)
	if err != nil {
		p.logger.Error("Completion request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}

	recordBudget(p.budget, p.provider, result.TotalTokens)
	domain.UsageFromContext(ctx).AddCompletion(result.TotalTokens)

	p.logger.Debug("Completion request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)
	return result, nil
}
