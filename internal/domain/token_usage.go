package domain

import (
	"context"
	"sync/atomic"
)

type tokenUsageKey struct{}

// TokenUsage collects provider token usage for a single request.
// The handler puts a pointer into the context before calling the pipeline;
// provider decorators add to it; the handler reads it for response headers.
type TokenUsage struct {
	embedding  atomic.Int64
	completion atomic.Int64
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddEmbedding records embedding tokens. Safe on a nil receiver.
func (u *TokenUsage) AddEmbedding(n int) {
	if u != nil {
		u.embedding.Add(int64(n))
	}
}

// AddCompletion records chat completion tokens. Safe on a nil receiver.
func (u *TokenUsage) AddCompletion(n int) {
	if u != nil {
		u.completion.Add(int64(n))
	}
}

// Embedding returns the embedding tokens recorded so far.
func (u *TokenUsage) Embedding() int64 {
	if u == nil {
		return 0
	}
	return u.embedding.Load()
}

// Completion returns the completion tokens recorded so far.
func (u *TokenUsage) Completion() int64 {
	if u == nil {
		return 0
	}
	return u.completion.Load()
}
