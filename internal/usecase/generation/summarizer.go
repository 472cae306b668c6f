package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// Summarizer turns the combined answers into a one-sentence intent.
type Summarizer struct {
	completer   domain.Completer
	temperature float32
}

// NewSummarizer creates a summarizer on top of a chat completer.
func NewSummarizer(c domain.Completer, temperature float32) *Summarizer {
	return &Summarizer{completer: c, temperature: temperature}
}

// Summarize returns the intent sentence. Empty model output is an upstream failure.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: SummaryPrompt},
			{Role: domain.RoleUser, Content: text},
		},
		Temperature: s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	intent := strings.TrimSpace(res.Content)
	if intent == "" {
		return "", fmt.Errorf("summarize: empty summary: %w", domain.ErrUpstream)
	}
	return intent, nil
}
