package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// SynthesizerConfig carries the sampling knobs of the recommendation call.
type SynthesizerConfig struct {
	Temperature      float32
	MaxTokens        int
	FrequencyPenalty float32
}

// Synthesizer writes the recommendation from the assembled context and the intent.
type Synthesizer struct {
	completer domain.Completer
	cfg       SynthesizerConfig
}

// NewSynthesizer creates a synthesizer on top of a chat completer.
func NewSynthesizer(c domain.Completer, cfg SynthesizerConfig) *Synthesizer {
	return &Synthesizer{completer: c, cfg: cfg}
}

// Synthesize returns the recommendation text.
func (s *Synthesizer) Synthesize(ctx context.Context, contextText, intent string) (string, error) {
	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: SynthesisPrompt},
			{Role: domain.RoleUser, Content: SynthesisUserMessage(contextText, intent)},
		},
		Temperature:      s.cfg.Temperature,
		MaxTokens:        s.cfg.MaxTokens,
		FrequencyPenalty: s.cfg.FrequencyPenalty,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	content := strings.TrimSpace(res.Content)
	if content == "" {
		return "", fmt.Errorf("synthesize: empty completion: %w", domain.ErrUpstream)
	}
	return content, nil
}
