package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/metrics"
)

// Completer is a generative provider using the OpenAI-compatible /chat/completions API.
type Completer struct {
	base
}

// NewCompleter creates an OpenAI-compatible chat completion provider.
func NewCompleter(cfg *Config) *Completer {
	return &Completer{base: newBase(cfg, metrics.OpCompletion)}
}

// Complete implements domain.Completer. A response without choices is an upstream failure.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	if err := c.wait(ctx); err != nil {
		return domain.CompletionResult{}, err
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: chatRole(m.Role), Content: m.Content}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            c.model,
		Messages:         messages,
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		FrequencyPenalty: req.FrequencyPenalty,
		User:             c.user,
	})
	if err != nil {
		wrapped, errType := parseAPIError("completion", err)
		c.recordError(errType)
		return domain.CompletionResult{}, wrapped
	}

	if len(resp.Choices) == 0 {
		c.recordError("empty_response")
		return domain.CompletionResult{}, fmt.Errorf("completion response has no choices: %w", domain.ErrUpstream)
	}

	c.recordSuccess(time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	return domain.CompletionResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

func chatRole(r domain.Role) string {
	switch r {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
