package domain

import "context"

// Role is a chat message author.
type Role string

const (
	// RoleSystem carries the fixed instruction.
	RoleSystem Role = "system"
	// RoleUser carries the caller-derived content.
	RoleUser Role = "user"
)

// Message is one entry of an ordered chat transcript.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is the input of a generative call.
// Zero MaxTokens and FrequencyPenalty leave the provider defaults in place.
type CompletionRequest struct {
	Messages         []Message
	Temperature      float32
	MaxTokens        int
	FrequencyPenalty float32
}

// CompletionResult carries the generated text and token usage.
type CompletionResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer is the generative model contract.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
