package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed caller input or malformed intermediate data.
	ErrValidation = errors.New("validation failed")
	// ErrVectorDimMismatch signals a vector whose length differs from the configured dimension.
	ErrVectorDimMismatch = fmt.Errorf("vector dimension mismatch: %w", ErrValidation)
	// ErrUpstream signals a remote service failure (network, non-2xx, malformed response, timeout).
	ErrUpstream = errors.New("upstream error")
	// ErrBudgetExceeded signals an exhausted provider token budget.
	ErrBudgetExceeded = errors.New("provider token budget exceeded")
	// ErrNotFound signals a missing index or collection in the vector store.
	ErrNotFound = errors.New("not found")
)

// Stage names the pipeline step an upstream failure happened in.
type Stage string

const (
	// StageSummarize is the intent summarization call.
	StageSummarize Stage = "summarize"
	// StageEmbed is the query embedding call.
	StageEmbed Stage = "embed"
	// StageSearch is the vector store similarity search.
	StageSearch Stage = "search"
	// StageSynthesize is the final generative call.
	StageSynthesize Stage = "synthesize"
)

// UpstreamError wraps a remote failure with the stage it happened in.
// errors.Is matches both ErrUpstream and the underlying cause.
type UpstreamError struct {
	Stage Stage
	Err   error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrUpstream.Error(), e.Stage)
	}
	return fmt.Sprintf("%s: %s: %s", ErrUpstream.Error(), e.Stage, e.Err.Error())
}

// Unwrap exposes both the sentinel and the cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// NewUpstreamError wraps err as a failure of the given stage.
// An error that already is an *UpstreamError is returned unchanged.
func NewUpstreamError(stage Stage, err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Stage: stage, Err: err}
}

// Validationf builds an ErrValidation-wrapped error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
