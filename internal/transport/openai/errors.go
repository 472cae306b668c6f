package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

// parseAPIError turns a go-openai error into a readable error wrapping domain.ErrUpstream.
// The second return value is the metrics error_type label.
func parseAPIError(operation string, err error) (error, string) {
	wrap := domain.ErrUpstream

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s request timed out: %w: %w", operation, err, wrap), "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s request canceled: %w: %w", operation, err, wrap), "canceled"
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", operation, reqErr.HTTPStatusCode, detail, wrap), "api_error"
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", operation, apiErr.HTTPStatusCode, apiErr.Message, wrap), "api_error"
	}

	return fmt.Errorf("%s request failed: %v: %w", operation, err, wrap), "transport"
}

// extractDetail reads the "detail" field some OpenAI-compatible providers return.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
