package popchoice

import "github.com/kailas-cloud/popchoice/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrVectorDimMismatch = domain.ErrVectorDimMismatch
	ErrUpstream          = domain.ErrUpstream
	ErrBudgetExceeded    = domain.ErrBudgetExceeded
)

// UpstreamError names the pipeline stage a remote failure happened in.
// Use errors.As() to extract it.
type UpstreamError = domain.UpstreamError
