package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every component failed.
	Unhealthy Status = "error"
)

// CheckResult is one component outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Component names reported by Check.
const (
	ComponentVectorStore = "vector_store"
	ComponentOpenAI      = "openai"
)

const defaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	provider ProviderChecker
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a Service. provider can be nil.
func New(store StorePinger, provider ProviderChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, provider: provider, timeout: defaultCheckTimeout, logger: logger}
}

// Check runs every component check, each bounded by its own timeout.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)

	checks[ComponentVectorStore] = s.run(ctx, ComponentVectorStore, s.store.Ping)
	if s.provider != nil {
		checks[ComponentOpenAI] = s.run(ctx, ComponentOpenAI, s.provider.HealthCheck)
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) run(ctx context.Context, name string, check func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := check(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
