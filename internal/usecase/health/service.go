package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodrag/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db         DBPinger
	completion CompletionChecker
}

// New creates a Service. Either dependency can be nil; nil checks are skipped.
func New(db DBPinger, completion CompletionChecker) *Service {
	return &Service{db: db, completion: completion}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		checks["database"] = s.run(ctx, "database", s.db.Ping)
	}
	if s.completion != nil {
		checks["completion"] = s.run(ctx, "completion", s.completion.HealthCheck)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) run(ctx context.Context, name string, check func(context.Context) error) CheckResult {
	if err := check(ctx); err != nil {
		logger.FromContext(ctx).Warn("Health check failed", zap.String("component", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
