package health

import (
	"context"
	"maps"
	"slices"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional capability is down; search still ranks.
	Degraded Status = "degraded"
	// Unhealthy indicates the candidate index is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported by Check.
const (
	ComponentDatabase    = "database"
	ComponentEmbedding   = "embedding"
	ComponentEnhancement = "enhancement"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	providers map[string]ProviderChecker
}

// New creates a Service. db is nil when candidates are served from memory.
// Nil providers are skipped.
func New(db DBPinger, embedding, enhancement ProviderChecker) *Service {
	providers := make(map[string]ProviderChecker, 2)
	if embedding != nil {
		providers[ComponentEmbedding] = embedding
	}
	if enhancement != nil {
		providers[ComponentEnhancement] = enhancement
	}
	return &Service{db: db, providers: providers}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.providers)+1)
	status := Healthy

	if s.db != nil {
		checks[ComponentDatabase] = result(s.db.Ping(ctx))
		if checks[ComponentDatabase] == CheckError {
			status = Unhealthy
		}
	}

	for _, name := range slices.Sorted(maps.Keys(s.providers)) {
		checks[name] = result(s.providers[name].HealthCheck(ctx))
		if checks[name] == CheckError && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
