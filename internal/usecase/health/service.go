package health

import "context"

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
	Chunks int
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	chunks ChunkCounter
}

// New creates a Service. db can be nil when history persistence is disabled.
func New(db DBPinger, chunks ChunkCounter) *Service {
	return &Service{db: db, chunks: chunks}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"engine": CheckOK}

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	report := Report{Status: status, Checks: checks}
	if s.chunks != nil {
		report.Chunks = s.chunks.ChunkCount()
	}
	return report
}
