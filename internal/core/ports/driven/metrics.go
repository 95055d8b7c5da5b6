package driven

import "github.com/custodia-labs/sercha-harvest/internal/core/domain"

// MetricsRecorder receives pipeline progress events.
type MetricsRecorder interface {
	// RecordOutcome counts one record leaving a stage.
	RecordOutcome(run string, stage domain.Stage, ok bool)

	// ObserveRun records a finished run.
	ObserveRun(result *domain.BatchResult)
}
