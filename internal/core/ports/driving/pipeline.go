package driving

import (
	"context"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// PipelineDriver runs the list, fetch, convert and index stages over a batch.
type PipelineDriver interface {
	// Run executes one configured run. A listing failure aborts the run;
	// per-record failures are reported in the BatchResult.
	Run(ctx context.Context, cfg domain.RunConfig) (*domain.BatchResult, error)

	// RunAll executes runs in order and joins their fatal errors.
	RunAll(ctx context.Context, cfgs []domain.RunConfig) ([]*domain.BatchResult, error)

	// List runs only the listing stage and saves the references
	// so a later Run with Resume can skip the upstream query.
	// Returns domain.ErrRunInProgress while the same run is executing.
	List(ctx context.Context, cfg domain.RunConfig) ([]domain.DocumentReference, error)

	// Status returns progress for a run by name.
	Status(ctx context.Context, name string) (*PipelineStatus, error)
}

// PipelineStatus represents the current state of a run.
type PipelineStatus struct {
	// Name identifies the run.
	Name string

	// Running indicates if the run is in progress.
	Running bool

	// Stage is the current pipeline stage.
	Stage domain.Stage

	// Total is the number of references being processed.
	Total int

	// Processed is the number of records that have left the current stage.
	Processed int

	// ErrorCount is the number of per-record failures so far.
	ErrorCount int
}
