package driving

import (
	"context"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// Watcher re-runs tabular runs when their input files change.
type Watcher interface {
	// Watch blocks until ctx is cancelled, invoking onResult after every run.
	Watch(ctx context.Context, cfgs []domain.RunConfig, onResult func(*domain.BatchResult, error)) error
}
