package driven

import (
	"context"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// IndexWriter upserts records into a named collection.
type IndexWriter interface {
	// Upsert writes a record under key, replacing any prior entry entirely.
	// Fails with *domain.IndexError on transport or schema-validation failure.
	Upsert(ctx context.Context, collection, key string, record domain.NormalizedRecord) error

	// Close releases resources.
	Close() error
}

// IndexReader reads entries back from a collection.
type IndexReader interface {
	// Get retrieves an entry by key. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, collection, key string) (*domain.IndexEntry, error)

	// Count returns the number of entries in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// Search returns entries whose text matches every query term.
	Search(ctx context.Context, collection, query string, limit int) ([]domain.IndexEntry, error)
}

// Index is an index service handle supporting both reads and writes.
// It is constructed once per process run and closed at the end.
type Index interface {
	IndexWriter
	IndexReader
}
