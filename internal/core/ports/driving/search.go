package driving

import (
	"context"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// SearchService reads indexed entries.
type SearchService interface {
	// Search returns entries in a collection matching the query.
	Search(ctx context.Context, collection, query string, limit int) ([]domain.IndexEntry, error)

	// Get retrieves a single entry by key.
	Get(ctx context.Context, collection, key string) (*domain.IndexEntry, error)

	// Count returns the number of entries in a collection.
	Count(ctx context.Context, collection string) (int, error)
}
