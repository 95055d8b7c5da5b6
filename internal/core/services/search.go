package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driving"
)

// DefaultSearchLimit caps results when the caller passes no limit.
const DefaultSearchLimit = 10

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService reads entries back from the index.
type SearchService struct {
	index driven.IndexReader
}

// NewSearchService creates a new search service.
func NewSearchService(index driven.IndexReader) *SearchService {
	return &SearchService{index: index}
}

// Search returns entries matching every query term.
func (s *SearchService) Search(ctx context.Context, collection, query string, limit int) ([]domain.IndexEntry, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	entries, err := s.index.Search(ctx, collection, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return entries, nil
}

// Get retrieves a single entry by key.
func (s *SearchService) Get(ctx context.Context, collection, key string) (*domain.IndexEntry, error) {
	if collection == "" || key == "" {
		return nil, fmt.Errorf("%w: collection and key are required", domain.ErrInvalidInput)
	}
	return s.index.Get(ctx, collection, key)
}

// Count returns the number of entries in a collection.
func (s *SearchService) Count(ctx context.Context, collection string) (int, error) {
	if collection == "" {
		return 0, fmt.Errorf("%w: collection is required", domain.ErrInvalidInput)
	}
	return s.index.Count(ctx, collection)
}
