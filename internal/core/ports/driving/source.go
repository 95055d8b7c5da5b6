package driving

import "github.com/custodia-labs/sercha-harvest/internal/core/domain"

// SourceRegistry provides information about available source types.
type SourceRegistry interface {
	// List returns all registered source types.
	List() []domain.SourceType

	// Get returns a source type by ID.
	Get(id string) (*domain.SourceType, error)
}
