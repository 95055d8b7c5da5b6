package services

import (
	"fmt"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driving"
)

// Ensure SourceRegistry implements the interface.
var _ driving.SourceRegistry = (*SourceRegistry)(nil)

// SourceRegistry provides information about available source types.
type SourceRegistry struct {
	factory driven.SourceFactory
}

// NewSourceRegistry creates a registry backed by the source factory.
func NewSourceRegistry(factory driven.SourceFactory) *SourceRegistry {
	return &SourceRegistry{factory: factory}
}

// List returns all registered source types, sorted by ID.
func (r *SourceRegistry) List() []domain.SourceType {
	return r.factory.SupportedTypes()
}

// Get returns a source type by ID.
func (r *SourceRegistry) Get(id string) (*domain.SourceType, error) {
	for _, st := range r.factory.SupportedTypes() {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, fmt.Errorf("source %q: %w", id, domain.ErrNotFound)
}
