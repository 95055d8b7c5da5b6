package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.SourceFactory = (*Factory)(nil)

type registration struct {
	sourceType domain.SourceType
	builder    driven.SourceBuilder
}

// Factory maps source identifiers to their builders.
type Factory struct {
	mu      sync.RWMutex
	sources map[string]registration
}

// NewFactory creates an empty source factory.
func NewFactory() *Factory {
	return &Factory{
		sources: make(map[string]registration),
	}
}

// Register adds a source builder. Registering an ID twice replaces the builder.
func (f *Factory) Register(sourceType domain.SourceType, builder driven.SourceBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources[sourceType.ID] = registration{sourceType: sourceType, builder: builder}
}

// Create validates the run configuration and builds its source.
func (f *Factory) Create(ctx context.Context, cfg domain.RunConfig) (driven.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	reg, ok := f.sources[cfg.Source]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: source %q", domain.ErrUnsupportedType, cfg.Source)
	}
	if !reg.sourceType.Supports(cfg.DocType) {
		return nil, fmt.Errorf("%w: source %q does not produce %s documents", domain.ErrUnsupportedType, cfg.Source, cfg.DocType)
	}

	return reg.builder(cfg)
}

// SupportedTypes returns all registered source types, sorted by ID.
func (f *Factory) SupportedTypes() []domain.SourceType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]domain.SourceType, 0, len(f.sources))
	for _, reg := range f.sources {
		types = append(types, reg.sourceType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types
}
