package driven

import (
	"context"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// DocumentLister enumerates the documents a source offers.
type DocumentLister interface {
	// List returns document references in upstream order.
	// Fails with *domain.UpstreamQueryError; a failed listing aborts the run.
	List(ctx context.Context) ([]domain.DocumentReference, error)
}

// RecordFetcher retrieves one raw document and stages it locally.
type RecordFetcher interface {
	// Fetch retrieves the document body and writes it to the staging area.
	// Fails with *domain.FetchError on transport failure, timeout or
	// non-success status.
	Fetch(ctx context.Context, ref domain.DocumentReference) (*domain.RawDocument, error)
}

// RecordConverter parses a raw document into a normalised record.
type RecordConverter interface {
	// Convert extracts the record fields from a staged raw document.
	// idField names the record field that becomes the record Identifier.
	// Fails with *domain.ParseError naming the missing or malformed field.
	Convert(ctx context.Context, raw *domain.RawDocument, idField string) (*domain.NormalizedRecord, error)
}

// Source bundles the list, fetch and convert capabilities of one data source.
// Each data source (ICOS, Kaggle, GitHub notebooks) implements this interface.
type Source interface {
	DocumentLister
	RecordFetcher
	RecordConverter

	// Type returns the source type identifier.
	Type() string

	// DocType returns the document type this instance produces.
	DocType() domain.DocType

	// Close releases resources.
	Close() error
}

// SourceBuilder creates a Source from a run configuration.
type SourceBuilder func(cfg domain.RunConfig) (Source, error)

// SourceFactory creates sources from run configuration.
// It maintains a registry of source types and their builders.
type SourceFactory interface {
	// Create returns a Source for the given run.
	// Returns ErrUnsupportedType if the source or doc type is unknown.
	Create(ctx context.Context, cfg domain.RunConfig) (Source, error)

	// Register adds a source builder for the given type.
	Register(sourceType domain.SourceType, builder SourceBuilder)

	// SupportedTypes returns all registered source types, sorted by ID.
	SupportedTypes() []domain.SourceType
}
