package icos

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-harvest/internal/connectors/web"
	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/normalisers/dataset"
)

const (
	// SourceID is the registered source identifier.
	SourceID = "icos"

	// Endpoint is the Carbon Portal SPARQL endpoint.
	Endpoint = "https://meta.icos-cp.eu/sparql"

	// Infrastructure tags every record's ResearchInfrastructure field.
	Infrastructure = "ICOS"

	// Extension is used for staged landing pages.
	Extension = ".html"
)

// Ensure Source implements the interface.
var _ driven.Source = (*Source)(nil)

// Type describes the source for registries.
var Type = domain.SourceType{
	ID:             SourceID,
	Name:           "ICOS Carbon Portal",
	Description:    "Dataset landing pages listed via the Carbon Portal SPARQL endpoint",
	DocTypes:       []domain.DocType{domain.DocTypeDataset},
	DefaultIDField: dataset.FieldIdentifier,
}

// Option configures a Source.
type Option func(*Source)

// WithEndpoint overrides the SPARQL endpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *Source) {
		s.endpoint = endpoint
	}
}

// WithSpecs overrides the object specifications listed.
func WithSpecs(specs []string) Option {
	return func(s *Source) {
		s.specs = specs
	}
}

// Source lists, fetches and converts ICOS dataset landing pages.
type Source struct {
	endpoint  string
	specs     []string
	lister    *Lister
	fetcher   *web.Fetcher
	converter *dataset.Normaliser
}

// New creates an ICOS source for a dataset run.
func New(cfg domain.RunConfig, client *web.Client, staging driven.StagingArea, opts ...Option) (*Source, error) {
	if cfg.DocType != domain.DocTypeDataset {
		return nil, fmt.Errorf("%w: %s does not produce %s documents", domain.ErrUnsupportedType, SourceID, cfg.DocType)
	}

	s := &Source{
		endpoint: Endpoint,
		specs:    ObjectSpecs,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.lister = NewLister(client, s.endpoint, Query(s.specs))
	s.fetcher = web.NewFetcher(client, staging, cfg.RunName(), Extension, "text/html")
	s.converter = dataset.New(Infrastructure)
	return s, nil
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return SourceID
}

// DocType returns the document type this source produces.
func (s *Source) DocType() domain.DocType {
	return domain.DocTypeDataset
}

// List queries the SPARQL endpoint.
func (s *Source) List(ctx context.Context) ([]domain.DocumentReference, error) {
	return s.lister.List(ctx)
}

// Fetch downloads and stages one landing page.
func (s *Source) Fetch(ctx context.Context, ref domain.DocumentReference) (*domain.RawDocument, error) {
	return s.fetcher.Fetch(ctx, ref)
}

// Convert extracts the dataset record from a landing page.
func (s *Source) Convert(ctx context.Context, raw *domain.RawDocument, idField string) (*domain.NormalizedRecord, error) {
	return s.converter.Convert(ctx, raw, idField)
}

// Close releases resources.
func (s *Source) Close() error {
	return nil
}
