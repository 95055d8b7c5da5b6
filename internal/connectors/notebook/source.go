package notebook

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/logger"
	"github.com/custodia-labs/sercha-harvest/internal/normalisers/tabular"
)

// Extension is used for staged rows.
const Extension = ".csv"

// Ensure Source implements the interface.
var _ driven.Source = (*Source)(nil)

// KaggleType describes Kaggle notebook exports.
var KaggleType = domain.SourceType{
	ID:             "kaggle",
	Name:           "Kaggle Notebooks",
	Description:    "Notebook metadata from Kaggle CSV exports",
	DocTypes:       []domain.DocType{domain.DocTypePreprocessed, domain.DocTypeRaw},
	DefaultIDField: "docid",
}

// GitHubType describes GitHub notebook exports.
var GitHubType = domain.SourceType{
	ID:             "github",
	Name:           "GitHub Notebooks",
	Description:    "Notebook metadata from GitHub CSV exports",
	DocTypes:       []domain.DocType{domain.DocTypePreprocessed, domain.DocTypeRaw},
	DefaultIDField: "git_url",
}

// Source lists notebook rows from a CSV export.
type Source struct {
	sourceType string
	run        string
	docType    domain.DocType
	inputFile  string
	idField    string
	staging    driven.StagingArea
	converter  *tabular.Normaliser

	mu     sync.Mutex
	tables map[string]*table
}

// New creates a notebook source for a tabular run.
func New(sourceType string, cfg domain.RunConfig, staging driven.StagingArea) (*Source, error) {
	if !cfg.DocType.IsTabular() {
		return nil, fmt.Errorf("%w: %s does not produce %s documents", domain.ErrUnsupportedType, sourceType, cfg.DocType)
	}
	if cfg.InputFile == "" {
		return nil, fmt.Errorf("%w: %s: input file is required", domain.ErrInvalidInput, sourceType)
	}

	input, err := filepath.Abs(cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("resolving input file: %w", err)
	}

	return &Source{
		sourceType: sourceType,
		run:        cfg.RunName(),
		docType:    cfg.DocType,
		inputFile:  input,
		idField:    cfg.IDField,
		staging:    staging,
		converter:  tabular.New(),
		tables:     make(map[string]*table),
	}, nil
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return s.sourceType
}

// DocType returns the document type this source produces.
func (s *Source) DocType() domain.DocType {
	return s.docType
}

// InputFile returns the absolute path of the CSV export.
func (s *Source) InputFile() string {
	return s.inputFile
}

// List reads the export and returns one reference per row with an id.
// Rows with an empty id are skipped.
func (s *Source) List(_ context.Context) ([]domain.DocumentReference, error) {
	t, err := readTable(s.inputFile)
	if err != nil {
		return nil, &domain.UpstreamQueryError{Source: s.sourceType, Err: err}
	}

	idx := t.column(s.idField)
	if idx < 0 {
		return nil, &domain.UpstreamQueryError{
			Source: s.sourceType,
			Err:    fmt.Errorf("%s: missing id column %q", s.inputFile, s.idField),
		}
	}

	s.mu.Lock()
	s.tables[s.inputFile] = t
	s.mu.Unlock()

	refs := make([]domain.DocumentReference, 0, len(t.rows))
	for i, row := range t.rows {
		id := cell(row, idx)
		if id == "" {
			logger.Warn("%s: row %d has no %s, skipping", s.inputFile, i+1, s.idField)
			continue
		}
		refs = append(refs, domain.DocumentReference{
			Identifier: id,
			SourceURL:  RowURL(s.inputFile, i+1),
		})
	}
	return refs, nil
}

// Fetch stages the referenced row as a header-plus-row CSV.
func (s *Source) Fetch(_ context.Context, ref domain.DocumentReference) (*domain.RawDocument, error) {
	path, n, err := ResolveRowURL(ref.SourceURL)
	if err != nil {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
	}

	t, err := s.table(path)
	if err != nil {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
	}

	row, ok := t.row(n)
	if !ok {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: fmt.Errorf("%s: no row %d", path, n)}
	}
	if idx := t.column(s.idField); idx >= 0 && cell(row, idx) != ref.Identifier {
		return nil, &domain.FetchError{
			Identifier: ref.Identifier,
			Err:        fmt.Errorf("%s: row %d no longer holds %s", path, n, ref.Identifier),
		}
	}

	data, err := tabular.WriteRow(t.header, row)
	if err != nil {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
	}

	local, err := s.staging.Write(s.run, ref.Identifier, Extension, data)
	if err != nil {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
	}

	return &domain.RawDocument{
		Identifier: ref.Identifier,
		SourceURL:  ref.SourceURL,
		LocalPath:  local,
		MIMEType:   "text/csv",
		Content:    data,
	}, nil
}

// Convert maps the staged row onto a record.
func (s *Source) Convert(ctx context.Context, raw *domain.RawDocument, idField string) (*domain.NormalizedRecord, error) {
	return s.converter.Convert(ctx, raw, idField)
}

// Close drops cached tables.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string]*table)
	return nil
}

// table returns the cached export at path, reading it on first use.
func (s *Source) table(path string) (*table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tables[path]; ok {
		return t, nil
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	s.tables[path] = t
	return t, nil
}
