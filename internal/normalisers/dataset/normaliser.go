package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-harvest/internal/normalisers/contextual"
	"github.com/custodia-labs/sercha-harvest/internal/normalisers/jsonld"
)

// Ensure Normaliser implements the interface.
var _ driven.RecordConverter = (*Normaliser)(nil)

// BlockField names the embedded block in ParseErrors about the block itself.
const BlockField = "ld+json"

var errNoName = errors.New("entity has no name")

// Record field names.
const (
	FieldResearchInfrastructure = "ResearchInfrastructure"
	FieldURL                    = "url"
	FieldAcquireLicensePage     = "acquireLicensePage"
	FieldContact                = "contact"
	FieldContentInfo            = "contentInfo"
	FieldCreator                = "creator"
	FieldDatePublished          = "datePublished"
	FieldDescription            = "description"
	FieldDistribution           = "distribution"
	FieldDistributionInfo       = "distributionInfo"
	FieldIdentifier             = "identifier"
	FieldKeywords               = "keywords"
	FieldLanguage               = "language"
	FieldLicense                = "license"
	FieldModificationDate       = "modificationDate"
	FieldName                   = "name"
	FieldPublisher              = "publisher"
	FieldSpatialCoverage        = "spatialCoverage"
	FieldTemporalCoverage       = "temporalCoverage"
	FieldAbstract               = "abstract"
)

// DefaultComposer builds contextual text for dataset records.
var DefaultComposer = contextual.Composer{
	Fields:   []string{"keywords", "genre", "theme", "name"},
	Fallback: "Abstract",
}

// Normaliser converts dataset landing pages into records.
type Normaliser struct {
	infrastructure string
	composer       contextual.Composer
}

// New creates a dataset normaliser that tags records with the given
// research infrastructure name (e.g., "ICOS").
func New(infrastructure string) *Normaliser {
	return &Normaliser{
		infrastructure: infrastructure,
		composer:       DefaultComposer,
	}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Convert parses the embedded JSON-LD block into a record.
func (n *Normaliser) Convert(_ context.Context, raw *domain.RawDocument, idField string) (*domain.NormalizedRecord, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	block, err := jsonld.Extract(raw.Content)
	if err != nil {
		return nil, &domain.ParseError{Identifier: raw.Identifier, Field: BlockField, Err: err}
	}

	e := extractor{id: raw.Identifier, block: block}

	name := e.text("name")
	fields := domain.Fields{
		FieldResearchInfrastructure: n.infrastructure,
		FieldURL:                    raw.SourceURL,
		FieldAcquireLicensePage:     e.text("acquireLicensePage"),
		FieldContact:                name,
		FieldContentInfo:            name,
		FieldCreator:                e.creators(),
		FieldDatePublished:          e.text("datePublished"),
		FieldDescription:            e.text("description"),
		FieldIdentifier:             e.text("identifier"),
		FieldKeywords:               e.keywords(),
		FieldLanguage:               e.languages(),
		FieldLicense:                e.text("license"),
		FieldModificationDate:       e.text("dateModified"),
		FieldName:                   name,
		FieldPublisher:              e.publisher(),
		FieldSpatialCoverage:        e.spatialCoverage(),
		FieldTemporalCoverage:       e.text("temporalCoverage"),
		FieldAbstract:               "",
	}

	distribution := e.distribution()
	fields[FieldDistribution] = distribution
	fields[FieldDistributionInfo] = distribution

	if e.err != nil {
		return nil, e.err
	}

	key := fields.String(idField)
	if strings.TrimSpace(key) == "" {
		return nil, &domain.ParseError{Identifier: raw.Identifier, Field: idField}
	}

	return &domain.NormalizedRecord{
		Identifier:     key,
		Fields:         fields,
		ContextualText: n.composer.Compose(fields),
	}, nil
}

// extractor decodes typed properties and keeps the first failure.
type extractor struct {
	id    string
	block jsonld.Block
	err   error
}

func (e *extractor) decode(key string, v any) bool {
	if e.err != nil {
		return false
	}
	if err := e.block.Decode(key, v); err != nil {
		if errors.Is(err, jsonld.ErrMissing) {
			e.err = &domain.ParseError{Identifier: e.id, Field: key}
		} else {
			e.err = &domain.ParseError{Identifier: e.id, Field: key, Err: err}
		}
		return false
	}
	return true
}

func (e *extractor) fail(key string, err error) {
	if e.err == nil {
		e.err = &domain.ParseError{Identifier: e.id, Field: key, Err: err}
	}
}

func (e *extractor) text(key string) string {
	var t jsonld.Text
	if !e.decode(key, &t) {
		return ""
	}
	return string(t)
}

func (e *extractor) keywords() []string {
	var kw jsonld.TextList
	if !e.decode("keywords", &kw) {
		return nil
	}
	return []string(kw)
}

// creators maps a single creator object or a list of them to names.
func (e *extractor) creators() []string {
	var creators jsonld.OneOrMany[jsonld.Thing]
	if !e.decode("creator", &creators) {
		return nil
	}
	return e.names("creator", creators)
}

// languages always yields a list of language names.
func (e *extractor) languages() []string {
	var langs jsonld.OneOrMany[jsonld.Thing]
	if !e.decode("inLanguage", &langs) {
		return nil
	}
	return e.names("inLanguage", langs)
}

// names requires every entity to carry a name.
func (e *extractor) names(key string, things []jsonld.Thing) []string {
	names := make([]string, 0, len(things))
	for i, t := range things {
		if strings.TrimSpace(t.Name) == "" {
			e.fail(key, fmt.Errorf("entry %d: %w", i, errNoName))
			return nil
		}
		names = append(names, t.Name)
	}
	return names
}

func (e *extractor) publisher() string {
	var p jsonld.Thing
	if !e.decode("publisher", &p) {
		return ""
	}
	if strings.TrimSpace(p.Name) == "" {
		e.fail("publisher", errNoName)
		return ""
	}
	return p.Name
}

// spatialCoverage takes the first place and prefers its containing place.
func (e *extractor) spatialCoverage() string {
	var places jsonld.OneOrMany[jsonld.Place]
	if !e.decode("spatialCoverage", &places) {
		return ""
	}
	if len(places) == 0 {
		e.fail("spatialCoverage", fmt.Errorf("empty list"))
		return ""
	}
	place := places[0]
	if place.ContainedInPlace != nil {
		place = *place.ContainedInPlace
	}
	if strings.TrimSpace(place.Name) == "" {
		e.fail("spatialCoverage", errNoName)
		return ""
	}
	return place.Name
}

// distribution is optional; absence yields nil.
func (e *extractor) distribution() any {
	if e.err != nil || !e.block.Has("distribution") {
		return nil
	}
	var dists jsonld.OneOrMany[jsonld.Distribution]
	if err := e.block.Decode("distribution", &dists); err != nil {
		e.fail("distribution", err)
		return nil
	}
	if len(dists) == 0 || dists[0].ContentURL == "" {
		return nil
	}
	return dists[0].ContentURL
}
