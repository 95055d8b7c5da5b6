package domain

import (
	"fmt"
	"time"
)

// DocType identifies the kind of document a run produces.
type DocType string

// Available document types.
const (
	// DocTypeDataset is a dataset landing page with embedded JSON-LD.
	DocTypeDataset DocType = "dataset"

	// DocTypeRaw is a raw notebook listing.
	DocTypeRaw DocType = "raw"

	// DocTypePreprocessed is a preprocessed notebook listing.
	DocTypePreprocessed DocType = "preprocessed"
)

// IsValid returns true if the document type is recognised.
func (d DocType) IsValid() bool {
	switch d {
	case DocTypeDataset, DocTypeRaw, DocTypePreprocessed:
		return true
	default:
		return false
	}
}

// IsTabular returns true if the document type is backed by a CSV input file.
func (d DocType) IsTabular() bool {
	return d == DocTypeRaw || d == DocTypePreprocessed
}

// String returns the string representation.
func (d DocType) String() string {
	return string(d)
}

// RunConfig is the enumerated configuration of one pipeline run.
type RunConfig struct {
	// Name identifies the run in config, status and metrics.
	// Defaults to Collection when empty.
	Name string `toml:"name"`

	// Source selects the registered source (e.g., "icos", "kaggle").
	Source string `toml:"source"`

	// DocType selects the document type the source produces.
	DocType DocType `toml:"doc_type"`

	// Collection is the target index collection.
	Collection string `toml:"collection"`

	// IDField is the record field used as the upsert key.
	IDField string `toml:"id_field"`

	// InputFile is the CSV backing tabular document types.
	InputFile string `toml:"input_file,omitempty"`

	// Concurrency bounds parallel fetches. Values below 1 mean sequential.
	Concurrency int `toml:"concurrency,omitempty"`

	// Resume reuses the references saved by a previous listing.
	Resume bool `toml:"-"`

	// DiscardStaged removes staged raw payloads once they convert.
	// Payloads are kept unless a run opts out.
	DiscardStaged bool `toml:"discard_staged,omitempty"`
}

// RunName returns Name, falling back to Collection.
func (c RunConfig) RunName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Collection
}

// Validate checks the source-independent parts of the configuration.
func (c RunConfig) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("%w: run %q: source is required", ErrInvalidInput, c.RunName())
	}
	if !c.DocType.IsValid() {
		return fmt.Errorf("%w: run %q: doc type %q", ErrUnsupportedType, c.RunName(), c.DocType)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: run %q: collection is required", ErrInvalidInput, c.RunName())
	}
	if c.IDField == "" {
		return fmt.Errorf("%w: run %q: id field is required", ErrInvalidInput, c.RunName())
	}
	if c.DocType.IsTabular() && c.InputFile == "" {
		return fmt.Errorf("%w: run %q: input file is required for %s documents", ErrInvalidInput, c.RunName(), c.DocType)
	}
	return nil
}

// Stage is a state of the pipeline state machine.
type Stage int

const (
	// StageListing enumerates document references.
	StageListing Stage = iota

	// StageFetching retrieves and stages raw documents.
	StageFetching

	// StageConverting parses raw documents into records.
	StageConverting

	// StageIndexing upserts records into the index.
	StageIndexing

	// StageDone is terminal.
	StageDone
)

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageListing:
		return "listing"
	case StageFetching:
		return "fetching"
	case StageConverting:
		return "converting"
	case StageIndexing:
		return "indexing"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// RecordFailure reports one record skipped by a run.
type RecordFailure struct {
	Identifier string
	Stage      Stage
	Err        error
}

// BatchResult summarises one pipeline run.
type BatchResult struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Name, Source and Collection are copied from the RunConfig.
	Name       string
	Source     string
	Collection string

	// Listed is the number of references enumerated.
	Listed int

	// Fetched is the number of raw documents staged.
	Fetched int

	// Converted is the number of records produced.
	Converted int

	// Indexed is the number of successful upserts.
	Indexed int

	// IndexedKeys lists upsert keys in write order.
	IndexedKeys []string

	// Failures lists per-record failures in the order they occurred.
	Failures []RecordFailure

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock duration of the run.
func (r *BatchResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailuresAt returns the failures recorded at a stage.
func (r *BatchResult) FailuresAt(stage Stage) []RecordFailure {
	var out []RecordFailure
	for _, f := range r.Failures {
		if f.Stage == stage {
			out = append(out, f)
		}
	}
	return out
}
