package domain

import (
	"fmt"
	"time"
)

// IndexBackend identifies the index service implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores entries in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendElasticsearch writes to an Elasticsearch cluster.
	IndexBackendElasticsearch IndexBackend = "elasticsearch"

	// IndexBackendMemory keeps entries in process memory.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendElasticsearch, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// Default values for Settings.
const (
	DefaultUserAgent         = "sercha-harvest/1.0"
	DefaultFetchTimeout      = 30 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultElasticsearchURL  = "http://localhost:9200"
)

// Settings is the process-wide configuration.
type Settings struct {
	// StagingDir holds listed references and fetched payloads.
	StagingDir string `toml:"staging_dir"`

	// DataDir holds the SQLite index database.
	DataDir string `toml:"data_dir"`

	// IndexBackend selects the index implementation.
	IndexBackend IndexBackend `toml:"index_backend"`

	// ElasticsearchURL is the cluster base URL for the elasticsearch backend.
	ElasticsearchURL string `toml:"elasticsearch_url"`

	// UserAgent is sent with every upstream request.
	UserAgent string `toml:"user_agent"`

	// FetchTimeout is a duration string (e.g., "30s") bounding each request.
	FetchTimeout string `toml:"fetch_timeout"`

	// RequestsPerSecond throttles upstream requests. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// Concurrency is the default fetch concurrency for runs that don't set one.
	Concurrency int `toml:"concurrency"`

	// MetricsFile receives Prometheus textfile metrics after each command.
	MetricsFile string `toml:"metrics_file"`

	// Runs are the configured pipeline runs.
	Runs []RunConfig `toml:"runs"`
}

// Timeout parses FetchTimeout, falling back to DefaultFetchTimeout.
func (s *Settings) Timeout() time.Duration {
	if s.FetchTimeout == "" {
		return DefaultFetchTimeout
	}
	d, err := time.ParseDuration(s.FetchTimeout)
	if err != nil || d <= 0 {
		return DefaultFetchTimeout
	}
	return d
}

// Run returns the configured run with the given name.
func (s *Settings) Run(name string) (RunConfig, error) {
	for _, r := range s.Runs {
		if r.RunName() == name {
			return r, nil
		}
	}
	return RunConfig{}, fmt.Errorf("run %q: %w", name, ErrNotFound)
}

// Validate checks the settings and every configured run.
func (s *Settings) Validate() error {
	if !s.IndexBackend.IsValid() {
		return fmt.Errorf("%w: index backend %q", ErrUnsupportedType, s.IndexBackend)
	}
	if s.FetchTimeout != "" {
		if _, err := time.ParseDuration(s.FetchTimeout); err != nil {
			return fmt.Errorf("%w: fetch_timeout: %w", ErrInvalidInput, err)
		}
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(s.Runs))
	for _, r := range s.Runs {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.RunName()] {
			return fmt.Errorf("%w: duplicate run %q", ErrInvalidInput, r.RunName())
		}
		seen[r.RunName()] = true
	}
	return nil
}

// DefaultRuns mirrors the original deployment: the ICOS dataset harvest
// and the Kaggle notebook listings. The raw and preprocessed notebook
// runs are configured with independent input files.
func DefaultRuns() []RunConfig {
	return []RunConfig{
		{
			Name:       "icos",
			Source:     "icos",
			DocType:    DocTypeDataset,
			Collection: "icos",
			IDField:    "identifier",
		},
		{
			Name:       "kaggle-preprocessed",
			Source:     "kaggle",
			DocType:    DocTypePreprocessed,
			Collection: "kaggle_notebooks",
			IDField:    "docid",
			InputFile:  "data/Kaggle/notebook_lists/raw_notebooks.csv",
		},
		{
			Name:       "kaggle-raw",
			Source:     "kaggle",
			DocType:    DocTypeRaw,
			Collection: "kaggle_raw_notebooks",
			IDField:    "docid",
			InputFile:  "data/Kaggle/notebook_lists/updated_processed_notebooks.csv",
		},
	}
}

// DefaultSettings returns the settings used when no configuration file exists.
func DefaultSettings() Settings {
	return Settings{
		IndexBackend:      IndexBackendSQLite,
		ElasticsearchURL:  DefaultElasticsearchURL,
		UserAgent:         DefaultUserAgent,
		FetchTimeout:      DefaultFetchTimeout.String(),
		RequestsPerSecond: DefaultRequestsPerSecond,
		Concurrency:       1,
		Runs:              DefaultRuns(),
	}
}

// ApplyDefaults fills zero-valued fields from DefaultSettings.
// A negative RequestsPerSecond is left for Validate to reject.
func (s *Settings) ApplyDefaults() {
	d := DefaultSettings()
	if s.IndexBackend == "" {
		s.IndexBackend = d.IndexBackend
	}
	if s.ElasticsearchURL == "" {
		s.ElasticsearchURL = d.ElasticsearchURL
	}
	if s.UserAgent == "" {
		s.UserAgent = d.UserAgent
	}
	if s.FetchTimeout == "" {
		s.FetchTimeout = d.FetchTimeout
	}
	if s.Concurrency < 1 {
		s.Concurrency = d.Concurrency
	}
	if s.Runs == nil {
		s.Runs = d.Runs
	}
}
