package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driving"
)

// mockPipeline implements driving.PipelineDriver for testing.
type mockPipeline struct {
	runs     []domain.RunConfig
	fatal    map[string]error
	failures map[string][]domain.RecordFailure
	refs     []domain.DocumentReference
}

func (m *mockPipeline) Run(_ context.Context, cfg domain.RunConfig) (*domain.BatchResult, error) {
	m.runs = append(m.runs, cfg)
	if err := m.fatal[cfg.RunName()]; err != nil {
		return nil, err
	}
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	failures := m.failures[cfg.RunName()]
	return &domain.BatchResult{
		RunID:       "run-" + cfg.RunName(),
		Name:        cfg.RunName(),
		Source:      cfg.Source,
		Collection:  cfg.Collection,
		Listed:      2 + len(failures),
		Fetched:     2,
		Converted:   2,
		Indexed:     2,
		IndexedKeys: []string{"k1", "k2"},
		Failures:    failures,
		StartedAt:   started,
		FinishedAt:  started.Add(1500 * time.Millisecond),
	}, nil
}

func (m *mockPipeline) RunAll(ctx context.Context, cfgs []domain.RunConfig) ([]*domain.BatchResult, error) {
	var (
		results []*domain.BatchResult
		errs    []error
	)
	for _, cfg := range cfgs {
		r, err := m.Run(ctx, cfg)
		if err != nil {
			errs = append(errs, fmt.Errorf("run %s: %w", cfg.RunName(), err))
			continue
		}
		results = append(results, r)
	}
	return results, errors.Join(errs...)
}

func (m *mockPipeline) List(_ context.Context, cfg domain.RunConfig) ([]domain.DocumentReference, error) {
	m.runs = append(m.runs, cfg)
	if err := m.fatal[cfg.RunName()]; err != nil {
		return nil, err
	}
	return m.refs, nil
}

func (m *mockPipeline) Status(_ context.Context, name string) (*driving.PipelineStatus, error) {
	return &driving.PipelineStatus{Name: name, Stage: domain.StageDone}, nil
}

// mockSearch implements driving.SearchService for testing.
type mockSearch struct {
	entries   []domain.IndexEntry
	lastQuery string
	lastLimit int
}

func (m *mockSearch) Search(_ context.Context, collection, query string, limit int) ([]domain.IndexEntry, error) {
	m.lastQuery = query
	m.lastLimit = limit
	var out []domain.IndexEntry
	for _, e := range m.entries {
		if e.Collection == collection {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockSearch) Get(_ context.Context, collection, key string) (*domain.IndexEntry, error) {
	for _, e := range m.entries {
		if e.Collection == collection && e.Key == key {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
}

func (m *mockSearch) Count(_ context.Context, collection string) (int, error) {
	n := 0
	for _, e := range m.entries {
		if e.Collection == collection {
			n++
		}
	}
	return n, nil
}

// mockRegistry implements driving.SourceRegistry for testing.
type mockRegistry struct{}

func (m *mockRegistry) List() []domain.SourceType {
	return []domain.SourceType{
		{ID: "icos", Name: "ICOS Carbon Portal", DocTypes: []domain.DocType{domain.DocTypeDataset}, DefaultIDField: "identifier"},
		{ID: "kaggle", Name: "Kaggle Notebooks", DocTypes: []domain.DocType{domain.DocTypePreprocessed, domain.DocTypeRaw}, DefaultIDField: "docid"},
	}
}

func (m *mockRegistry) Get(id string) (*domain.SourceType, error) {
	for _, st := range m.List() {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockWatcher implements driving.Watcher by reporting one run per config.
type mockWatcher struct {
	watched []domain.RunConfig
}

func (m *mockWatcher) Watch(_ context.Context, cfgs []domain.RunConfig, onResult func(*domain.BatchResult, error)) error {
	m.watched = cfgs
	for _, cfg := range cfgs {
		onResult(&domain.BatchResult{Name: cfg.RunName(), Indexed: 3}, nil)
	}
	onResult(nil, errors.New("input vanished"))
	return nil
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	settings domain.Settings
	path     string
	updated  bool
}

func (m *mockConfigStore) Settings() domain.Settings { return m.settings }

func (m *mockConfigStore) Update(s domain.Settings) error {
	m.settings = s
	m.updated = true
	return nil
}

func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return m.path }

type testServices struct {
	pipeline *mockPipeline
	search   *mockSearch
	watcher  *mockWatcher
	config   *mockConfigStore
}

func setupTestServices(dir string) (*testServices, func()) {
	indexedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ts := &testServices{
		pipeline: &mockPipeline{
			fatal:    make(map[string]error),
			failures: make(map[string][]domain.RecordFailure),
		},
		search: &mockSearch{entries: []domain.IndexEntry{
			{
				Collection:     "icos",
				Key:            "https://hdl.handle.net/11676/abc",
				Fields:         domain.Fields{"name": "CO2 at Hyltemossa", "creator": []string{"Jane Doe"}, "distribution": nil},
				ContextualText: "CO2 at Hyltemossa",
				IndexedAt:      indexedAt,
			},
		}},
		watcher: &mockWatcher{},
		config: &mockConfigStore{
			settings: domain.DefaultSettings(),
			path:     filepath.Join(dir, "config.toml"),
		},
	}

	SetServices(Services{
		Pipeline: ts.pipeline,
		Search:   ts.search,
		Sources:  &mockRegistry{},
		Watcher:  ts.watcher,
		Config:   ts.config,
	})

	return ts, func() {
		SetServices(Services{})
		harvestResume = false
		harvestConcurrency = 0
		harvestJSON = false
		listJSON = false
		searchLimit = 10
		searchJSON = false
		getJSON = false
		configInitForce = false
	}
}
