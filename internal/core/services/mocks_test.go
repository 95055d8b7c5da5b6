package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// --- Mock implementations shared by service tests ---

// mockSource implements driven.Source.
type mockSource struct {
	sourceType string
	run        string
	docType    domain.DocType
	staging    driven.StagingArea

	refs       []domain.DocumentReference
	listErr    error
	fetchErr   map[string]error
	convertErr map[string]error
	fetchDelay map[string]time.Duration
	block      chan struct{}

	mu          sync.Mutex
	closed      bool
	listCalls   int
	inFlight    int
	maxInFlight int
}

func newMockSource(ids ...string) *mockSource {
	m := &mockSource{
		sourceType: "mock",
		run:        "mock-run",
		docType:    domain.DocTypeDataset,
		fetchErr:   make(map[string]error),
		convertErr: make(map[string]error),
		fetchDelay: make(map[string]time.Duration),
	}
	for _, id := range ids {
		m.refs = append(m.refs, domain.DocumentReference{Identifier: id, SourceURL: "https://example.org/" + id})
	}
	return m
}

func (m *mockSource) Type() string            { return m.sourceType }
func (m *mockSource) DocType() domain.DocType { return m.docType }

func (m *mockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSource) List(_ context.Context) ([]domain.DocumentReference, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.DocumentReference(nil), m.refs...), nil
}

func (m *mockSource) Fetch(ctx context.Context, ref domain.DocumentReference) (*domain.RawDocument, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, &domain.FetchError{Identifier: ref.Identifier, Err: ctx.Err()}
		}
	}
	if d := m.fetchDelay[ref.Identifier]; d > 0 {
		time.Sleep(d)
	}
	if err := m.fetchErr[ref.Identifier]; err != nil {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
	}

	content := []byte("payload " + ref.Identifier)
	raw := &domain.RawDocument{
		Identifier: ref.Identifier,
		SourceURL:  ref.SourceURL,
		MIMEType:   "text/plain",
		Content:    content,
	}
	if m.staging != nil {
		path, err := m.staging.Write(m.run, ref.Identifier, ".txt", content)
		if err != nil {
			return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
		}
		raw.LocalPath = path
	}
	return raw, nil
}

func (m *mockSource) Convert(_ context.Context, raw *domain.RawDocument, idField string) (*domain.NormalizedRecord, error) {
	if err := m.convertErr[raw.Identifier]; err != nil {
		return nil, err
	}
	fields := domain.Fields{
		"identifier": raw.Identifier,
		"name":       "Document " + raw.Identifier,
		"url":        raw.SourceURL,
	}
	key := fields.String(idField)
	if key == "" {
		return nil, &domain.ParseError{Identifier: raw.Identifier, Field: idField}
	}
	return &domain.NormalizedRecord{
		Identifier:     key,
		Fields:         fields,
		ContextualText: fields.String("name"),
	}, nil
}

// mockFactory implements driven.SourceFactory.
type mockFactory struct {
	sources map[string]driven.Source
	types   []domain.SourceType
}

func newMockFactory(sources map[string]driven.Source) *mockFactory {
	f := &mockFactory{sources: sources}
	for id := range sources {
		f.types = append(f.types, domain.SourceType{ID: id, Name: "Mock " + id})
	}
	return f
}

func (f *mockFactory) Create(_ context.Context, cfg domain.RunConfig) (driven.Source, error) {
	src, ok := f.sources[cfg.Source]
	if !ok {
		return nil, fmt.Errorf("%w: source %q", domain.ErrUnsupportedType, cfg.Source)
	}
	return src, nil
}

func (f *mockFactory) Register(st domain.SourceType, _ driven.SourceBuilder) {
	f.types = append(f.types, st)
}

func (f *mockFactory) SupportedTypes() []domain.SourceType {
	return f.types
}

// failingIndex wraps an index and rejects selected keys.
type failingIndex struct {
	driven.Index
	failKeys map[string]bool
}

func (f *failingIndex) Upsert(ctx context.Context, collection, key string, record domain.NormalizedRecord) error {
	if f.failKeys[key] {
		return &domain.IndexError{Key: key, Err: fmt.Errorf("mapper_parsing_exception")}
	}
	return f.Index.Upsert(ctx, collection, key, record)
}

// mockMetrics implements driven.MetricsRecorder.
type mockMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	runs     []*domain.BatchResult
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{outcomes: make(map[string]int)}
}

func (m *mockMetrics) RecordOutcome(run string, stage domain.Stage, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[fmt.Sprintf("%s/%s/%t", run, stage, ok)]++
}

func (m *mockMetrics) ObserveRun(result *domain.BatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, result)
}
