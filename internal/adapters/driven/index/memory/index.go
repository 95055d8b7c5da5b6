// Package memory provides an in-process index for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.Index = (*Index)(nil)

// Index is an in-memory implementation of driven.Index.
type Index struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.IndexEntry
	now         func() time.Time
}

// New creates a new in-memory index.
func New() *Index {
	return &Index{
		collections: make(map[string]map[string]domain.IndexEntry),
		now:         time.Now,
	}
}

// Upsert stores a copy of the record, replacing any entry with the same key.
func (x *Index) Upsert(_ context.Context, collection, key string, record domain.NormalizedRecord) error {
	if key == "" {
		return &domain.IndexError{Key: key, Err: fmt.Errorf("%w: empty key", domain.ErrInvalidInput)}
	}
	if err := record.Fields.Validate(); err != nil {
		return &domain.IndexError{Key: key, Err: err}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	entries, ok := x.collections[collection]
	if !ok {
		entries = make(map[string]domain.IndexEntry)
		x.collections[collection] = entries
	}
	entries[key] = domain.IndexEntry{
		Collection:     collection,
		Key:            key,
		Fields:         record.Fields.Clone(),
		ContextualText: record.ContextualText,
		IndexedAt:      x.now(),
	}
	return nil
}

// Get retrieves an entry by key.
func (x *Index) Get(_ context.Context, collection, key string) (*domain.IndexEntry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	entry, ok := x.collections[collection][key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
	}
	entry.Fields = entry.Fields.Clone()
	return &entry, nil
}

// Count returns the number of entries in a collection.
func (x *Index) Count(_ context.Context, collection string) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.collections[collection]), nil
}

// Search returns entries containing every query term, most recent first.
func (x *Index) Search(_ context.Context, collection, query string, limit int) ([]domain.IndexEntry, error) {
	terms := strings.Fields(strings.ToLower(query))

	x.mu.RLock()
	var out []domain.IndexEntry
	for _, entry := range x.collections[collection] {
		if matches(entry, terms) {
			entry.Fields = entry.Fields.Clone()
			out = append(out, entry)
		}
	}
	x.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].IndexedAt.Equal(out[j].IndexedAt) {
			return out[i].IndexedAt.After(out[j].IndexedAt)
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op.
func (x *Index) Close() error {
	return nil
}

func matches(entry domain.IndexEntry, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	var b strings.Builder
	for _, name := range entry.Fields.Names() {
		for _, v := range entry.Fields.Strings(name) {
			b.WriteString(strings.ToLower(v))
			b.WriteByte('\n')
		}
	}
	b.WriteString(strings.ToLower(entry.ContextualText))
	text := b.String()

	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}
