package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// fakeCluster serves the subset of the document API the client uses.
type fakeCluster struct {
	mu         sync.Mutex
	docs       map[string]map[string]json.RawMessage
	lastSearch map[string]any
	failPuts   bool
}

func newFakeCluster(t *testing.T) (*fakeCluster, *Client) {
	t.Helper()
	f := &fakeCluster{docs: make(map[string]map[string]json.RawMessage)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c := New(srv.URL, time.Second)
	t.Cleanup(func() { _ = c.Close() })
	return f, c
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.EscapedPath(), "/"), "/")
	for i, p := range parts {
		parts[i], _ = url.PathUnescape(p)
	}
	w.Header().Set("Content-Type", "application/json")

	switch {
	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodPut:
		if f.failPuts {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"mapper_parsing_exception"}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if f.docs[parts[0]] == nil {
			f.docs[parts[0]] = make(map[string]json.RawMessage)
		}
		f.docs[parts[0]][parts[2]] = body
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)

	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodGet:
		src, ok := f.docs[parts[0]][parts[2]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"found":false}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"_id": parts[2], "found": true, "_source": src})

	case len(parts) == 2 && parts[1] == "_count":
		docs, ok := f.docs[parts[0]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"count": len(docs)})

	case len(parts) == 2 && parts[1] == "_search":
		_ = json.NewDecoder(r.Body).Decode(&f.lastSearch)
		var ids []string
		for id := range f.docs[parts[0]] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		hits := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			hits = append(hits, map[string]any{"_id": id, "_source": f.docs[parts[0]][id]})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func record() domain.NormalizedRecord {
	return domain.NormalizedRecord{
		Identifier: "https://meta.icos-cp.eu/objects/a",
		Fields: domain.Fields{
			"name":         "Alpha",
			"creator":      []string{"A", "B"},
			"distribution": nil,
		},
		ContextualText: "Alpha summary",
	}
}

func TestClient_UpsertGet(t *testing.T) {
	_, c := newFakeCluster(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := "https://meta.icos-cp.eu/objects/a"
	require.NoError(t, c.Upsert(ctx, "icos", key, record()))

	entry, err := c.Get(ctx, "icos", key)
	require.NoError(t, err)
	assert.Equal(t, key, entry.Key)
	assert.Equal(t, "Alpha summary", entry.ContextualText)
	assert.True(t, now.Equal(entry.IndexedAt))
	assert.Equal(t, domain.Fields{
		"name":         "Alpha",
		"creator":      []string{"A", "B"},
		"distribution": nil,
	}, entry.Fields)
}

func TestClient_Upsert_Idempotent(t *testing.T) {
	_, c := newFakeCluster(t)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, "icos", "a", record()))
	require.NoError(t, c.Upsert(ctx, "icos", "a", record()))

	n, err := c.Count(ctx, "icos")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClient_Upsert_Rejected(t *testing.T) {
	f, c := newFakeCluster(t)
	f.failPuts = true

	err := c.Upsert(context.Background(), "icos", "a", record())
	require.ErrorIs(t, err, domain.ErrIndex)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, se.Body, "mapper_parsing_exception")
}

func TestClient_Upsert_InvalidFields(t *testing.T) {
	_, c := newFakeCluster(t)

	err := c.Upsert(context.Background(), "icos", "a", domain.NormalizedRecord{Fields: domain.Fields{"n": 3}})
	assert.ErrorIs(t, err, domain.ErrIndex)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Upsert_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := New(addr, 100*time.Millisecond)
	err := c.Upsert(context.Background(), "icos", "a", record())
	assert.ErrorIs(t, err, domain.ErrIndex)
}

func TestClient_Get_NotFound(t *testing.T) {
	_, c := newFakeCluster(t)

	_, err := c.Get(context.Background(), "icos", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_Count_MissingIndex(t *testing.T) {
	_, c := newFakeCluster(t)

	n, err := c.Count(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClient_Search(t *testing.T) {
	f, c := newFakeCluster(t)
	ctx := context.Background()

	require.NoError(t, c.Upsert(ctx, "icos", "a", record()))
	require.NoError(t, c.Upsert(ctx, "icos", "b", record()))

	entries, err := c.Search(ctx, "icos", "carbon flux", 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, "Alpha summary", entries[0].ContextualText)

	assert.EqualValues(t, 5, f.lastSearch["size"])
	query := f.lastSearch["query"].(map[string]any)["query_string"].(map[string]any)
	assert.Equal(t, "carbon flux", query["query"])
	assert.Equal(t, "AND", query["default_operator"])
}

func TestClient_Search_EmptyQuery(t *testing.T) {
	f, c := newFakeCluster(t)

	_, err := c.Search(context.Background(), "icos", "", 0)
	require.NoError(t, err)

	assert.Contains(t, f.lastSearch["query"], "match_all")
	assert.NotContains(t, f.lastSearch, "size")
}
