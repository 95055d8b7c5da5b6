package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Reserved document properties written alongside the record fields.
const (
	ContextualTextField = "contextual_text"
	IndexedAtField      = "indexed_at"
)

// Ensure Client implements the interface.
var _ driven.Index = (*Client)(nil)

// StatusError reports a non-success response from the cluster.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("elasticsearch: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to one Elasticsearch cluster.
type Client struct {
	http *resty.Client
	now  func() time.Time
}

// New creates a client for the cluster at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = domain.DefaultElasticsearchURL
	}
	if timeout <= 0 {
		timeout = domain.DefaultFetchTimeout
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: rc, now: time.Now}
}

// Upsert replaces the document stored under key.
func (c *Client) Upsert(ctx context.Context, collection, key string, record domain.NormalizedRecord) error {
	if key == "" {
		return &domain.IndexError{Key: key, Err: fmt.Errorf("%w: empty key", domain.ErrInvalidInput)}
	}
	if err := record.Fields.Validate(); err != nil {
		return &domain.IndexError{Key: key, Err: err}
	}

	doc := make(map[string]any, len(record.Fields)+2)
	for k, v := range record.Fields {
		doc[k] = v
	}
	doc[ContextualTextField] = record.ContextualText
	doc[IndexedAtField] = c.now().UTC().Format(time.RFC3339Nano)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"collection": collection, "key": key}).
		SetBody(doc).
		Put("/{collection}/_doc/{key}")
	if err != nil {
		return &domain.IndexError{Key: key, Err: err}
	}
	if !resp.IsSuccess() {
		return &domain.IndexError{Key: key, Err: statusError(resp)}
	}
	return nil
}

type getResponse struct {
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source"`
}

// Get retrieves a document by key.
func (c *Client) Get(ctx context.Context, collection, key string) (*domain.IndexEntry, error) {
	var out getResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"collection": collection, "key": key}).
		SetResult(&out).
		Get("/{collection}/_doc/{key}")
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, key, err)
	}
	if resp.StatusCode() == http.StatusNotFound || (resp.IsSuccess() && !out.Found) {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, key, statusError(resp))
	}
	return decodeEntry(collection, key, out.Source)
}

type countResponse struct {
	Count int `json:"count"`
}

// Count returns the number of documents in a collection.
// A missing index counts as empty.
func (c *Client) Count(ctx context.Context, collection string) (int, error) {
	var out countResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("collection", collection).
		SetResult(&out).
		Get("/{collection}/_count")
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return 0, nil
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("counting %s: %w", collection, statusError(resp))
	}
	return out.Count, nil
}

type searchResponse struct {
	Hits struct {
		Hits []getResponse `json:"hits"`
	} `json:"hits"`
}

// Search runs a query_string query requiring every term.
func (c *Client) Search(ctx context.Context, collection, query string, limit int) ([]domain.IndexEntry, error) {
	body := map[string]any{
		"query": searchQuery(query),
		"sort":  []any{"_score", map[string]any{IndexedAtField: map[string]any{"order": "desc", "unmapped_type": "date"}}},
	}
	if limit > 0 {
		body["size"] = limit
	}

	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("collection", collection).
		SetBody(body).
		SetResult(&out).
		Post("/{collection}/_search")
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", collection, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("searching %s: %w", collection, statusError(resp))
	}

	entries := make([]domain.IndexEntry, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		entry, err := decodeEntry(collection, hit.ID, hit.Source)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}

func searchQuery(query string) map[string]any {
	if query == "" {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{
		"query_string": map[string]any{
			"query":            query,
			"default_operator": "AND",
		},
	}
}

func decodeEntry(collection, key string, source json.RawMessage) (*domain.IndexEntry, error) {
	if len(source) == 0 {
		return nil, errors.New("elasticsearch: document has no _source")
	}
	var fields domain.Fields
	if err := json.Unmarshal(source, &fields); err != nil {
		return nil, fmt.Errorf("decoding %s/%s: %w", collection, key, err)
	}

	entry := &domain.IndexEntry{
		Collection:     collection,
		Key:            key,
		ContextualText: fields.String(ContextualTextField),
	}
	if ts := fields.String(IndexedAtField); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.IndexedAt = t
		}
	}
	delete(fields, ContextualTextField)
	delete(fields, IndexedAtField)
	entry.Fields = fields
	return entry, nil
}

func statusError(resp *resty.Response) error {
	body := resp.String()
	if len(body) > 512 {
		body = body[:512]
	}
	return &StatusError{StatusCode: resp.StatusCode(), Body: body}
}
