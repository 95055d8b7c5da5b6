package icos

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-harvest/internal/connectors/web"
	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Ensure Lister implements the interface.
var _ driven.DocumentLister = (*Lister)(nil)

// Lister queries the SPARQL endpoint for data object IRIs.
type Lister struct {
	client   *web.Client
	endpoint string
	query    string
}

// NewLister creates a lister for the given endpoint and query.
func NewLister(client *web.Client, endpoint, query string) *Lister {
	return &Lister{client: client, endpoint: endpoint, query: query}
}

// List posts the query and returns one reference per result row.
// No pagination or retry is attempted.
func (l *Lister) List(ctx context.Context) ([]domain.DocumentReference, error) {
	resp, err := l.client.PostForm(ctx, l.endpoint,
		map[string]string{"query": l.query},
		map[string]string{
			"Cache-Control": "no-cache",
			"Accept":        "text/csv",
		})
	if err != nil {
		qe := &domain.UpstreamQueryError{Source: SourceID, Err: err}
		var se *web.StatusError
		if errors.As(err, &se) {
			qe.Status = se.StatusCode
		}
		return nil, qe
	}

	refs, err := ParseListing(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamQueryError{Source: SourceID, Status: resp.StatusCode, Err: err}
	}
	return refs, nil
}

// ParseListing reads a CSV listing. The first line is a header and is
// discarded; the first column of each remaining row is an identifier.
func ParseListing(body []byte) ([]domain.DocumentReference, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty response body")
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var refs []domain.DocumentReference
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading listing: %w", err)
		}
		id := strings.TrimSpace(record[0])
		if id == "" {
			continue
		}
		refs = append(refs, domain.DocumentReference{Identifier: id, SourceURL: id})
	}
	return refs, nil
}
