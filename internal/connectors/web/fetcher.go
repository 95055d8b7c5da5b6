package web

import (
	"context"
	"errors"
	"mime"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.RecordFetcher = (*Fetcher)(nil)

// Fetcher downloads documents over HTTP and stages their bodies.
type Fetcher struct {
	client  *Client
	staging driven.StagingArea
	run     string
	ext     string
	accept  string
}

// NewFetcher creates a fetcher that stages bodies under the named run
// with the given extension.
func NewFetcher(client *Client, staging driven.StagingArea, run, ext, accept string) *Fetcher {
	return &Fetcher{
		client:  client,
		staging: staging,
		run:     run,
		ext:     ext,
		accept:  accept,
	}
}

// Fetch downloads ref.SourceURL and writes the body to the staging area.
func (f *Fetcher) Fetch(ctx context.Context, ref domain.DocumentReference) (*domain.RawDocument, error) {
	if ref.SourceURL == "" {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: errors.New("empty source url")}
	}

	var headers map[string]string
	if f.accept != "" {
		headers = map[string]string{"Accept": f.accept}
	}

	resp, err := f.client.Get(ctx, ref.SourceURL, headers)
	if err != nil {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
	}

	path, err := f.staging.Write(f.run, ref.Identifier, f.ext, resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Identifier: ref.Identifier, Err: err}
	}

	return &domain.RawDocument{
		Identifier: ref.Identifier,
		SourceURL:  ref.SourceURL,
		LocalPath:  path,
		MIMEType:   mediaType(resp.ContentType, f.accept),
		Content:    resp.Body,
	}, nil
}

func mediaType(contentType, fallback string) string {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			return mt
		}
	}
	return fallback
}
