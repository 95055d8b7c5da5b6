package domain

// DocumentReference identifies one document to harvest.
// It is the lister's output and is consumed once by a fetcher.
type DocumentReference struct {
	// Identifier is the opaque upstream identifier (commonly an IRI).
	Identifier string

	// SourceURL is where the document body can be retrieved.
	SourceURL string
}

// RawDocument represents opaque bytes fetched for a reference.
// It is the fetcher's output before conversion.
type RawDocument struct {
	// Identifier is copied from the DocumentReference.
	Identifier string

	// SourceURL is the location the payload was fetched from.
	SourceURL string

	// LocalPath is the staging file holding Content.
	LocalPath string

	// MIMEType is the content type (e.g., "text/html", "text/csv").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
