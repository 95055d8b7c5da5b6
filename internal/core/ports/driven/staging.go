package driven

import "github.com/custodia-labs/sercha-harvest/internal/core/domain"

// StagingArea stores listed references and raw payloads on local disk.
// Each run gets its own directory, keyed by run name, so runs that share
// a source never see each other's listings. Paths are derived
// deterministically from the identifier.
type StagingArea interface {
	// Path returns the staging path for an identifier without touching disk.
	Path(run, identifier, ext string) string

	// Write stores a raw payload and returns its path.
	Write(run, identifier, ext string, data []byte) (string, error)

	// Read returns the payload at a staging path.
	Read(path string) ([]byte, error)

	// Remove deletes a staged payload. Removing a missing file is not an error.
	Remove(path string) error

	// SaveReferences persists a listing so a later run can resume from it.
	SaveReferences(run string, refs []domain.DocumentReference) error

	// LoadReferences returns a previously saved listing.
	// Returns domain.ErrNotFound if no listing was saved.
	LoadReferences(run string) ([]domain.DocumentReference, error)
}
