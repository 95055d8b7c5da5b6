package filesystem

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// Ensure Staging implements the interface.
var _ driven.StagingArea = (*Staging)(nil)

const (
	referencesFile = "references.csv"
	rawDir         = "raw"
	hashPrefixLen  = 12
	maxStemLen     = 64
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Staging is a directory-backed implementation of driven.StagingArea.
type Staging struct {
	root string
}

// New creates a staging area rooted at dir.
// If dir is empty, defaults to ~/.sercha-harvest/staging.
func New(dir string) (*Staging, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".sercha-harvest", "staging")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &Staging{root: dir}, nil
}

// Root returns the staging root directory.
func (s *Staging) Root() string {
	return s.root
}

// Path returns the staging path for an identifier.
func (s *Staging) Path(run, identifier, ext string) string {
	return filepath.Join(s.dir(run), rawDir, FileName(identifier)+ext)
}

// Write stores a raw payload and returns its path.
func (s *Staging) Write(run, identifier, ext string, data []byte) (string, error) {
	p := s.Path(run, identifier, ext)
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	if err := writeFileAtomic(p, data); err != nil {
		return "", fmt.Errorf("writing %s: %w", p, err)
	}
	return p, nil
}

// Read returns the payload at a staging path.
func (s *Staging) Read(p string) ([]byte, error) {
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", p, domain.ErrNotFound)
	}
	return data, err
}

// Remove deletes a staged payload.
func (s *Staging) Remove(p string) error {
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SaveReferences writes the listing as a two-column CSV.
func (s *Staging) SaveReferences(run string, refs []domain.DocumentReference) error {
	dir := s.dir(run)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"identifier", "source_url"}); err != nil {
		return err
	}
	for _, ref := range refs {
		if err := w.Write([]string{ref.Identifier, ref.SourceURL}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding references: %w", err)
	}

	return writeFileAtomic(filepath.Join(dir, referencesFile), []byte(b.String()))
}

// LoadReferences reads a listing saved by SaveReferences.
func (s *Staging) LoadReferences(run string) ([]domain.DocumentReference, error) {
	p := filepath.Join(s.dir(run), referencesFile)
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("references for run %s: %w", run, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading references header: %w", err)
	}

	var refs []domain.DocumentReference
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading references: %w", err)
		}
		refs = append(refs, domain.DocumentReference{Identifier: rec[0], SourceURL: rec[1]})
	}
	return refs, nil
}

// dir returns the run's directory. The hash suffix keeps names that
// sanitise to the same stem apart.
func (s *Staging) dir(run string) string {
	return filepath.Join(s.root, FileName(run))
}

// FileName derives the staging file stem for an identifier.
func FileName(identifier string) string {
	sum := sha256.Sum256([]byte(identifier))
	hash := hex.EncodeToString(sum[:])[:hashPrefixLen]

	stem := sanitise(lastSegment(identifier))
	if len(stem) > maxStemLen {
		stem = stem[:maxStemLen]
	}
	if stem == "" {
		return hash
	}
	return stem + "_" + hash
}

func lastSegment(identifier string) string {
	if u, err := url.Parse(identifier); err == nil && u.Scheme != "" && u.Path != "" {
		return path.Base(strings.TrimSuffix(u.Path, "/"))
	}
	trimmed := strings.TrimRight(identifier, "/")
	if i := strings.LastIndexAny(trimmed, "/\\"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func sanitise(s string) string {
	s = unsafeChars.ReplaceAllString(s, "_")
	return strings.Trim(s, "._")
}

func writeFileAtomic(p string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), ".staging-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}
