package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-harvest/internal/adapters/driven/index/sqlite/migrations"
	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
	"github.com/custodia-labs/sercha-harvest/internal/core/ports/driven"
)

// timeLayout sorts lexically; indexed_at is always UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DatabaseFile is the index database file name within the data directory.
const DatabaseFile = "index.db"

// Ensure Store implements the interface.
var _ driven.Index = (*Store)(nil)

// Store is a SQLite-backed index.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite index in the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-harvest/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-harvest", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets readers run while a harvest writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index_entries.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Upsert writes a record, replacing any entry with the same key.
func (s *Store) Upsert(ctx context.Context, collection, key string, record domain.NormalizedRecord) error {
	if key == "" {
		return &domain.IndexError{Key: key, Err: fmt.Errorf("%w: empty key", domain.ErrInvalidInput)}
	}
	if err := record.Fields.Validate(); err != nil {
		return &domain.IndexError{Key: key, Err: err}
	}

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return &domain.IndexError{Key: key, Err: fmt.Errorf("marshalling fields: %w", err)}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO index_entries (collection, entry_key, fields, contextual_text, search_text, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, entry_key) DO UPDATE SET
			fields = excluded.fields,
			contextual_text = excluded.contextual_text,
			search_text = excluded.search_text,
			indexed_at = excluded.indexed_at
	`, collection, key, string(fieldsJSON), record.ContextualText,
		searchText(record), s.now().UTC().Format(timeLayout))
	if err != nil {
		return &domain.IndexError{Key: key, Err: err}
	}
	return nil
}

// Get retrieves an entry by key.
func (s *Store) Get(ctx context.Context, collection, key string) (*domain.IndexEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT collection, entry_key, fields, contextual_text, indexed_at
		FROM index_entries WHERE collection = ? AND entry_key = ?
	`, collection, key)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	return entry, nil
}

// Count returns the number of entries in a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM index_entries WHERE collection = ?", collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Search returns entries containing every whitespace-separated query term,
// most recently indexed first. An empty query matches everything.
func (s *Store) Search(ctx context.Context, collection, query string, limit int) ([]domain.IndexEntry, error) {
	var (
		clauses = []string{"collection = ?"}
		args    = []any{collection}
	)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		clauses = append(clauses, `search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(term)+"%")
	}

	q := `SELECT collection, entry_key, fields, contextual_text, indexed_at
		FROM index_entries WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY indexed_at DESC, entry_key`
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*domain.IndexEntry, error) {
	var (
		entry      domain.IndexEntry
		fieldsJSON string
		indexedAt  string
	)
	if err := sc.Scan(&entry.Collection, &entry.Key, &fieldsJSON, &entry.ContextualText, &indexedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &entry.Fields); err != nil {
		return nil, fmt.Errorf("unmarshalling fields: %w", err)
	}
	t, err := time.Parse(timeLayout, indexedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing indexed_at: %w", err)
	}
	entry.IndexedAt = t
	return &entry, nil
}

// searchText flattens a record into the lowercased search column.
func searchText(record domain.NormalizedRecord) string {
	var parts []string
	for _, name := range record.Fields.Names() {
		parts = append(parts, record.Fields.Strings(name)...)
	}
	parts = append(parts, record.ContextualText)
	return strings.ToLower(strings.Join(parts, "\n"))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
