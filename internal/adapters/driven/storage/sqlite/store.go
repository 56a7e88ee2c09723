package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/semgate/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/semgate/internal/core/domain"
	"github.com/custodia-labs/semgate/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// KVStore and DocumentStore interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.semgate/data/semgate.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".semgate", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "semgate.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// KVStore returns a KVStore interface backed by this store.
func (s *Store) KVStore() driven.KVStore {
	return &kvStore{store: s}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== KV Store ====================

// kvStore implements driven.KVStore.
type kvStore struct {
	store *Store
}

var _ driven.KVStore = (*kvStore)(nil)

// HashSet stores all fields of a hash record, replacing any existing
// record under key. Replacement runs in a transaction so a record is
// never observable half-written.
func (s *kvStore) HashSet(ctx context.Context, key string, fields map[string]string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM kv_hashes WHERE key = ?", key); err != nil {
		return fmt.Errorf("clearing hash: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO kv_hashes (key, field, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for field, value := range fields {
		if _, err := stmt.ExecContext(ctx, key, field, value); err != nil {
			return fmt.Errorf("writing hash field: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// HashGetAll returns every field of the record, or domain.ErrNotFound.
func (s *kvStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT field, value FROM kv_hashes WHERE key = ?", key)
	if err != nil {
		return nil, fmt.Errorf("querying hash: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scanning hash field: %w", err)
		}
		fields[field] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hash fields: %w", err)
	}

	if len(fields) == 0 {
		return nil, domain.ErrNotFound
	}
	return fields, nil
}

// SetAdd adds a member to the set at key. Duplicates are ignored.
func (s *kvStore) SetAdd(ctx context.Context, key, member string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO kv_sets (key, member) VALUES (?, ?)
		ON CONFLICT(key, member) DO NOTHING
	`, key, member)
	if err != nil {
		return fmt.Errorf("adding set member: %w", err)
	}
	return nil
}

// SetMembers lists the members of the set at key in stable order.
func (s *kvStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT member FROM kv_sets WHERE key = ? ORDER BY member", key)
	if err != nil {
		return nil, fmt.Errorf("querying set: %w", err)
	}
	defer rows.Close()

	members := []string{}
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("scanning set member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating set members: %w", err)
	}
	return members, nil
}

// Delete removes a hash record or set. Missing keys are a no-op.
func (s *kvStore) Delete(ctx context.Context, key string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM kv_hashes WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting hash: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM kv_sets WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	return nil
}

// Keys enumerates keys matching a glob pattern ('*' wildcard) across
// hashes and sets, in lexicographic order.
func (s *kvStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	like := globToLike(pattern)

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT key FROM kv_hashes WHERE key LIKE ? ESCAPE '\'
		UNION
		SELECT key FROM kv_sets WHERE key LIKE ? ESCAPE '\'
		ORDER BY key
	`, like, like)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keys: %w", err)
	}
	return keys, nil
}

// Close is a no-op: the parent Store owns the connection.
func (s *kvStore) Close() error {
	return nil
}

// globToLike translates a '*' glob into a SQL LIKE pattern, escaping
// the LIKE metacharacters so '_'-heavy keys match literally.
func globToLike(pattern string) string {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			sb.WriteByte('%')
		case '%', '_', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, locator, content, word_count, chunk_count, status, status_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			locator = excluded.locator,
			content = excluded.content,
			word_count = excluded.word_count,
			chunk_count = excluded.chunk_count,
			status = excluded.status,
			status_reason = excluded.status_reason,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Name, doc.Locator, doc.Content, doc.WordCount, doc.ChunkCount,
		string(doc.Status), doc.StatusReason, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, locator, content, word_count, chunk_count, status, status_reason, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	var status string
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&doc.ID, &doc.Name, &doc.Locator, &doc.Content, &doc.WordCount,
		&doc.ChunkCount, &status, &doc.StatusReason, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.IngestStatus(status)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return &doc, nil
}

// DeleteDocument removes a document record.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all known documents ordered by creation time.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, locator, content, word_count, chunk_count, status, status_reason, created_at, updated_at
		FROM documents ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var status string
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Locator, &doc.Content, &doc.WordCount,
			&doc.ChunkCount, &status, &doc.StatusReason, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc.Status = domain.IngestStatus(status)
		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			doc.UpdatedAt = updatedAt.Time
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}
