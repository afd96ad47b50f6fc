package sqlite

import (
	"context"
	"database/sql"
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

	"github.com/custodia-labs/habitsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/habitsync/internal/core/domain"
	"github.com/custodia-labs/habitsync/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "credentials.db"

// Store is a SQLite implementation of driven.Backend.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.Backend = (*Store)(nil)

// NewStore creates a new SQLite store in the given data directory.
// If dataDir is empty, defaults to ~/.habitsync/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".habitsync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Name returns the backend name.
func (s *Store) Name() string {
	return "sqlite"
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks that the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
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
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Records ====================

// Get retrieves the record for a user.
func (s *Store) Get(ctx context.Context, userID string) (*domain.Record, error) {
	data, err := s.getDocument(ctx, "records", userID)
	if err != nil || data == nil {
		return nil, err
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding record: %w: %w", domain.ErrCorruptState, err)
	}
	return &record, nil
}

// Set stores or replaces a record.
func (s *Store) Set(ctx context.Context, userID string, record domain.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return s.putDocument(ctx, "records", userID, data)
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// Exists reports whether a record is stored.
func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM records WHERE user_id = ?)", userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking record: %w", err)
	}
	return exists, nil
}

// ==================== App State ====================

// GetState retrieves the app-state snapshot for a user.
func (s *Store) GetState(ctx context.Context, userID string) (domain.AppState, error) {
	data, err := s.getDocument(ctx, "app_states", userID)
	if err != nil || data == nil {
		return nil, err
	}

	var state domain.AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return state, nil
}

// SetState stores the app-state snapshot for a user.
func (s *Store) SetState(ctx context.Context, userID string, state domain.AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	return s.putDocument(ctx, "app_states", userID, data)
}

// ==================== Helper Functions ====================

// getDocument returns the stored JSON for a user, or nil if there is none.
// table is always one of the package's own table names.
func (s *Store) getDocument(ctx context.Context, table, userID string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM "+table+" WHERE user_id = ?", userID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", table, err)
	}
	return []byte(data), nil
}

func (s *Store) putDocument(ctx context.Context, table, userID string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (user_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, userID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing %s: %w", table, err)
	}
	return nil
}
