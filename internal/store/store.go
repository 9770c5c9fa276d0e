package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/restosync/internal/restaurant"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - restaurants table with name/neighborhood/cuisine_type indexes
// 2 - Added restaurants.updated_at (unix millis of the last upsert)
const SchemaVersion = 2

// migrations maps a target version to the statements that reach it from
// the previous version.
var migrations = map[int]string{
	2: `ALTER TABLE restaurants ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`,
}

// Store is the persistent restaurant cache.
// Uses SQLite with WAL mode; safe for concurrent use through database/sql.
type Store struct {
	db      *sql.DB
	path    string
	version int
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	version int
}

// WithVersion opens the store at a specific schema version instead of
// SchemaVersion.
func WithVersion(v int) Option {
	return func(c *openConfig) {
		c.version = v
	}
}

// Open creates or opens the cache at path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times. Every failure
// is reported as a STORE_INIT error.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := openConfig{version: SchemaVersion}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.version < 1 || cfg.version > SchemaVersion {
		return nil, restaurant.NewStoreInitError(
			fmt.Sprintf("unsupported schema version %d (known: 1..%d)", cfg.version, SchemaVersion), nil)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, restaurant.NewStoreInitError("open database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, restaurant.NewStoreInitError("connect to database", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, restaurant.NewStoreInitError("apply pragmas", err)
	}

	if err := applySchema(db, cfg.version); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path, version: cfg.version}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Delete closes the store and removes its files from disk.
// The handle must not be used afterwards.
func (s *Store) Delete() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("delete store: close: %w", err)
	}
	s.db = nil
	return Remove(s.path)
}

// Remove deletes the database at path together with its WAL files. A
// missing file is not an error. Use it to recover from a STORE_INIT
// conflict without opening the store.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete store: %w", err)
		}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Version returns the schema version the store was opened at.
func (s *Store) Version() int {
	return s.version
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema brings the database to the requested version.
func applySchema(db *sql.DB, version int) error {
	var persisted int
	if err := db.QueryRow("PRAGMA user_version").Scan(&persisted); err != nil {
		return restaurant.NewStoreInitError("read user_version", err)
	}

	if persisted > version {
		return restaurant.NewStoreInitError(
			fmt.Sprintf("persisted schema version %d is newer than requested version %d", persisted, version), nil)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return restaurant.NewStoreInitError("execute schema", err)
	}

	// A fresh database starts from the base schema (version 1).
	from := persisted
	if from == 0 {
		from = 1
	}
	for v := from + 1; v <= version; v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return restaurant.NewStoreInitError(fmt.Sprintf("migrate to v%d", v), err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return restaurant.NewStoreInitError("set user_version", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(ctx context.Context, name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
