package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/kazt/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Tables only
// 1 - Built-in template packs seeded
const currentSchemaVersion = 1

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store provides durable storage for rule sets and simulation logs.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db    *sql.DB
	clock engine.Clock
	ids   engine.RunIDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created_at and updated_at.
func WithClock(c engine.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithIDGenerator sets the generator for new rule set and simulation ids.
func WithIDGenerator(g engine.RunIDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{
		db:    db,
		clock: engine.WallClock{},
		ids:   engine.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := s.applySchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) now() int64 {
	return s.clock.Now().UnixNano()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func (s *Store) applySchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func (s *Store) runMigrations() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := s.migrateToV1(); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 seeds the built-in template packs. Existing rows with a
// template id are left alone.
func (s *Store) migrateToV1() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	for _, tpl := range Templates() {
		blocksJSON, hash, err := marshalBlocks(tpl.Blocks)
		if err != nil {
			return fmt.Errorf("migrate to v1: template %s: %w", tpl.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO rule_sets
			(id, name, description, blocks, blockset_hash, owner, is_template, template_category, use_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, 1, ?, 0, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, tpl.ID, tpl.Name, tpl.Description, blocksJSON, hash, tpl.Owner, tpl.Category, now, now)
		if err != nil {
			return fmt.Errorf("migrate to v1: template %s: %w", tpl.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
