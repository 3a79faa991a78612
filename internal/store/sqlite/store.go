// Package sqlite implements the embedded SQLite storage backend.
//
// Naive local datetimes are stored as fixed-width text so that string
// comparison matches chronological order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const currentVersion = 1

const (
	localLayout   = "2006-01-02T15:04:05.000000000"
	instantLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store is a SQLite-backed implementation of every storage port.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and runs migrations.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for tests.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS api_keys (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		key_hash        TEXT NOT NULL,
		key_prefix      TEXT NOT NULL,
		scopes          TEXT NOT NULL DEFAULT 'read',
		rate_limit_tier TEXT NOT NULL DEFAULT 'free',
		name            TEXT NOT NULL DEFAULT '',
		revoked_at      TEXT,
		last_used_at    TEXT,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_api_keys_prefix ON api_keys(key_prefix);

	CREATE TABLE IF NOT EXISTS projects (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS time_entries (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id       INTEGER NOT NULL REFERENCES projects(id) ON DELETE RESTRICT,
		user_id          TEXT NOT NULL,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		start_time       TEXT NOT NULL,
		end_time         TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		created_at       TEXT NOT NULL,
		CHECK (end_time > start_time)
	);
	CREATE INDEX IF NOT EXISTS idx_entries_start ON time_entries(start_time);
	CREATE INDEX IF NOT EXISTS idx_entries_project_start ON time_entries(project_id, start_time);
	CREATE INDEX IF NOT EXISTS idx_entries_user_start ON time_entries(user_id, start_time);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func formatLocal(t time.Time) string {
	return t.Format(localLayout)
}

func parseLocal(s string) (time.Time, error) {
	return time.Parse(localLayout, s)
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func parseInstant(s string) (time.Time, error) {
	return time.Parse(instantLayout, s)
}

func parseNullInstant(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseInstant(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func sqliteCode(err error) int {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code()
	}
	return 0
}

func isUniqueViolation(err error) bool {
	switch sqliteCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	}
	return false
}

// isForeignKeyViolation matches every extended constraint code. ON DELETE
// RESTRICT surfaces as SQLITE_CONSTRAINT_TRIGGER, not _FOREIGNKEY.
func isForeignKeyViolation(err error) bool {
	code := sqliteCode(err)
	if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
