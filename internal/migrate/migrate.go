// Package migrate applies the embedded PostgreSQL schema migrations.
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Migration is one numbered schema step with its up and down scripts.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Load returns all embedded migrations ordered by version.
func Load() ([]Migration, error) {
	files, err := fs.Glob(migrationsFS, "sql/*.sql")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*Migration)
	for _, f := range files {
		base := path.Base(f)
		version, name, direction, err := parseFilename(base)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		body, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			return nil, err
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if direction == "up" {
			m.Up = string(body)
		} else {
			m.Down = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %06d_%s has no up script", m.Version, m.Name)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Run applies pending migrations in version order. Each migration runs in its
// own transaction together with its schema_migrations record.
func Run(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	migrations, err := Load()
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    BIGINT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := loadApplied(ctx, pool)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			log.Debug("migration already applied", slog.Int("version", m.Version), slog.String("name", m.Name))
			continue
		}
		log.Info("applying migration", slog.Int("version", m.Version), slog.String("name", m.Name))
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.Up); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("applying %06d_%s: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Reset drops and recreates the named migration's objects. Used by tests.
func Reset(ctx context.Context, pool *pgxpool.Pool, name string) error {
	migrations, err := Load()
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.Name != name {
			continue
		}
		if _, err := pool.Exec(ctx, m.Down); err != nil {
			return fmt.Errorf("apply %s down migration: %w", name, err)
		}
		if _, err := pool.Exec(ctx, m.Up); err != nil {
			return fmt.Errorf("apply %s up migration: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("unknown migration %q", name)
}

func loadApplied(ctx context.Context, pool *pgxpool.Pool) (map[int]bool, error) {
	rows, err := pool.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[int(v)] = true
	}
	return applied, nil
}

// parseFilename splits names like 000003_projects.up.sql.
func parseFilename(base string) (version int, name, direction string, err error) {
	stem, ok := strings.CutSuffix(base, ".sql")
	if !ok {
		return 0, "", "", fmt.Errorf("missing .sql suffix")
	}
	switch {
	case strings.HasSuffix(stem, ".up"):
		direction = "up"
	case strings.HasSuffix(stem, ".down"):
		direction = "down"
	default:
		return 0, "", "", fmt.Errorf("missing .up or .down")
	}
	stem = strings.TrimSuffix(stem, "."+direction)

	prefix, name, ok := strings.Cut(stem, "_")
	if !ok || prefix == "" || name == "" {
		return 0, "", "", fmt.Errorf("missing version prefix")
	}
	version, err = strconv.Atoi(prefix)
	if err != nil {
		return 0, "", "", err
	}
	return version, name, direction, nil
}
