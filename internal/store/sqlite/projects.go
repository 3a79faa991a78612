package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, description, created_at) VALUES (?, ?, ?)`,
		p.Name, p.Description, formatInstant(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProjectNameExists
		}
		return fmt.Errorf("create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	return nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) GetProjectByID(ctx context.Context, id int64) (*model.Project, error) {
	return s.getProject(ctx, `SELECT id, name, description, created_at FROM projects WHERE id = ?`, id)
}

func (s *Store) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	return s.getProject(ctx, `SELECT id, name, description, created_at FROM projects WHERE name = ?`, name)
}

func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrProjectInUse
		}
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return store.ErrProjectNotFound
	}
	return nil
}

func (s *Store) getProject(ctx context.Context, query string, arg any) (*model.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*model.Project, error) {
	var p model.Project
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseInstant(createdAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = t
	return &p, nil
}
