package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

const projectColumns = `id, name, description, created_at`

// CreateProject inserts a project and fills in its generated id and timestamp.
func (r *Repository) CreateProject(ctx context.Context, p *model.Project) error {
	query := `
		INSERT INTO projects (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, p.Name, p.Description).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProjectNameExists
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// ListProjects returns every project ordered by id.
func (r *Repository) ListProjects(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// GetProjectByID retrieves a project by id.
func (r *Repository) GetProjectByID(ctx context.Context, id int64) (*model.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}
	return p, nil
}

// GetProjectByName retrieves a project by its unique name.
func (r *Repository) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by name: %w", err)
	}
	return p, nil
}

// DeleteProject removes a project. Projects with entries are protected by
// the foreign key and yield ErrProjectInUse.
func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrProjectInUse
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrProjectNotFound
	}

	return nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	return &p, err
}
