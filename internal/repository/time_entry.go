package repository

import (
	"context"
	"fmt"

	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

// CreateTimeEntry inserts an entry and fills in its id and created_at.
func (r *Repository) CreateTimeEntry(ctx context.Context, e *model.TimeEntry) error {
	query := `
		INSERT INTO time_entries (project_id, user_id, title, description, start_time, end_time, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		e.ProjectID,
		e.UserID,
		e.Title,
		e.Description,
		e.StartTime,
		e.EndTime,
		e.DurationMinutes,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrProjectNotFound
		}
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	return nil
}

// ListTimeEntriesByUser returns a user's entries, newest start first.
func (r *Repository) ListTimeEntriesByUser(ctx context.Context, userID string) ([]*model.TimeEntry, error) {
	query := `
		SELECT te.id, te.project_id, p.name, te.user_id, te.title, te.description,
		       te.start_time, te.end_time, te.duration_minutes, te.created_at
		FROM time_entries te
		JOIN projects p ON p.id = te.project_id
		WHERE te.user_id = $1
		ORDER BY te.start_time DESC, te.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.TimeEntry
	for rows.Next() {
		var e model.TimeEntry
		if err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&e.ProjectName,
			&e.UserID,
			&e.Title,
			&e.Description,
			&e.StartTime,
			&e.EndTime,
			&e.DurationMinutes,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}

	return entries, nil
}

// DeleteTimeEntry removes an entry owned by userID.
func (r *Repository) DeleteTimeEntry(ctx context.Context, userID string, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM time_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrTimeEntryNotFound
	}

	return nil
}
