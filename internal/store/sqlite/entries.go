package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

func (s *Store) CreateTimeEntry(ctx context.Context, e *model.TimeEntry) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO time_entries (project_id, user_id, title, description, start_time, end_time, duration_minutes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ProjectID, e.UserID, e.Title, e.Description,
		formatLocal(e.StartTime), formatLocal(e.EndTime), e.DurationMinutes, formatInstant(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrProjectNotFound
		}
		return fmt.Errorf("create time entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create time entry: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

func (s *Store) ListTimeEntriesByUser(ctx context.Context, userID string) ([]*model.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT te.id, te.project_id, p.name, te.user_id, te.title, te.description,
		        te.start_time, te.end_time, te.duration_minutes, te.created_at
		 FROM time_entries te
		 JOIN projects p ON p.id = te.project_id
		 WHERE te.user_id = ?
		 ORDER BY te.start_time DESC, te.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.TimeEntry
	for rows.Next() {
		var e model.TimeEntry
		var start, end, created string
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.ProjectName, &e.UserID, &e.Title, &e.Description,
			&start, &end, &e.DurationMinutes, &created); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		if e.StartTime, err = parseLocal(start); err != nil {
			return nil, fmt.Errorf("parse start_time: %w", err)
		}
		if e.EndTime, err = parseLocal(end); err != nil {
			return nil, fmt.Errorf("parse end_time: %w", err)
		}
		if e.CreatedAt, err = parseInstant(created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteTimeEntry(ctx context.Context, userID string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	if n == 0 {
		return store.ErrTimeEntryNotFound
	}
	return nil
}
