package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/model"
)

func (s *Store) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (s *Store) SumMinutes(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM time_entries WHERE start_time >= ? AND start_time < ?`,
		formatLocal(from), formatLocal(to),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum minutes: %w", err)
	}
	return total, nil
}

func (s *Store) SumProjectMinutes(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration_minutes), 0) FROM time_entries
		 WHERE project_id = ? AND start_time >= ? AND start_time < ?`,
		projectID, formatLocal(from), formatLocal(to),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum project minutes: %w", err)
	}
	return total, nil
}

func (s *Store) CountProjectEntries(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM time_entries WHERE project_id = ? AND start_time >= ? AND start_time < ?`,
		projectID, formatLocal(from), formatLocal(to),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count project entries: %w", err)
	}
	return n, nil
}

func (s *Store) LastEntryAt(ctx context.Context, projectID int64) (*time.Time, error) {
	var last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(start_time) FROM time_entries WHERE project_id = ?`, projectID,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last entry: %w", err)
	}
	return parseNullLocal(last)
}

// TopProjectsByMinutes orders ties by name, then id.
func (s *Store) TopProjectsByMinutes(ctx context.Context, from, to time.Time) ([]model.ProjectMinutes, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, SUM(te.duration_minutes) AS minutes
		 FROM time_entries te
		 JOIN projects p ON p.id = te.project_id
		 WHERE te.start_time >= ? AND te.start_time < ?
		 GROUP BY p.id, p.name
		 ORDER BY minutes DESC, p.name ASC, p.id ASC`,
		formatLocal(from), formatLocal(to))
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectMinutes
	for rows.Next() {
		var pm model.ProjectMinutes
		if err := rows.Scan(&pm.ProjectID, &pm.ProjectName, &pm.Minutes); err != nil {
			return nil, fmt.Errorf("scan top project: %w", err)
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

func (s *Store) SummarizeAllProjects(ctx context.Context, week, rng calendar.Window) ([]model.ProjectAggregate, error) {
	ws, we := formatLocal(week.Start), formatLocal(week.End)
	rs, re := formatLocal(rng.Start), formatLocal(rng.End)

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id,
		        p.name,
		        COALESCE(SUM(CASE WHEN te.start_time >= ? AND te.start_time < ? THEN te.duration_minutes END), 0),
		        COALESCE(SUM(CASE WHEN te.start_time >= ? AND te.start_time < ? THEN te.duration_minutes END), 0),
		        COUNT(CASE WHEN te.start_time >= ? AND te.start_time < ? THEN 1 END),
		        MAX(te.start_time)
		 FROM projects p
		 LEFT JOIN time_entries te ON te.project_id = p.id
		 GROUP BY p.id, p.name
		 ORDER BY p.id`,
		ws, we, rs, re, ws, we)
	if err != nil {
		return nil, fmt.Errorf("summarize projects: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectAggregate
	for rows.Next() {
		var agg model.ProjectAggregate
		var last sql.NullString
		if err := rows.Scan(&agg.ProjectID, &agg.ProjectName, &agg.MinutesWeek, &agg.MinutesRange, &agg.EntriesWeek, &last); err != nil {
			return nil, fmt.Errorf("scan project summary: %w", err)
		}
		if agg.LastEntryAt, err = parseNullLocal(last); err != nil {
			return nil, fmt.Errorf("parse last entry: %w", err)
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

func parseNullLocal(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseLocal(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
