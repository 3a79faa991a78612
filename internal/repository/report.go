package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/model"
)

// ReportRepository runs the read-only aggregate queries behind reports.
// All windows are half-open on start_time: start_time >= from AND start_time < to.
type ReportRepository struct {
	repo *Repository
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(repo *Repository) *ReportRepository {
	return &ReportRepository{repo: repo}
}

// CountProjects returns the number of projects.
func (r *ReportRepository) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	if err := r.repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// SumMinutes totals duration_minutes across all projects in the window.
func (r *ReportRepository) SumMinutes(ctx context.Context, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0)::BIGINT
		FROM time_entries
		WHERE start_time >= $1 AND start_time < $2
	`

	var total int64
	if err := r.repo.pool.QueryRow(ctx, query, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum minutes: %w", err)
	}
	return total, nil
}

// SumProjectMinutes totals duration_minutes for one project in the window.
func (r *ReportRepository) SumProjectMinutes(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0)::BIGINT
		FROM time_entries
		WHERE project_id = $1 AND start_time >= $2 AND start_time < $3
	`

	var total int64
	if err := r.repo.pool.QueryRow(ctx, query, projectID, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum project minutes: %w", err)
	}
	return total, nil
}

// CountProjectEntries counts one project's entries in the window.
func (r *ReportRepository) CountProjectEntries(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM time_entries
		WHERE project_id = $1 AND start_time >= $2 AND start_time < $3
	`

	var n int64
	if err := r.repo.pool.QueryRow(ctx, query, projectID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count project entries: %w", err)
	}
	return n, nil
}

// LastEntryAt returns the latest start_time for a project, or nil.
func (r *ReportRepository) LastEntryAt(ctx context.Context, projectID int64) (*time.Time, error) {
	var last *time.Time
	err := r.repo.pool.QueryRow(ctx, `SELECT MAX(start_time) FROM time_entries WHERE project_id = $1`, projectID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last entry: %w", err)
	}
	return last, nil
}

// TopProjectsByMinutes ranks projects with entries in the window by total
// minutes. Ties are ordered by name, then id.
func (r *ReportRepository) TopProjectsByMinutes(ctx context.Context, from, to time.Time) ([]model.ProjectMinutes, error) {
	query := `
		SELECT p.id, p.name, SUM(te.duration_minutes)::BIGINT AS minutes
		FROM time_entries te
		JOIN projects p ON p.id = te.project_id
		WHERE te.start_time >= $1 AND te.start_time < $2
		GROUP BY p.id, p.name
		ORDER BY minutes DESC, p.name ASC, p.id ASC
	`

	rows, err := r.repo.pool.Query(ctx, query, from, to)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top projects: %w", err)
	}

	return out, nil
}

// SummarizeAllProjects aggregates every project over the week and range
// windows in one pass. Projects without entries come back with zeroes and a
// nil LastEntryAt.
func (r *ReportRepository) SummarizeAllProjects(ctx context.Context, week, rng calendar.Window) ([]model.ProjectAggregate, error) {
	query := `
		SELECT p.id,
		       p.name,
		       COALESCE(SUM(te.duration_minutes) FILTER (WHERE te.start_time >= $1 AND te.start_time < $2), 0)::BIGINT,
		       COALESCE(SUM(te.duration_minutes) FILTER (WHERE te.start_time >= $3 AND te.start_time < $4), 0)::BIGINT,
		       COUNT(te.id) FILTER (WHERE te.start_time >= $1 AND te.start_time < $2),
		       MAX(te.start_time)
		FROM projects p
		LEFT JOIN time_entries te ON te.project_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.id
	`

	rows, err := r.repo.pool.Query(ctx, query, week.Start, week.End, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("summarize projects: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectAggregate
	for rows.Next() {
		var agg model.ProjectAggregate
		if err := rows.Scan(
			&agg.ProjectID,
			&agg.ProjectName,
			&agg.MinutesWeek,
			&agg.MinutesRange,
			&agg.EntriesWeek,
			&agg.LastEntryAt,
		); err != nil {
			return nil, fmt.Errorf("scan project summary: %w", err)
		}
		out = append(out, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project summaries: %w", err)
	}

	return out, nil
}
