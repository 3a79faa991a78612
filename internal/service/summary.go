package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/metrics"
	"github.com/timeledger/timeledger/internal/model"
)

// ProjectLister lists every project.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]*model.Project, error)
}

// SummaryService serves the older admin endpoints. Its project summary takes
// ISO local datetimes and issues per-project queries instead of one
// aggregate query.
type SummaryService struct {
	reports  *ReportsService
	projects ProjectLister
}

// NewSummaryService creates a new SummaryService sharing the reports'
// store, clock and recorder.
func NewSummaryService(reports *ReportsService, projects ProjectLister) *SummaryService {
	return &SummaryService{reports: reports, projects: projects}
}

// Overview is identical to ReportsService.Overview.
func (s *SummaryService) Overview(ctx context.Context, tz string) (*model.OverviewReport, error) {
	return s.reports.Overview(ctx, tz)
}

// ProjectsSummary summarizes every project over the current week and over
// [from, to). Blank bounds default to the current month.
func (s *SummaryService) ProjectsSummary(ctx context.Context, tz, fromISO, toISO string) (rows []model.ProjectSummary, err error) {
	defer s.reports.observe(metrics.ReportLegacySummary, time.Now(), &err)

	loc, err := resolveZone(tz)
	if err != nil {
		return nil, err
	}
	snap := calendar.At(loc, s.reports.now())

	from, err := calendar.ParseLocalDateTimeOr(snap.Month.Start, fromISO)
	if err != nil {
		return nil, withDetail(ErrInvalidDate, "Invalid from: %s", fromISO)
	}
	to, err := calendar.ParseLocalDateTimeOr(snap.Month.End, toISO)
	if err != nil {
		return nil, withDetail(ErrInvalidDate, "Invalid to: %s", toISO)
	}

	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	store := s.reports.store
	rows = make([]model.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		weekMinutes, err := store.SumProjectMinutes(ctx, p.ID, snap.Week.Start, snap.Week.End)
		if err != nil {
			return nil, fmt.Errorf("sum week minutes for project %d: %w", p.ID, err)
		}
		rangeMinutes, err := store.SumProjectMinutes(ctx, p.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("sum range minutes for project %d: %w", p.ID, err)
		}
		entries, err := store.CountProjectEntries(ctx, p.ID, snap.Week.Start, snap.Week.End)
		if err != nil {
			return nil, fmt.Errorf("count entries for project %d: %w", p.ID, err)
		}
		last, err := store.LastEntryAt(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("last entry for project %d: %w", p.ID, err)
		}

		rows = append(rows, model.ProjectSummary{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			HoursWeek:   HoursFromMinutes(weekMinutes),
			HoursRange:  HoursFromMinutes(rangeMinutes),
			EntriesWeek: entries,
			LastEntryAt: last,
		})
	}
	sortByWeekHours(rows)

	return rows, nil
}
