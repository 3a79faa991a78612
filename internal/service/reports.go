package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/metrics"
	"github.com/timeledger/timeledger/internal/model"
)

// RangePolicy decides the default bounds of the summary range.
type RangePolicy string

const (
	// RangeMonth defaults to the 1st of the current month through today.
	RangeMonth RangePolicy = "month"
	// RangeLast30 defaults to the 30 days ending at the end date.
	RangeLast30 RangePolicy = "last30"
)

// DefaultTopProjects is the overview's top-projects limit.
const DefaultTopProjects = 10

// ParseRangePolicy validates a configured policy name.
func ParseRangePolicy(s string) (RangePolicy, error) {
	switch p := RangePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case RangeMonth, RangeLast30:
		return p, nil
	case "":
		return RangeLast30, nil
	default:
		return "", fmt.Errorf("unknown range policy %q", s)
	}
}

// ReportsOptions configures a ReportsService. Zero values pick defaults.
type ReportsOptions struct {
	Clock       func() time.Time
	RangePolicy RangePolicy
	TopLimit    int
	Recorder    metrics.Recorder
}

// ReportsService computes the admin overview and per-project summaries.
// It holds no mutable state and is safe for concurrent use.
type ReportsService struct {
	store    ReportStore
	now      func() time.Time
	policy   RangePolicy
	topLimit int
	metrics  metrics.Recorder
}

// NewReportsService creates a new ReportsService.
func NewReportsService(store ReportStore, opts ReportsOptions) *ReportsService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RangePolicy == "" {
		opts.RangePolicy = RangeLast30
	}
	if opts.TopLimit <= 0 {
		opts.TopLimit = DefaultTopProjects
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewNoop()
	}
	return &ReportsService{
		store:    store,
		now:      opts.Clock,
		policy:   opts.RangePolicy,
		topLimit: opts.TopLimit,
		metrics:  opts.Recorder,
	}
}

// Overview returns global totals for today and the current ISO week in tz.
func (s *ReportsService) Overview(ctx context.Context, tz string) (report *model.OverviewReport, err error) {
	defer s.observe(metrics.ReportOverview, time.Now(), &err)

	loc, err := resolveZone(tz)
	if err != nil {
		return nil, err
	}
	snap := calendar.At(loc, s.now())

	total, err := s.store.CountProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	today, err := s.store.SumMinutes(ctx, snap.Today.Start, snap.Today.End)
	if err != nil {
		return nil, fmt.Errorf("sum minutes today: %w", err)
	}
	week, err := s.store.SumMinutes(ctx, snap.Week.Start, snap.Week.End)
	if err != nil {
		return nil, fmt.Errorf("sum minutes this week: %w", err)
	}
	top, err := s.store.TopProjectsByMinutes(ctx, snap.Week.Start, snap.Week.End)
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}

	if len(top) > s.topLimit {
		top = top[:s.topLimit]
	}
	topProjects := make([]model.TopProject, 0, len(top))
	for _, p := range top {
		topProjects = append(topProjects, model.TopProject{
			ProjectID:   p.ProjectID,
			ProjectName: p.ProjectName,
			Hours:       HoursFromMinutes(p.Minutes),
		})
	}

	return &model.OverviewReport{
		TotalProjects:       total,
		HoursToday:          HoursFromMinutes(today),
		HoursThisWeek:       HoursFromMinutes(week),
		TopProjectsThisWeek: topProjects,
	}, nil
}

// ProjectSummary returns one row per project with week and range figures,
// ordered by week hours descending. Omitted dates follow the range policy.
func (s *ReportsService) ProjectSummary(ctx context.Context, tz string, start, end *calendar.Date) (rows []model.ProjectSummary, err error) {
	defer s.observe(metrics.ReportProjectSummary, time.Now(), &err)

	loc, err := resolveZone(tz)
	if err != nil {
		return nil, err
	}
	snap := calendar.At(loc, s.now())

	rng, err := s.resolveRange(snap.Date, start, end)
	if err != nil {
		return nil, err
	}

	aggregates, err := s.store.SummarizeAllProjects(ctx, snap.Week, rng)
	if err != nil {
		return nil, fmt.Errorf("summarize projects: %w", err)
	}

	rows = make([]model.ProjectSummary, 0, len(aggregates))
	for _, a := range aggregates {
		rows = append(rows, model.ProjectSummary{
			ProjectID:   a.ProjectID,
			ProjectName: a.ProjectName,
			HoursWeek:   HoursFromMinutes(a.MinutesWeek),
			HoursRange:  HoursFromMinutes(a.MinutesRange),
			EntriesWeek: a.EntriesWeek,
			LastEntryAt: a.LastEntryAt,
		})
	}
	sortByWeekHours(rows)

	return rows, nil
}

// resolveRange applies the range policy to missing bounds and checks order.
func (s *ReportsService) resolveRange(today calendar.Date, start, end *calendar.Date) (calendar.Window, error) {
	var from, to calendar.Date

	if end != nil {
		to = *end
	} else {
		to = today
	}

	switch {
	case start != nil:
		from = *start
	case s.policy == RangeMonth:
		from = calendar.Date{Year: today.Year, Month: today.Month, Day: 1}
	default:
		from = to.AddDays(-29)
	}

	if to.Before(from) {
		return calendar.Window{}, withDetail(ErrInvalidDateRange, "endDate must be on or after startDate")
	}
	return calendar.RangeFromDates(from, to), nil
}

func (s *ReportsService) observe(report string, start time.Time, err *error) {
	s.metrics.ObserveReport(report, time.Since(start), *err)
}

func resolveZone(tz string) (*time.Location, error) {
	loc, err := calendar.ResolveZone(tz)
	if err != nil {
		return nil, withDetail(ErrInvalidTimezone, "Invalid timezone: %s", tz)
	}
	return loc, nil
}

func sortByWeekHours(rows []model.ProjectSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].HoursWeek > rows[j].HoursWeek
	})
}
