package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/metrics"
	"github.com/timeledger/timeledger/internal/model"
)

func naive(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Sunday 2025-08-10 13:45 in Europe/Skopje.
var skopjeSunday = time.Date(2025, 8, 10, 11, 45, 0, 0, time.UTC)

func TestReportsService_Overview(t *testing.T) {
	t.Parallel()

	today := window{naive(2025, 8, 10, 0, 0), naive(2025, 8, 11, 0, 0)}
	week := window{naive(2025, 8, 4, 0, 0), naive(2025, 8, 11, 0, 0)}

	fs := &fakeReportStore{
		projectCount: 3,
		sums:         map[window]int64{today: 90, week: 305},
		top: []model.ProjectMinutes{
			{ProjectID: 1, ProjectName: "A", Minutes: 200},
			{ProjectID: 2, ProjectName: "B", Minutes: 150},
			{ProjectID: 3, ProjectName: "C", Minutes: 60},
		},
	}
	svc := NewReportsService(fs, ReportsOptions{Clock: fixedClock(skopjeSunday)})

	report, err := svc.Overview(context.Background(), "Europe/Skopje")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	if report.TotalProjects != 3 {
		t.Errorf("TotalProjects = %d, want 3", report.TotalProjects)
	}
	if report.HoursToday != 1.5 {
		t.Errorf("HoursToday = %v, want 1.5", report.HoursToday)
	}
	if report.HoursThisWeek != 5.1 {
		t.Errorf("HoursThisWeek = %v, want 5.1", report.HoursThisWeek)
	}

	want := []model.TopProject{
		{ProjectID: 1, ProjectName: "A", Hours: 3.3},
		{ProjectID: 2, ProjectName: "B", Hours: 2.5},
		{ProjectID: 3, ProjectName: "C", Hours: 1.0},
	}
	if len(report.TopProjectsThisWeek) != len(want) {
		t.Fatalf("top projects = %+v", report.TopProjectsThisWeek)
	}
	for i, tp := range want {
		if report.TopProjectsThisWeek[i] != tp {
			t.Errorf("top[%d] = %+v, want %+v", i, report.TopProjectsThisWeek[i], tp)
		}
	}
}

func TestReportsService_OverviewTruncatesTopProjects(t *testing.T) {
	t.Parallel()

	top := make([]model.ProjectMinutes, 0, 12)
	for i := 0; i < 12; i++ {
		top = append(top, model.ProjectMinutes{ProjectID: int64(i + 1), ProjectName: fmt.Sprintf("P%02d", i), Minutes: int64(600 - i*30)})
	}

	testCases := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 10},
		{"configured", 3, 3},
		{"larger than result", 50, 12},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fs := &fakeReportStore{top: top}
			svc := NewReportsService(fs, ReportsOptions{Clock: fixedClock(skopjeSunday), TopLimit: tc.limit})

			report, err := svc.Overview(context.Background(), "UTC")
			if err != nil {
				t.Fatalf("Overview: %v", err)
			}
			if len(report.TopProjectsThisWeek) != tc.want {
				t.Fatalf("got %d top projects, want %d", len(report.TopProjectsThisWeek), tc.want)
			}
			if report.TopProjectsThisWeek[0].ProjectName != "P00" {
				t.Errorf("store order not preserved: %+v", report.TopProjectsThisWeek[0])
			}
		})
	}
}

func TestReportsService_InvalidTimezone(t *testing.T) {
	t.Parallel()

	for _, tz := range []string{"", "Mars/Olympus", "Local"} {
		t.Run(tz, func(t *testing.T) {
			t.Parallel()
			fs := &fakeReportStore{}
			svc := NewReportsService(fs, ReportsOptions{})

			if _, err := svc.Overview(context.Background(), tz); !errors.Is(err, ErrInvalidTimezone) {
				t.Errorf("Overview: expected ErrInvalidTimezone, got %v", err)
			}
			if _, err := svc.ProjectSummary(context.Background(), tz, nil, nil); !errors.Is(err, ErrInvalidTimezone) {
				t.Errorf("ProjectSummary: expected ErrInvalidTimezone, got %v", err)
			}
			if n := fs.callCount(); n != 0 {
				t.Errorf("store called %d times on invalid timezone", n)
			}
		})
	}
}

func TestReportsService_ProjectSummarySortsByWeekHours(t *testing.T) {
	t.Parallel()

	last := naive(2025, 8, 9, 16, 0)
	fs := &fakeReportStore{
		aggregates: []model.ProjectAggregate{
			{ProjectID: 1, ProjectName: "Alpha", MinutesWeek: 180, MinutesRange: 600, EntriesWeek: 2, LastEntryAt: &last},
			{ProjectID: 2, ProjectName: "Bravo", MinutesWeek: 60, MinutesRange: 60, EntriesWeek: 1},
			{ProjectID: 3, ProjectName: "Charlie", MinutesWeek: 240, MinutesRange: 255, EntriesWeek: 4},
			{ProjectID: 4, ProjectName: "Delta"},
			{ProjectID: 5, ProjectName: "Echo"},
		},
	}
	svc := NewReportsService(fs, ReportsOptions{Clock: fixedClock(skopjeSunday)})

	rows, err := svc.ProjectSummary(context.Background(), "Europe/Skopje", nil, nil)
	if err != nil {
		t.Fatalf("ProjectSummary: %v", err)
	}

	wantOrder := []string{"Charlie", "Alpha", "Bravo", "Delta", "Echo"}
	wantWeek := []float64{4.0, 3.0, 1.0, 0, 0}
	for i, name := range wantOrder {
		if rows[i].ProjectName != name {
			t.Fatalf("row %d = %s, want %s (rows %+v)", i, rows[i].ProjectName, name, rows)
		}
		if rows[i].HoursWeek != wantWeek[i] {
			t.Errorf("%s HoursWeek = %v, want %v", name, rows[i].HoursWeek, wantWeek[i])
		}
	}
	if rows[0].HoursRange != 4.3 || rows[0].EntriesWeek != 4 {
		t.Errorf("Charlie = %+v", rows[0])
	}
	if rows[1].LastEntryAt == nil || !rows[1].LastEntryAt.Equal(last) {
		t.Errorf("Alpha LastEntryAt = %v, want %v", rows[1].LastEntryAt, last)
	}
	if rows[3].LastEntryAt != nil {
		t.Errorf("Delta LastEntryAt = %v, want nil", rows[3].LastEntryAt)
	}

	if !fs.gotWeek.Start.Equal(naive(2025, 8, 4, 0, 0)) || !fs.gotWeek.End.Equal(naive(2025, 8, 11, 0, 0)) {
		t.Errorf("week window = %v, want 2025-08-04/2025-08-11", fs.gotWeek)
	}
}

func TestReportsService_ProjectSummaryRange(t *testing.T) {
	t.Parallel()

	date := func(y int, m time.Month, d int) *calendar.Date {
		return &calendar.Date{Year: y, Month: m, Day: d}
	}
	endOf := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 23, 59, 59, 999999999, time.UTC)
	}

	testCases := []struct {
		name      string
		policy    RangePolicy
		start     *calendar.Date
		end       *calendar.Date
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"last30 defaults", RangeLast30, nil, nil, naive(2025, 7, 12, 0, 0), endOf(2025, 8, 10)},
		{"last30 end only", RangeLast30, nil, date(2025, 3, 1), naive(2025, 1, 31, 0, 0), endOf(2025, 3, 1)},
		{"last30 start only", RangeLast30, date(2025, 8, 1), nil, naive(2025, 8, 1, 0, 0), endOf(2025, 8, 10)},
		{"month defaults", RangeMonth, nil, nil, naive(2025, 8, 1, 0, 0), endOf(2025, 8, 10)},
		{"month end only", RangeMonth, nil, date(2025, 8, 31), naive(2025, 8, 1, 0, 0), endOf(2025, 8, 31)},
		{"explicit", RangeMonth, date(2025, 6, 1), date(2025, 6, 30), naive(2025, 6, 1, 0, 0), endOf(2025, 6, 30)},
		{"single day", RangeLast30, date(2025, 8, 5), date(2025, 8, 5), naive(2025, 8, 5, 0, 0), endOf(2025, 8, 5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fs := &fakeReportStore{}
			svc := NewReportsService(fs, ReportsOptions{Clock: fixedClock(skopjeSunday), RangePolicy: tc.policy})

			if _, err := svc.ProjectSummary(context.Background(), "Europe/Skopje", tc.start, tc.end); err != nil {
				t.Fatalf("ProjectSummary: %v", err)
			}
			if !fs.gotRange.Start.Equal(tc.wantStart) || !fs.gotRange.End.Equal(tc.wantEnd) {
				t.Errorf("range = %v, want %v/%v", fs.gotRange, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func TestReportsService_ProjectSummaryInvertedRange(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		policy RangePolicy
		start  *calendar.Date
		end    *calendar.Date
	}{
		{"explicit", RangeLast30, &calendar.Date{Year: 2025, Month: 8, Day: 31}, &calendar.Date{Year: 2025, Month: 8, Day: 1}},
		{"start after defaulted end", RangeLast30, &calendar.Date{Year: 2025, Month: 9, Day: 1}, nil},
		{"end before month start", RangeMonth, nil, &calendar.Date{Year: 2025, Month: 7, Day: 31}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fs := &fakeReportStore{}
			svc := NewReportsService(fs, ReportsOptions{Clock: fixedClock(skopjeSunday), RangePolicy: tc.policy})

			_, err := svc.ProjectSummary(context.Background(), "Europe/Skopje", tc.start, tc.end)
			if !errors.Is(err, ErrInvalidDateRange) {
				t.Fatalf("expected ErrInvalidDateRange, got %v", err)
			}
			if err.Error() != "endDate must be on or after startDate" {
				t.Errorf("message = %q", err.Error())
			}
			if n := fs.callCount(); n != 0 {
				t.Errorf("store called %d times on inverted range", n)
			}
		})
	}
}

func TestReportsService_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	fs := &fakeReportStore{err: boom}
	rec := metrics.NewInMemory()
	svc := NewReportsService(fs, ReportsOptions{Recorder: rec})

	if _, err := svc.Overview(context.Background(), "UTC"); !errors.Is(err, boom) {
		t.Errorf("Overview: expected wrapped store error, got %v", err)
	}
	if _, err := svc.ProjectSummary(context.Background(), "UTC", nil, nil); !errors.Is(err, boom) {
		t.Errorf("ProjectSummary: expected wrapped store error, got %v", err)
	}

	snap := rec.Snapshot()
	if snap.Reports[metrics.ReportOverview].Errors != 1 || snap.Reports[metrics.ReportProjectSummary].Errors != 1 {
		t.Errorf("report errors not recorded: %+v", snap.Reports)
	}
}

func TestParseRangePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RangePolicy
		wantErr bool
	}{
		{"month", RangeMonth, false},
		{" LAST30 ", RangeLast30, false},
		{"", RangeLast30, false},
		{"quarter", "", true},
	}
	for _, tt := range tests {
		got, err := ParseRangePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseRangePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}
