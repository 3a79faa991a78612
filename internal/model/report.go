package model

import "time"

// ProjectMinutes is one row of a grouped minutes sum.
type ProjectMinutes struct {
	ProjectID   int64
	ProjectName string
	Minutes     int64
}

// ProjectAggregate holds per-project figures over a week window and an
// arbitrary range. LastEntryAt is nil for projects without entries.
type ProjectAggregate struct {
	ProjectID    int64
	ProjectName  string
	MinutesWeek  int64
	MinutesRange int64
	EntriesWeek  int64
	LastEntryAt  *time.Time
}

// TopProject is a project ranked by hours.
type TopProject struct {
	ProjectID   int64
	ProjectName string
	Hours       float64
}

// OverviewReport summarises global activity for today and this week.
type OverviewReport struct {
	TotalProjects       int64
	HoursToday          float64
	HoursThisWeek       float64
	TopProjectsThisWeek []TopProject
}

// ProjectSummary is one row of the per-project summary report.
type ProjectSummary struct {
	ProjectID   int64
	ProjectName string
	HoursWeek   float64
	HoursRange  float64
	EntriesWeek int64
	LastEntryAt *time.Time
}
