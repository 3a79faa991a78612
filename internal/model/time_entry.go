package model

import (
	"math"
	"time"
)

// Time entry limits.
const (
	MaxEntryTitleLength       = 120
	MaxEntryDescriptionLength = 500
)

// TimeEntry is a block of work on a project. StartTime and EndTime are naive
// local datetimes. DurationMinutes is always derived from them.
type TimeEntry struct {
	ID              int64
	ProjectID       int64
	ProjectName     string
	UserID          string
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int64
	CreatedAt       time.Time
}

// NewTimeEntry builds an entry with its duration computed from start and end.
func NewTimeEntry(projectID int64, userID, title, description string, start, end time.Time) *TimeEntry {
	e := &TimeEntry{
		ProjectID:   projectID,
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	e.SetTimes(start, end)
	return e
}

// SetTimes sets both bounds and recomputes the duration.
func (e *TimeEntry) SetTimes(start, end time.Time) {
	e.StartTime = start
	e.EndTime = end
	e.DurationMinutes = DurationMinutes(start, end)
}

// DurationMinutes returns end-start in whole minutes, rounded to nearest.
func DurationMinutes(start, end time.Time) int64 {
	return int64(math.Round(end.Sub(start).Minutes()))
}
