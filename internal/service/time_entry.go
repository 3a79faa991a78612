package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/timeledger/timeledger/internal/metrics"
	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

// ProjectGetter looks up a single project.
type ProjectGetter interface {
	GetProjectByID(ctx context.Context, id int64) (*model.Project, error)
}

// TimeEntryService handles time entry business logic.
type TimeEntryService struct {
	entries  TimeEntryStore
	projects ProjectGetter
	metrics  metrics.Recorder
}

// NewTimeEntryService creates a new TimeEntryService.
func NewTimeEntryService(entries TimeEntryStore, projects ProjectGetter, recorder metrics.Recorder) *TimeEntryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TimeEntryService{
		entries:  entries,
		projects: projects,
		metrics:  recorder,
	}
}

// CreateTimeEntryInput defines input for logging work. Times are naive
// local datetimes.
type CreateTimeEntryInput struct {
	ProjectID   int64
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

// CreateForUser validates and stores a time entry owned by userID.
func (s *TimeEntryService) CreateForUser(ctx context.Context, userID string, input CreateTimeEntryInput) (*model.TimeEntry, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, withDetail(ErrInvalidTimeRange, "endTime must be after startTime")
	}

	title := strings.TrimSpace(input.Title)
	if n := utf8.RuneCountInString(title); n == 0 || n > model.MaxEntryTitleLength {
		return nil, withDetail(ErrInvalidTitle, "title must be 1-%d characters", model.MaxEntryTitleLength)
	}
	if utf8.RuneCountInString(input.Description) > model.MaxEntryDescriptionLength {
		return nil, withDetail(ErrDescriptionLength, "description must be at most %d characters", model.MaxEntryDescriptionLength)
	}

	project, err := s.projects.GetProjectByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, withDetail(ErrProjectNotFound, "Project not found")
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	entry := model.NewTimeEntry(project.ID, userID, title, input.Description, input.StartTime, input.EndTime)
	if err := s.entries.CreateTimeEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, withDetail(ErrProjectNotFound, "Project not found")
		}
		return nil, fmt.Errorf("create time entry: %w", err)
	}
	entry.ProjectName = project.Name

	s.metrics.IncTimeEntryCreated()

	return entry, nil
}

// ListForUser returns the user's entries, newest first.
func (s *TimeEntryService) ListForUser(ctx context.Context, userID string) ([]*model.TimeEntry, error) {
	entries, err := s.entries.ListTimeEntriesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return entries, nil
}

// DeleteForUser deletes one of the user's entries. Entries owned by other
// users are reported as not found.
func (s *TimeEntryService) DeleteForUser(ctx context.Context, userID string, id int64) error {
	if err := s.entries.DeleteTimeEntry(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrTimeEntryNotFound) {
			return withDetail(ErrTimeEntryNotFound, "Time entry not found")
		}
		return fmt.Errorf("delete time entry: %w", err)
	}

	s.metrics.IncTimeEntryDeleted()
	return nil
}
