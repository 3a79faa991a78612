package service

import (
	"context"
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/model"
)

// ReportStore is the read-only query surface consumed by the reports.
// Windows are half-open on start time unless stated otherwise.
type ReportStore interface {
	CountProjects(ctx context.Context) (int64, error)
	SumMinutes(ctx context.Context, from, to time.Time) (int64, error)
	SumProjectMinutes(ctx context.Context, projectID int64, from, to time.Time) (int64, error)
	CountProjectEntries(ctx context.Context, projectID int64, from, to time.Time) (int64, error)
	LastEntryAt(ctx context.Context, projectID int64) (*time.Time, error)
	TopProjectsByMinutes(ctx context.Context, from, to time.Time) ([]model.ProjectMinutes, error)
	SummarizeAllProjects(ctx context.Context, week, rng calendar.Window) ([]model.ProjectAggregate, error)
}

// ProjectStore persists projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *model.Project) error
	ListProjects(ctx context.Context) ([]*model.Project, error)
	GetProjectByID(ctx context.Context, id int64) (*model.Project, error)
	GetProjectByName(ctx context.Context, name string) (*model.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

// TimeEntryStore persists time entries.
type TimeEntryStore interface {
	CreateTimeEntry(ctx context.Context, e *model.TimeEntry) error
	ListTimeEntriesByUser(ctx context.Context, userID string) ([]*model.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, userID string, id int64) error
}

// APIKeyStore persists API keys.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error)
	ListAPIKeysByUserID(ctx context.Context, userID string) ([]*model.APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// ProjectCache is a read-through cache of projects keyed by name.
type ProjectCache interface {
	GetProjectByName(ctx context.Context, name string) (*model.Project, error)
	SetProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, name string) error
	IsProjectNegativelyCached(ctx context.Context, name string) (bool, error)
	SetProjectNegativeCache(ctx context.Context, name string) error
}

// RevocationCache invalidates cached auth state for revoked keys.
type RevocationCache interface {
	MarkKeyRevoked(ctx context.Context, keyID string) error
}
