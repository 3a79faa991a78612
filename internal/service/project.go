package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/timeledger/timeledger/internal/metrics"
	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

// ProjectService handles project business logic.
type ProjectService struct {
	store   ProjectStore
	cache   ProjectCache
	metrics metrics.Recorder
}

// NewProjectService creates a new ProjectService. A nil cache disables
// cached lookups.
func NewProjectService(projects ProjectStore, projectCache ProjectCache, recorder metrics.Recorder) *ProjectService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProjectService{
		store:   projects,
		cache:   projectCache,
		metrics: recorder,
	}
}

// CreateProjectInput defines input for creating a project.
type CreateProjectInput struct {
	Name        string
	Description string
}

// CreateProject validates and stores a new project.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateProjectName(name); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(input.Description) > model.MaxProjectDescriptionLength {
		return nil, withDetail(ErrDescriptionLength, "description must be at most %d characters", model.MaxProjectDescriptionLength)
	}

	project := &model.Project{
		Name:        name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		if errors.Is(err, store.ErrProjectNameExists) {
			return nil, withDetail(ErrProjectNameExists, "Project with name %s already exists", name)
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.metrics.IncProjectCreated()

	if s.cache != nil {
		_ = s.cache.SetProject(ctx, project) // cache errors are non-fatal
	}

	return project, nil
}

// ListProjects returns all projects ordered by id.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a project by id.
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	project, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, withDetail(ErrProjectNotFound, "Project not found")
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// FindProjectByName looks a project up by exact name, reading through the
// cache when one is configured.
func (s *ProjectService) FindProjectByName(ctx context.Context, name string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	notFound := withDetail(ErrProjectNotFound, "Project with name %s not found", name)
	if name == "" {
		return nil, notFound
	}

	if s.cache != nil {
		project, err := s.cache.GetProjectByName(ctx, name)
		if err == nil {
			s.metrics.IncProjectCacheHit()
			return project, nil
		}
		if neg, err := s.cache.IsProjectNegativelyCached(ctx, name); err == nil && neg {
			s.metrics.IncProjectCacheHit()
			return nil, notFound
		}
		s.metrics.IncProjectCacheMiss()
	}

	project, err := s.store.GetProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			if s.cache != nil {
				_ = s.cache.SetProjectNegativeCache(ctx, name)
			}
			return nil, notFound
		}
		return nil, fmt.Errorf("find project by name: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetProject(ctx, project)
	}
	return project, nil
}

// DeleteProject removes a project that has no time entries.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProject(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrProjectNotFound):
			return withDetail(ErrProjectNotFound, "Project not found")
		case errors.Is(err, store.ErrProjectInUse):
			return withDetail(ErrProjectInUse, "Project %s has time entries and cannot be deleted", project.Name)
		}
		return fmt.Errorf("delete project: %w", err)
	}

	s.metrics.IncProjectDeleted()

	if s.cache != nil {
		_ = s.cache.DeleteProject(ctx, project.Name) // entry expires with its TTL
	}
	return nil
}

func validateProjectName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return withDetail(ErrInvalidName, "name is required")
	}
	if n > model.MaxProjectNameLength {
		return withDetail(ErrInvalidName, "name must be at most %d characters", model.MaxProjectNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return withDetail(ErrInvalidName, "name must not contain control characters")
		}
	}
	return nil
}
