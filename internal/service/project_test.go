package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/timeledger/timeledger/internal/metrics"
)

func TestProjectService_CreateProjectValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       CreateProjectInput
		wantErr     error
		wantName    string
		description string
	}{
		{name: "valid", input: CreateProjectInput{Name: "Alpha"}, wantName: "Alpha"},
		{name: "trimmed", input: CreateProjectInput{Name: "  Alpha  "}, wantName: "Alpha"},
		{name: "max length", input: CreateProjectInput{Name: strings.Repeat("a", 50)}, wantName: strings.Repeat("a", 50)},
		{name: "multibyte at max", input: CreateProjectInput{Name: strings.Repeat("ž", 50)}, wantName: strings.Repeat("ž", 50)},
		{name: "empty", input: CreateProjectInput{Name: ""}, wantErr: ErrInvalidName},
		{name: "blank", input: CreateProjectInput{Name: "   "}, wantErr: ErrInvalidName},
		{name: "too long", input: CreateProjectInput{Name: strings.Repeat("a", 51)}, wantErr: ErrInvalidName},
		{name: "control char", input: CreateProjectInput{Name: "Al\x00pha"}, wantErr: ErrInvalidName},
		{name: "newline", input: CreateProjectInput{Name: "Al\npha"}, wantErr: ErrInvalidName},
		{name: "description too long", input: CreateProjectInput{Name: "Alpha", Description: strings.Repeat("d", 2049)}, wantErr: ErrDescriptionLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewProjectService(newFakeProjectStore(), nil, nil)

			project, err := svc.CreateProject(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if project.Name != tt.wantName || project.ID == 0 {
				t.Errorf("project = %+v", project)
			}
		})
	}
}

func TestProjectService_CreateDuplicate(t *testing.T) {
	t.Parallel()

	svc := NewProjectService(newFakeProjectStore(), nil, nil)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Alpha"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateProject(ctx, CreateProjectInput{Name: " Alpha "})
	if !errors.Is(err, ErrProjectNameExists) {
		t.Fatalf("expected ErrProjectNameExists, got %v", err)
	}
	if err.Error() != "Project with name Alpha already exists" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestProjectService_FindProjectByNameUsesCache(t *testing.T) {
	t.Parallel()

	projects := newFakeProjectStore()
	projectCache := newFakeProjectCache()
	rec := metrics.NewInMemory()
	svc := NewProjectService(projects, projectCache, rec)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Alpha"})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		got, err := svc.FindProjectByName(ctx, "Alpha")
		if err != nil {
			t.Fatalf("FindProjectByName: %v", err)
		}
		if got.ID != created.ID {
			t.Errorf("got id %d, want %d", got.ID, created.ID)
		}
	}
	if projects.byName != 0 {
		t.Errorf("store queried %d times, want 0 (write-through cache)", projects.byName)
	}
	if hits := rec.Snapshot().ProjectCacheHits; hits != 3 {
		t.Errorf("cache hits = %d, want 3", hits)
	}
}

func TestProjectService_FindProjectByNameNegativeCache(t *testing.T) {
	t.Parallel()

	projects := newFakeProjectStore()
	projectCache := newFakeProjectCache()
	svc := NewProjectService(projects, projectCache, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.FindProjectByName(ctx, "Ghost")
		if !errors.Is(err, ErrProjectNotFound) {
			t.Fatalf("expected ErrProjectNotFound, got %v", err)
		}
		if err.Error() != "Project with name Ghost not found" {
			t.Errorf("message = %q", err.Error())
		}
	}
	if projects.byName != 1 {
		t.Errorf("store queried %d times, want 1", projects.byName)
	}

	// Creating the project clears the negative entry.
	if _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Ghost"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.FindProjectByName(ctx, "Ghost"); err != nil {
		t.Fatalf("FindProjectByName after create: %v", err)
	}
}

func TestProjectService_FindProjectByNameWithoutCache(t *testing.T) {
	t.Parallel()

	projects := newFakeProjectStore()
	svc := NewProjectService(projects, nil, nil)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Alpha"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.FindProjectByName(ctx, "Alpha"); err != nil {
		t.Fatalf("FindProjectByName: %v", err)
	}
	if projects.byName != 1 {
		t.Errorf("store queried %d times, want 1", projects.byName)
	}
}

func TestProjectService_DeleteProject(t *testing.T) {
	t.Parallel()

	projects := newFakeProjectStore()
	projectCache := newFakeProjectCache()
	svc := NewProjectService(projects, projectCache, nil)
	ctx := context.Background()

	busy, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "Busy"})
	idle, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "Idle"})
	projects.inUse[busy.ID] = true

	if err := svc.DeleteProject(ctx, busy.ID); !errors.Is(err, ErrProjectInUse) {
		t.Fatalf("expected ErrProjectInUse, got %v", err)
	}
	if err := svc.DeleteProject(ctx, 999); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}

	if err := svc.DeleteProject(ctx, idle.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := projectCache.GetProjectByName(ctx, "Idle"); err == nil {
		t.Error("deleted project still cached")
	}
	if _, err := svc.GetProject(ctx, idle.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound after delete, got %v", err)
	}
}
