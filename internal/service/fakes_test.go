package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/cache"
	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

type window struct{ from, to time.Time }

// fakeReportStore answers report queries from fixed tables and records calls.
type fakeReportStore struct {
	mu    sync.Mutex
	calls []string

	projectCount int64
	sums         map[window]int64
	top          []model.ProjectMinutes
	aggregates   []model.ProjectAggregate
	err          error

	projectSums   map[int64]map[window]int64
	projectCounts map[int64]int64
	lastEntries   map[int64]*time.Time

	gotWeek  calendar.Window
	gotRange calendar.Window
}

func (f *fakeReportStore) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeReportStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeReportStore) CountProjects(ctx context.Context) (int64, error) {
	f.record("CountProjects")
	return f.projectCount, f.err
}

func (f *fakeReportStore) SumMinutes(ctx context.Context, from, to time.Time) (int64, error) {
	f.record("SumMinutes %s %s", from.Format(calendar.LocalDateTimeLayout), to.Format(calendar.LocalDateTimeLayout))
	return f.sums[window{from, to}], f.err
}

func (f *fakeReportStore) SumProjectMinutes(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	f.record("SumProjectMinutes %d", projectID)
	return f.projectSums[projectID][window{from, to}], f.err
}

func (f *fakeReportStore) CountProjectEntries(ctx context.Context, projectID int64, from, to time.Time) (int64, error) {
	f.record("CountProjectEntries %d", projectID)
	return f.projectCounts[projectID], f.err
}

func (f *fakeReportStore) LastEntryAt(ctx context.Context, projectID int64) (*time.Time, error) {
	f.record("LastEntryAt %d", projectID)
	return f.lastEntries[projectID], f.err
}

func (f *fakeReportStore) TopProjectsByMinutes(ctx context.Context, from, to time.Time) ([]model.ProjectMinutes, error) {
	f.record("TopProjectsByMinutes")
	return f.top, f.err
}

func (f *fakeReportStore) SummarizeAllProjects(ctx context.Context, week, rng calendar.Window) ([]model.ProjectAggregate, error) {
	f.record("SummarizeAllProjects")
	f.mu.Lock()
	f.gotWeek, f.gotRange = week, rng
	f.mu.Unlock()
	out := make([]model.ProjectAggregate, len(f.aggregates))
	copy(out, f.aggregates)
	return out, f.err
}

// fakeProjectStore is an in-memory ProjectStore.
type fakeProjectStore struct {
	mu       sync.Mutex
	nextID   int64
	projects map[int64]*model.Project
	inUse    map[int64]bool
	byName   int
	err      error
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[int64]*model.Project), inUse: make(map[int64]bool)}
}

func (f *fakeProjectStore) CreateProject(ctx context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.projects {
		if existing.Name == p.Name {
			return store.ErrProjectNameExists
		}
	}
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjectStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*model.Project, 0, len(f.projects))
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.projects[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) GetProjectByID(ctx context.Context, id int64) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectStore) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byName++
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.projects {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrProjectNotFound
}

func (f *fakeProjectStore) DeleteProject(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.projects[id]; !ok {
		return store.ErrProjectNotFound
	}
	if f.inUse[id] {
		return store.ErrProjectInUse
	}
	delete(f.projects, id)
	return nil
}

// fakeProjectCache is an in-memory ProjectCache.
type fakeProjectCache struct {
	mu       sync.Mutex
	projects map[string]model.Project
	negative map[string]bool
}

func newFakeProjectCache() *fakeProjectCache {
	return &fakeProjectCache{projects: make(map[string]model.Project), negative: make(map[string]bool)}
}

func (c *fakeProjectCache) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.projects[name]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &p, nil
}

func (c *fakeProjectCache) SetProject(ctx context.Context, project *model.Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[project.Name] = *project
	delete(c.negative, project.Name)
	return nil
}

func (c *fakeProjectCache) DeleteProject(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.projects, name)
	delete(c.negative, name)
	return nil
}

func (c *fakeProjectCache) IsProjectNegativelyCached(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.negative[name], nil
}

func (c *fakeProjectCache) SetProjectNegativeCache(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.negative[name] = true
	return nil
}

// fakeEntryStore is an in-memory TimeEntryStore.
type fakeEntryStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []*model.TimeEntry
	creates int
}

func (f *fakeEntryStore) CreateTimeEntry(ctx context.Context, e *model.TimeEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeEntryStore) ListTimeEntriesByUser(ctx context.Context, userID string) ([]*model.TimeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.TimeEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) DeleteTimeEntry(ctx context.Context, userID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrTimeEntryNotFound
}

// fakeKeyStore is an in-memory APIKeyStore.
type fakeKeyStore struct {
	mu   sync.Mutex
	keys map[string]*model.APIKey
}

func newFakeKeyStore() *fakeKeyStore {
	return &fakeKeyStore{keys: make(map[string]*model.APIKey)}
}

func (f *fakeKeyStore) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *key
	f.keys[key.ID] = &cp
	return nil
}

func (f *fakeKeyStore) GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[id]
	if !ok {
		return nil, store.ErrAPIKeyNotFound
	}
	cp := *k
	return &cp, nil
}

func (f *fakeKeyStore) ListAPIKeysByUserID(ctx context.Context, userID string) ([]*model.APIKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.APIKey
	for _, k := range f.keys {
		if k.UserID == userID {
			cp := *k
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeKeyStore) RevokeAPIKey(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keys[id]
	if !ok || k.RevokedAt != nil {
		return store.ErrAPIKeyNotFound
	}
	now := time.Now()
	k.RevokedAt = &now
	return nil
}

type fakeRevocations struct {
	mu     sync.Mutex
	marked []string
}

func (f *fakeRevocations) MarkKeyRevoked(ctx context.Context, keyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, keyID)
	return nil
}

func (f *fakeRevocations) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.marked...)
}
