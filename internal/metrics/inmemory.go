package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ReportStats aggregates observations for one report type.
type ReportStats struct {
	Count   uint64
	Errors  uint64
	TotalNs int64
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Reports           map[string]ReportStats
	ProjectCacheHits  uint64
	ProjectCacheMiss  uint64
	ProjectsCreated   uint64
	ProjectsDeleted   uint64
	TimeEntriesAdded  uint64
	TimeEntriesRemove uint64
}

// ReportNames returns the snapshot's report names in sorted order.
func (s Snapshot) ReportNames() []string {
	names := make([]string, 0, len(s.Reports))
	for name := range s.Reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InMemoryRecorder keeps counters in process memory. It backs /metrics.
type InMemoryRecorder struct {
	mu      sync.Mutex
	reports map[string]*ReportStats

	projectCacheHits  uint64
	projectCacheMiss  uint64
	projectsCreated   uint64
	projectsDeleted   uint64
	timeEntriesAdded  uint64
	timeEntriesRemove uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{reports: make(map[string]*ReportStats)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	reports := make(map[string]ReportStats, len(m.reports))
	for name, st := range m.reports {
		reports[name] = *st
	}
	m.mu.Unlock()

	return Snapshot{
		Reports:           reports,
		ProjectCacheHits:  atomic.LoadUint64(&m.projectCacheHits),
		ProjectCacheMiss:  atomic.LoadUint64(&m.projectCacheMiss),
		ProjectsCreated:   atomic.LoadUint64(&m.projectsCreated),
		ProjectsDeleted:   atomic.LoadUint64(&m.projectsDeleted),
		TimeEntriesAdded:  atomic.LoadUint64(&m.timeEntriesAdded),
		TimeEntriesRemove: atomic.LoadUint64(&m.timeEntriesRemove),
	}
}

// ObserveReport records one report computation.
func (m *InMemoryRecorder) ObserveReport(report string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.reports[report]
	if !ok {
		st = &ReportStats{}
		m.reports[report] = st
	}
	st.Count++
	st.TotalNs += duration.Nanoseconds()
	if err != nil {
		st.Errors++
	}
}

func (m *InMemoryRecorder) IncProjectCacheHit()  { atomic.AddUint64(&m.projectCacheHits, 1) }
func (m *InMemoryRecorder) IncProjectCacheMiss() { atomic.AddUint64(&m.projectCacheMiss, 1) }
func (m *InMemoryRecorder) IncProjectCreated()   { atomic.AddUint64(&m.projectsCreated, 1) }
func (m *InMemoryRecorder) IncProjectDeleted()   { atomic.AddUint64(&m.projectsDeleted, 1) }
func (m *InMemoryRecorder) IncTimeEntryCreated() { atomic.AddUint64(&m.timeEntriesAdded, 1) }
func (m *InMemoryRecorder) IncTimeEntryDeleted() { atomic.AddUint64(&m.timeEntriesRemove, 1) }
