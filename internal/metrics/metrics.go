// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Report names used as metric labels.
const (
	ReportOverview       = "overview"
	ReportProjectSummary = "project_summary"
	ReportLegacySummary  = "legacy_summary"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Report metrics
	ObserveReport(report string, duration time.Duration, err error)

	// Project lookup cache
	IncProjectCacheHit()
	IncProjectCacheMiss()

	// Write path
	IncProjectCreated()
	IncProjectDeleted()
	IncTimeEntryCreated()
	IncTimeEntryDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
