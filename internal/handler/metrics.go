package handler

import (
	"fmt"
	"net/http"

	"github.com/timeledger/timeledger/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, name := range snap.ReportNames() {
		st := snap.Reports[name]
		writeMetric(w, "timeledger_report_duration_seconds_count{report=%q} %d\n", name, st.Count)
		writeMetric(w, "timeledger_report_duration_seconds_sum{report=%q} %.6f\n", name, float64(st.TotalNs)/1e9)
		writeMetric(w, "timeledger_report_errors_total{report=%q} %d\n", name, st.Errors)
	}

	writeMetric(w, "timeledger_project_cache_hits_total %d\n", snap.ProjectCacheHits)
	writeMetric(w, "timeledger_project_cache_misses_total %d\n", snap.ProjectCacheMiss)
	writeMetric(w, "timeledger_projects_created_total %d\n", snap.ProjectsCreated)
	writeMetric(w, "timeledger_projects_deleted_total %d\n", snap.ProjectsDeleted)
	writeMetric(w, "timeledger_time_entries_created_total %d\n", snap.TimeEntriesAdded)
	writeMetric(w, "timeledger_time_entries_deleted_total %d\n", snap.TimeEntriesRemove)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
