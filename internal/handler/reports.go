package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/handler/dto"
	"github.com/timeledger/timeledger/internal/service"
)

// ReportsHandler serves the admin report endpoints.
type ReportsHandler struct {
	reports   *service.ReportsService
	legacy    *service.SummaryService
	defaultTZ string
	logger    *slog.Logger
}

// NewReportsHandler creates a new ReportsHandler. Requests without a
// timezone use defaultTZ.
func NewReportsHandler(reports *service.ReportsService, legacy *service.SummaryService, defaultTZ string, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, legacy: legacy, defaultTZ: defaultTZ, logger: logger}
}

// Overview handles GET /api/v1/admin/reports/overview.
func (h *ReportsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	h.overview(w, r, r.URL.Query().Get("timezone"))
}

// LegacyOverview handles GET /api/v1/admin/overview.
func (h *ReportsHandler) LegacyOverview(w http.ResponseWriter, r *http.Request) {
	h.overview(w, r, r.URL.Query().Get("tz"))
}

func (h *ReportsHandler) overview(w http.ResponseWriter, r *http.Request, tz string) {
	report, err := h.reports.Overview(r.Context(), h.zone(tz))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToOverviewResponse(report))
}

// Projects handles GET /api/v1/admin/reports/projects.
func (h *ReportsHandler) Projects(w http.ResponseWriter, r *http.Request) {
	tz, start, end, ok := h.summaryParams(w, r)
	if !ok {
		return
	}

	rows, err := h.reports.ProjectSummary(r.Context(), tz, start, end)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToProjectSummaryResponses(rows))
}

// ProjectsCSV handles GET /api/v1/admin/reports/projects.csv.
func (h *ReportsHandler) ProjectsCSV(w http.ResponseWriter, r *http.Request) {
	tz, start, end, ok := h.summaryParams(w, r)
	if !ok {
		return
	}

	// Buffered so a failing report still gets a JSON error response.
	var buf bytes.Buffer
	if err := h.reports.ExportProjectSummaryCSV(r.Context(), &buf, tz, start, end); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="project-summary.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// LegacyProjectsSummary handles GET /api/v1/admin/projects/summary.
func (h *ReportsHandler) LegacyProjectsSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.legacy.ProjectsSummary(r.Context(), h.zone(q.Get("tz")), q.Get("from"), q.Get("to"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToProjectSummaryResponses(rows))
}

func (h *ReportsHandler) summaryParams(w http.ResponseWriter, r *http.Request) (tz string, start, end *calendar.Date, ok bool) {
	q := r.URL.Query()
	tz = h.zone(q.Get("timezone"))
	if _, err := calendar.ResolveZone(tz); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_TIMEZONE", "Invalid timezone: "+tz)
		return "", nil, nil, false
	}
	for _, p := range []struct {
		name string
		dst  **calendar.Date
	}{
		{"startDate", &start},
		{"endDate", &end},
	} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		d, err := calendar.ParseDate(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_DATE", "Invalid "+p.name+": "+raw)
			return "", nil, nil, false
		}
		*p.dst = &d
	}
	return tz, start, end, true
}

func (h *ReportsHandler) zone(tz string) string {
	if strings.TrimSpace(tz) == "" {
		return h.defaultTZ
	}
	return tz
}
