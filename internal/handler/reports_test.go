package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/timeledger/timeledger/internal/handler/dto"
)

func seedReports(t *testing.T, env *testEnv) {
	t.Helper()
	alpha := env.createProject(t, "Alpha")
	beta := env.createProject(t, "Beta")
	env.createProject(t, "Empty")

	env.logWork(t, "u1", alpha, "2025-08-18T09:00:00", "2025-08-18T10:00:00")
	env.logWork(t, "u1", beta, "2025-08-18T10:00:00", "2025-08-18T11:30:00")
	env.logWork(t, "u1", alpha, "2025-07-10T09:00:00", "2025-07-10T11:00:00")
}

func TestReportsHandler_Overview(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedReports(t, env)

	for _, path := range []string{
		"/api/v1/admin/reports/overview?timezone=UTC",
		"/api/v1/admin/reports/overview",
		"/api/v1/admin/overview?tz=UTC",
	} {
		rec := env.do(t, http.MethodGet, path, "admin", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d %s", path, rec.Code, rec.Body.String())
		}
		var got dto.OverviewResponse
		decode(t, rec, &got)

		if got.TotalProjects != 3 || got.HoursToday != 2.5 || got.HoursThisWeek != 2.5 {
			t.Errorf("%s: overview = %+v", path, got)
		}
		if len(got.TopProjectsThisWeek) != 2 || got.TopProjectsThisWeek[0].ProjectName != "Beta" {
			t.Errorf("%s: top = %+v", path, got.TopProjectsThisWeek)
		}
	}
}

func TestReportsHandler_InputErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name    string
		path    string
		code    string
		message string
	}{
		{name: "bad timezone", path: "/api/v1/admin/reports/overview?timezone=Mars/Base", code: "INVALID_TIMEZONE", message: "Invalid timezone: Mars/Base"},
		{name: "legacy bad timezone", path: "/api/v1/admin/overview?tz=Nowhere", code: "INVALID_TIMEZONE"},
		{name: "bad start date", path: "/api/v1/admin/reports/projects?startDate=2025-13-01", code: "INVALID_DATE"},
		{name: "bad end date on csv", path: "/api/v1/admin/reports/projects.csv?endDate=yesterday", code: "INVALID_DATE"},
		{name: "inverted range", path: "/api/v1/admin/reports/projects?startDate=2025-08-10&endDate=2025-08-01", code: "INVALID_DATE_RANGE", message: "endDate must be on or after startDate"},
		{name: "timezone checked before dates", path: "/api/v1/admin/reports/projects?timezone=Mars/Base&startDate=2025-13-01", code: "INVALID_TIMEZONE", message: "Invalid timezone: Mars/Base"},
		{name: "timezone checked before dates on csv", path: "/api/v1/admin/reports/projects.csv?timezone=Nowhere&endDate=yesterday", code: "INVALID_TIMEZONE"},
		{name: "padded timezone", path: "/api/v1/admin/reports/overview?timezone=%20UTC", code: "INVALID_TIMEZONE"},
		{name: "legacy bad from", path: "/api/v1/admin/projects/summary?from=2025-08-01", code: "INVALID_DATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, "admin", "")
			body := expectError(t, rec, http.StatusBadRequest, tt.code)
			if tt.message != "" && body.Error != tt.message {
				t.Errorf("message = %q, want %q", body.Error, tt.message)
			}
		})
	}
}

func TestReportsHandler_FixedOffsetTimezone(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/v1/admin/reports/overview?timezone=%2B02:00",
		"/api/v1/admin/reports/overview?timezone=UTC%2B2",
		"/api/v1/admin/reports/projects?timezone=-05:30&startDate=2025-07-01",
	} {
		rec := env.do(t, http.MethodGet, path, "admin", "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, body = %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestReportsHandler_Projects(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedReports(t, env)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/reports/projects?timezone=UTC&startDate=2025-07-01&endDate=2025-07-31", "admin", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d %s", rec.Code, rec.Body.String())
	}
	var rows []dto.ProjectSummaryResponse
	decode(t, rec, &rows)

	if len(rows) != 3 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].ProjectName != "Beta" || rows[0].HoursRange != 0 {
		t.Errorf("first row = %+v", rows[0])
	}
	if rows[1].ProjectName != "Alpha" || rows[1].HoursWeek != 1 || rows[1].HoursRange != 2 {
		t.Errorf("alpha row = %+v", rows[1])
	}
	if rows[1].LastEntryAt == nil || *rows[1].LastEntryAt != "2025-08-18T09:00:00" {
		t.Errorf("alpha lastEntryAt = %v", rows[1].LastEntryAt)
	}
	if rows[2].ProjectName != "Empty" || rows[2].LastEntryAt != nil {
		t.Errorf("empty row = %+v", rows[2])
	}
}

func TestReportsHandler_LegacySummary(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedReports(t, env)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/projects/summary?tz=UTC&from=2025-07-01T00:00:00&to=2025-09-01T00:00", "admin", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d %s", rec.Code, rec.Body.String())
	}
	var rows []dto.ProjectSummaryResponse
	decode(t, rec, &rows)

	if len(rows) != 3 || rows[1].ProjectName != "Alpha" || rows[1].HoursRange != 3 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestReportsHandler_ProjectsCSV(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedReports(t, env)

	rec := env.do(t, http.MethodGet, "/api/v1/admin/reports/projects.csv?startDate=2025-08-01&endDate=2025-08-31", "admin", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != "project_id,project_name,hours_week,hours_range,entries_week,last_entry_at" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], ",Beta,1.5,1.5,1,2025-08-18T10:00:00") {
		t.Errorf("beta line = %q", lines[1])
	}
	if !strings.HasSuffix(lines[3], ",Empty,0.0,0.0,0,") {
		t.Errorf("empty line = %q", lines[3])
	}
}
