package dto

import "github.com/timeledger/timeledger/internal/model"

// TopProjectResponse is one entry of the overview's top projects.
type TopProjectResponse struct {
	ProjectID   int64   `json:"projectId"`
	ProjectName string  `json:"projectName"`
	Hours       float64 `json:"hours"`
}

// OverviewResponse is the admin overview report.
type OverviewResponse struct {
	TotalProjects       int64                `json:"totalProjects"`
	HoursToday          float64              `json:"hoursToday"`
	HoursThisWeek       float64              `json:"hoursThisWeek"`
	TopProjectsThisWeek []TopProjectResponse `json:"topProjectsThisWeek"`
}

// ProjectSummaryResponse is one row of the per-project summary.
type ProjectSummaryResponse struct {
	ProjectID   int64   `json:"projectId"`
	ProjectName string  `json:"projectName"`
	HoursWeek   float64 `json:"hoursWeek"`
	HoursRange  float64 `json:"hoursRange"`
	EntriesWeek int64   `json:"entriesWeek"`
	LastEntryAt *string `json:"lastEntryAt"`
}

// ToOverviewResponse converts an overview report to its DTO.
func ToOverviewResponse(r *model.OverviewReport) OverviewResponse {
	top := make([]TopProjectResponse, 0, len(r.TopProjectsThisWeek))
	for _, p := range r.TopProjectsThisWeek {
		top = append(top, TopProjectResponse{ProjectID: p.ProjectID, ProjectName: p.ProjectName, Hours: p.Hours})
	}
	return OverviewResponse{
		TotalProjects:       r.TotalProjects,
		HoursToday:          r.HoursToday,
		HoursThisWeek:       r.HoursThisWeek,
		TopProjectsThisWeek: top,
	}
}

// ToProjectSummaryResponses converts summary rows, keeping their order.
func ToProjectSummaryResponses(rows []model.ProjectSummary) []ProjectSummaryResponse {
	out := make([]ProjectSummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProjectSummaryResponse{
			ProjectID:   r.ProjectID,
			ProjectName: r.ProjectName,
			HoursWeek:   r.HoursWeek,
			HoursRange:  r.HoursRange,
			EntriesWeek: r.EntriesWeek,
			LastEntryAt: formatLocalPtr(r.LastEntryAt),
		})
	}
	return out
}
