package dto

import (
	"time"

	"github.com/timeledger/timeledger/internal/model"
)

// CreateTimeEntryRequest represents the request body for logging work.
// StartTime and EndTime are ISO local datetimes without an offset.
type CreateTimeEntryRequest struct {
	ProjectID   int64  `json:"projectId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// TimeEntryResponse represents a time entry in API responses.
type TimeEntryResponse struct {
	ID              int64     `json:"id"`
	ProjectID       int64     `json:"projectId"`
	ProjectName     string    `json:"projectName"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       string    `json:"startTime"`
	EndTime         string    `json:"endTime"`
	DurationMinutes int64     `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToTimeEntryResponse converts a TimeEntry model to its DTO.
func ToTimeEntryResponse(e *model.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:              e.ID,
		ProjectID:       e.ProjectID,
		ProjectName:     e.ProjectName,
		Title:           e.Title,
		Description:     e.Description,
		StartTime:       FormatLocal(e.StartTime),
		EndTime:         FormatLocal(e.EndTime),
		DurationMinutes: e.DurationMinutes,
		CreatedAt:       e.CreatedAt,
	}
}
