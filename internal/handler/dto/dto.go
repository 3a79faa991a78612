// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/timeledger/timeledger/internal/calendar"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status int    `json:"status"`
	Path   string `json:"path"`
}

// FormatLocal renders a naive local datetime in ISO-8601 without offset.
func FormatLocal(t time.Time) string {
	return t.Format(calendar.LocalDateTimeLayout)
}

func formatLocalPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatLocal(*t)
	return &s
}
