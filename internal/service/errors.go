// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/timeledger/timeledger/internal/calendar"
)

// Service errors.
var (
	ErrInvalidTimezone   = calendar.ErrInvalidTimezone
	ErrInvalidDate       = calendar.ErrParse
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectNameExists = errors.New("project name already exists")
	ErrProjectInUse      = errors.New("project has time entries")
	ErrInvalidName       = errors.New("invalid project name")
	ErrInvalidTimeRange  = errors.New("invalid time range")
	ErrInvalidTitle      = errors.New("invalid title")
	ErrDescriptionLength = errors.New("description too long")
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrInvalidScope      = errors.New("invalid scope")
	ErrInvalidTier       = errors.New("invalid rate limit tier")
	ErrAPIKeyNotFound    = errors.New("api key not found")
)

// detailError carries a client-facing message and matches its sentinel
// through errors.Is.
type detailError struct {
	sentinel error
	msg      string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.sentinel }

func withDetail(sentinel error, format string, args ...any) error {
	return &detailError{sentinel: sentinel, msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing message carried by err, or fallback
// when err has none.
func Message(err error, fallback string) string {
	var de *detailError
	if errors.As(err, &de) {
		return de.msg
	}
	return fallback
}
