// Package store holds the sentinel errors shared by every storage backend.
package store

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectNameExists = errors.New("project name already exists")
	ErrProjectInUse      = errors.New("project has time entries")
	ErrTimeEntryNotFound = errors.New("time entry not found")
	ErrAPIKeyNotFound    = errors.New("API key not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailExists       = errors.New("email already exists")
)
