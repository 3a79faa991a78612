package model

import "time"

// User owns API keys and time entries.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
