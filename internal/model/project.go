package model

import (
	"strconv"
	"time"
)

// Project limits.
const (
	MaxProjectNameLength        = 50
	MaxProjectDescriptionLength = 2048
)

// Project groups time entries. Names are unique.
type Project struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// CachedProject is the Redis hash form of a project.
type CachedProject struct {
	ID          string `redis:"id"`
	Name        string `redis:"name"`
	Description string `redis:"description"`
	CreatedAt   string `redis:"created_at"` // Unix seconds
}

// ToCached converts a project to its cache representation.
func (p *Project) ToCached() CachedProject {
	return CachedProject{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   strconv.FormatInt(p.CreatedAt.Unix(), 10),
	}
}

// ToProject converts a cached hash back into a project.
func (c CachedProject) ToProject() (*Project, error) {
	id, err := strconv.ParseInt(c.ID, 10, 64)
	if err != nil {
		return nil, err
	}
	p := &Project{ID: id, Name: c.Name, Description: c.Description}
	if c.CreatedAt != "" {
		ts, err := strconv.ParseInt(c.CreatedAt, 10, 64)
		if err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(ts, 0).UTC()
	}
	return p, nil
}
