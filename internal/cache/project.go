package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timeledger/timeledger/internal/model"
)

// Cache key prefixes and TTLs.
const (
	projectKeyPrefix    = "project:name:"
	projectNegKeyPrefix = "project:neg:"

	// DefaultProjectTTL is the TTL for cached project data.
	DefaultProjectTTL = 10 * time.Minute

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// projectKey returns the hash key for a project name.
func projectKey(name string) string {
	return projectKeyPrefix + name
}

func projectNegKey(name string) string {
	return projectNegKeyPrefix + name
}

// GetProjectByName retrieves a project from cache by its unique name.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	var cached model.CachedProject
	res := c.client.HGetAll(ctx, projectKey(name))
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(res.Val()) == 0 {
		return nil, ErrCacheMiss
	}
	if err := res.Scan(&cached); err != nil {
		return nil, fmt.Errorf("scan cached project: %w", err)
	}

	project, err := cached.ToProject()
	if err != nil {
		// Corrupted entry, treat as a miss.
		return nil, ErrCacheMiss
	}
	return project, nil
}

// SetProject stores a project in cache keyed by name.
func (c *Cache) SetProject(ctx context.Context, project *model.Project) error {
	key := projectKey(project.Name)
	cached := project.ToCached()

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":          cached.ID,
		"name":        cached.Name,
		"description": cached.Description,
		"created_at":  cached.CreatedAt,
	})
	pipe.Expire(ctx, key, DefaultProjectTTL)
	pipe.Del(ctx, projectNegKey(project.Name))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache project: %w", err)
	}
	return nil
}

// DeleteProject removes a project and its negative entry from cache.
func (c *Cache) DeleteProject(ctx context.Context, name string) error {
	key := projectKey(name)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, projectNegKey(name))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete project from cache: %w", err)
	}
	return nil
}

// IsProjectNegativelyCached checks if a name is in the negative cache.
func (c *Cache) IsProjectNegativelyCached(ctx context.Context, name string) (bool, error) {
	exists, err := c.client.Exists(ctx, projectNegKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}
	return exists > 0, nil
}

// SetProjectNegativeCache marks a project name as not found.
func (c *Cache) SetProjectNegativeCache(ctx context.Context, name string) error {
	err := c.client.SetEx(ctx, projectNegKey(name), "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}
	return nil
}
