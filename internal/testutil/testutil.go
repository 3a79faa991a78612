// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/timeledger/timeledger/internal/migrate"
	"github.com/timeledger/timeledger/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates the given migrations, in order.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool, names ...string) error {
	for _, name := range names {
		if err := migrate.Reset(ctx, pool, name); err != nil {
			return err
		}
	}
	return nil
}

// ResetAllSchemas recreates every table from scratch.
func ResetAllSchemas(ctx context.Context, pool *pgxpool.Pool) error {
	return ResetSchema(ctx, pool, "users", "api_keys", "projects", "time_entries")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// NewTestAPIKey creates a test API key with sensible defaults.
func NewTestAPIKey(t testing.TB, userID string) *model.APIKey {
	t.Helper()
	return &model.APIKey{
		ID:            UniqueID("key"),
		UserID:        userID,
		KeyHash:       UniqueID("hash"),
		KeyPrefix:     "tl_test_",
		Scopes:        []string{model.ScopeRead, model.ScopeWrite},
		RateLimitTier: model.TierFree,
		Name:          "Test Key",
		CreatedAt:     time.Now().UTC(),
	}
}

// NewTestUser creates a test user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	id := UniqueID("user")
	return &model.User{ID: id, Email: id + "@example.test", CreatedAt: time.Now().UTC()}
}

// NewTestEntry builds an entry of the given length starting at start.
func NewTestEntry(t testing.TB, projectID int64, userID string, start time.Time, minutes int) *model.TimeEntry {
	t.Helper()
	return model.NewTimeEntry(projectID, userID, "work", "", start, start.Add(time.Duration(minutes)*time.Minute))
}

var seq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano()%1e9, seq.Add(1))
}
