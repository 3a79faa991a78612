package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/timeledger/timeledger/internal/model"
)

const (
	authCtxPrefix     = "auth:ctx:"
	authRevokedPrefix = "auth:revoked:"

	// AuthContextTTL bounds how long a cached context, and a revocation
	// marker, live.
	AuthContextTTL = 5 * time.Minute
)

// cachedAuth is the JSON form of model.AuthContext stored in Redis.
type cachedAuth struct {
	KeyID         string   `json:"key_id"`
	KeyPrefix     string   `json:"key_prefix"`
	UserID        string   `json:"user_id"`
	Scopes        []string `json:"scopes"`
	RateLimitTier string   `json:"rate_limit_tier"`
}

func authCtxKey(cacheKey string) string { return authCtxPrefix + cacheKey }
func revokedKey(keyID string) string    { return authRevokedPrefix + keyID }

// GetAuthContext returns the context cached under cacheKey, or nil on a
// miss. A corrupt entry or a revoked key counts as a miss.
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, authCtxKey(cacheKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get auth context: %w", err)
	}

	var cached cachedAuth
	if json.Unmarshal(data, &cached) != nil || cached.KeyID == "" {
		return nil, nil
	}

	// Contexts are keyed by a hash of the plaintext, so revocation is
	// tracked separately by key ID.
	n, err := c.client.Exists(ctx, revokedKey(cached.KeyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if n > 0 {
		return nil, nil
	}

	return &model.AuthContext{
		KeyID:         cached.KeyID,
		KeyPrefix:     cached.KeyPrefix,
		UserID:        cached.UserID,
		Scopes:        cached.Scopes,
		RateLimitTier: cached.RateLimitTier,
	}, nil
}

// SetAuthContext caches a for AuthContextTTL.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, a *model.AuthContext) error {
	data, err := json.Marshal(cachedAuth{
		KeyID:         a.KeyID,
		KeyPrefix:     a.KeyPrefix,
		UserID:        a.UserID,
		Scopes:        a.Scopes,
		RateLimitTier: a.RateLimitTier,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}
	if err := c.client.Set(ctx, authCtxKey(cacheKey), data, AuthContextTTL).Err(); err != nil {
		return fmt.Errorf("set auth context: %w", err)
	}
	return nil
}

// MarkKeyRevoked makes every cached context for keyID a miss until the
// contexts themselves expire.
func (c *Cache) MarkKeyRevoked(ctx context.Context, keyID string) error {
	if err := c.client.Set(ctx, revokedKey(keyID), "1", AuthContextTTL).Err(); err != nil {
		return fmt.Errorf("mark key revoked: %w", err)
	}
	return nil
}
