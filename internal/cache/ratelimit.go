package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitKeyPrefix = "ratelimit:apikey:"
	// Buckets idle for longer than this are full again and can be dropped.
	rateLimitIdleTTL = 2 * time.Minute
)

// RateLimitResult is the outcome of one token-bucket check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int64
	// ResetAt is when the bucket will be full again.
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucket refills at ARGV[1] tokens per millisecond up to ARGV[2] and
// takes one token when available. Returns {allowed, retry_ms, remaining, full_ms}.
var tokenBucket = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
if now > ts then
	tokens = math.min(burst, tokens + (now - ts) * rate)
end

local allowed = 0
local retry = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	retry = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])

return {allowed, retry, math.floor(tokens), math.ceil((burst - tokens) / rate)}
`)

// CheckAPIRateLimit takes one token from the key's bucket. A zero rate
// means unlimited and never touches Redis.
func (c *Cache) CheckAPIRateLimit(ctx context.Context, keyID string, ratePerMinute, burst int) (*RateLimitResult, error) {
	now := time.Now()
	if ratePerMinute <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst), ResetAt: now}, nil
	}

	perMilli := float64(ratePerMinute) / float64(time.Minute/time.Millisecond)
	res, err := tokenBucket.Run(ctx, c.client, []string{rateLimitKey(keyID)},
		perMilli, burst, now.UnixMilli(), rateLimitIdleTTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run token bucket: %w", err)
	}
	if len(res) != 4 {
		return nil, fmt.Errorf("token bucket returned %d values", len(res))
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(res[3]) * time.Millisecond),
	}, nil
}

func rateLimitKey(keyID string) string {
	return rateLimitKeyPrefix + keyID
}
