package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/timeledger/timeledger/internal/auth"
	"github.com/timeledger/timeledger/internal/model"
)

// DefaultMinAuthDuration pads every authentication attempt to a fixed
// minimum so failures and successes take the same time.
const DefaultMinAuthDuration = 200 * time.Millisecond

const lastUsedTimeout = 5 * time.Second

// KeyLookup finds API key candidates by their public prefix.
type KeyLookup interface {
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
}

// AuthCache caches verified auth contexts by a hash of the plaintext key.
type AuthCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Keys   KeyLookup
	// Cache is optional.
	Cache       AuthCache
	MinDuration time.Duration
}

// Auth returns a middleware that authenticates API requests.
// It extracts the API key, verifies it against the stored Argon2id hash
// and injects the auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			defer func() {
				if elapsed := time.Since(startTime); elapsed < cfg.MinDuration {
					time.Sleep(cfg.MinDuration - elapsed)
				}
			}()

			key := extractAPIKey(r)
			if key == "" {
				logAuthFailure(cfg.Logger, r, "missing_key")
				writeAuthError(w, r)
				return
			}

			parsed, err := auth.ParseAPIKey(key)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_format")
				writeAuthError(w, r)
				return
			}

			cacheKey := auth.CacheKey(key)
			if cfg.Cache != nil {
				if authCtx, _ := cfg.Cache.GetAuthContext(r.Context(), cacheKey); authCtx != nil {
					logAuthSuccess(cfg.Logger, r, authCtx, true)
					next.ServeHTTP(w, withAuth(r, authCtx))
					return
				}
			}

			candidates, err := cfg.Keys.GetAPIKeysByPrefix(r.Context(), parsed.Prefix)
			if err != nil {
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, r)
				return
			}

			// Several keys may share a prefix.
			var matched *model.APIKey
			for _, k := range candidates {
				if k.IsRevoked() {
					continue
				}
				if ok, err := auth.VerifySecret(key, k.KeyHash); err == nil && ok {
					matched = k
					break
				}
			}
			if matched == nil {
				logAuthFailure(cfg.Logger, r, "invalid_key")
				writeAuthError(w, r)
				return
			}

			authCtx := &model.AuthContext{
				KeyID:         matched.ID,
				KeyPrefix:     matched.KeyPrefix,
				UserID:        matched.UserID,
				Scopes:        matched.Scopes,
				RateLimitTier: matched.RateLimitTier,
			}
			if cfg.Cache != nil {
				_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)
			}

			go func(ctx context.Context, id string) {
				ctx, cancel := context.WithTimeout(ctx, lastUsedTimeout)
				defer cancel()
				if err := cfg.Keys.UpdateAPIKeyLastUsed(ctx, id); err != nil {
					cfg.Logger.Warn("failed to update key last_used_at",
						slog.String("key_id", id),
						slog.String("error", err.Error()),
					)
				}
			}(context.WithoutCancel(r.Context()), matched.ID)

			logAuthSuccess(cfg.Logger, r, authCtx, false)
			next.ServeHTTP(w, withAuth(r, authCtx))
		})
	}
}

// extractAPIKey reads "Authorization: Bearer <key>" or "X-API-Key: <key>".
func withAuth(r *http.Request, authCtx *model.AuthContext) *http.Request {
	if entry, ok := r.Context().Value(requestLogKey{}).(*requestLog); ok {
		entry.userID = authCtx.UserID
	}
	return r.WithContext(auth.ContextWithAuth(r.Context(), authCtx))
}

func extractAPIKey(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func logAuthSuccess(logger *slog.Logger, r *http.Request, authCtx *model.AuthContext, cacheHit bool) {
	logger.Debug("authentication successful",
		slog.String("key_id", authCtx.KeyID),
		slog.String("key_prefix", authCtx.KeyPrefix),
		slog.String("user_id", authCtx.UserID),
		slog.Bool("cache_hit", cacheHit),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError uses one message for every failure to prevent enumeration.
func writeAuthError(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing API key")
}
