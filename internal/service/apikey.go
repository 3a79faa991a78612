package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/timeledger/timeledger/internal/auth"
	"github.com/timeledger/timeledger/internal/model"
	"github.com/timeledger/timeledger/internal/store"
)

// APIKeyService manages a user's API keys.
type APIKeyService struct {
	store       APIKeyStore
	revocations RevocationCache
	env         string
	logger      *slog.Logger
}

// NewAPIKeyService creates a new APIKeyService minting keys for env.
// revocations may be nil when no auth cache is in use.
func NewAPIKeyService(keys APIKeyStore, revocations RevocationCache, env string, logger *slog.Logger) *APIKeyService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &APIKeyService{store: keys, revocations: revocations, env: env, logger: logger}
}

// CreateAPIKeyInput defines input for creating an API key.
type CreateAPIKeyInput struct {
	Name          string
	Scopes        []string
	RateLimitTier string
}

// IssuedAPIKey is a stored key plus its plaintext, which is never persisted.
type IssuedAPIKey struct {
	Key       *model.APIKey
	Plaintext string
}

// RotatedAPIKey describes a completed rotation.
type RotatedAPIKey struct {
	OldKeyID  string
	RevokedAt time.Time
	New       *IssuedAPIKey
}

// Create mints and stores a key for userID. Scopes default to read.
func (s *APIKeyService) Create(ctx context.Context, userID string, input CreateAPIKeyInput) (*IssuedAPIKey, error) {
	scopes := input.Scopes
	if len(scopes) == 0 {
		scopes = []string{model.ScopeRead}
	}
	for _, scope := range scopes {
		if !model.IsValidScope(scope) {
			return nil, withDetail(ErrInvalidScope, "Invalid scope: %s. Valid scopes: read, write, admin", scope)
		}
	}

	tier := input.RateLimitTier
	if tier == "" {
		tier = model.TierFree
	}
	if _, ok := model.TierConfigs[tier]; !ok {
		return nil, withDetail(ErrInvalidTier, "Invalid rate limit tier: %s", tier)
	}

	return s.issue(ctx, &model.APIKey{
		UserID:        userID,
		Scopes:        scopes,
		RateLimitTier: tier,
		Name:          input.Name,
	})
}

// List returns all of the user's keys, revoked ones included.
func (s *APIKeyService) List(ctx context.Context, userID string) ([]*model.APIKey, error) {
	keys, err := s.store.ListAPIKeysByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// Revoke revokes one of the user's active keys.
func (s *APIKeyService) Revoke(ctx context.Context, userID, keyID string) error {
	if _, err := s.activeKey(ctx, userID, keyID); err != nil {
		return err
	}
	if err := s.store.RevokeAPIKey(ctx, keyID); err != nil {
		if errors.Is(err, store.ErrAPIKeyNotFound) {
			return withDetail(ErrAPIKeyNotFound, "API key not found or already revoked")
		}
		return fmt.Errorf("revoke api key: %w", err)
	}
	s.forgetCached(ctx, keyID)
	return nil
}

// Rotate issues a replacement with the same name, scopes and tier, then
// revokes the old key.
func (s *APIKeyService) Rotate(ctx context.Context, userID, keyID string) (*RotatedAPIKey, error) {
	old, err := s.activeKey(ctx, userID, keyID)
	if err != nil {
		return nil, err
	}

	issued, err := s.issue(ctx, &model.APIKey{
		UserID:        old.UserID,
		Scopes:        old.Scopes,
		RateLimitTier: old.RateLimitTier,
		Name:          old.Name,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.RevokeAPIKey(ctx, old.ID); err != nil {
		return nil, fmt.Errorf("revoke rotated api key: %w", err)
	}
	s.forgetCached(ctx, old.ID)

	return &RotatedAPIKey{OldKeyID: old.ID, RevokedAt: time.Now().UTC(), New: issued}, nil
}

// forgetCached is best effort: the store is already authoritative.
func (s *APIKeyService) forgetCached(ctx context.Context, keyID string) {
	if s.revocations == nil {
		return
	}
	if err := s.revocations.MarkKeyRevoked(ctx, keyID); err != nil {
		s.logger.Warn("failed to invalidate cached auth context",
			slog.String("key_id", keyID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *APIKeyService) issue(ctx context.Context, key *model.APIKey) (*IssuedAPIKey, error) {
	generated, err := auth.GenerateAPIKey(s.env)
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	key.ID = ulid.Make().String()
	key.KeyHash = generated.Hash
	key.KeyPrefix = generated.Prefix
	key.CreatedAt = time.Now().UTC()

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &IssuedAPIKey{Key: key, Plaintext: generated.Plaintext}, nil
}

// activeKey loads a key owned by userID. Foreign and revoked keys are
// reported as not found.
func (s *APIKeyService) activeKey(ctx context.Context, userID, keyID string) (*model.APIKey, error) {
	notFound := withDetail(ErrAPIKeyNotFound, "API key not found or already revoked")

	key, err := s.store.GetAPIKeyByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, store.ErrAPIKeyNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("get api key: %w", err)
	}
	if key.UserID != userID || key.IsRevoked() {
		return nil, notFound
	}
	return key, nil
}
