package dto

import (
	"time"

	"github.com/timeledger/timeledger/internal/model"
)

// APIKeyCreateRequest represents the request body for creating an API key.
type APIKeyCreateRequest struct {
	Name          string   `json:"name"`
	Scopes        []string `json:"scopes"`
	RateLimitTier string   `json:"rateLimitTier,omitempty"`
}

// APIKeyResponse represents an API key without its secret.
type APIKeyResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	KeyPrefix     string     `json:"keyPrefix"`
	Scopes        []string   `json:"scopes"`
	RateLimitTier string     `json:"rateLimitTier"`
	LastUsedAt    *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt     *time.Time `json:"revokedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// APIKeyCreateResponse includes the plaintext key, shown once.
type APIKeyCreateResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

// APIKeyRotateResponse describes a rotation.
type APIKeyRotateResponse struct {
	OldKeyID        string               `json:"oldKeyId"`
	OldKeyRevokedAt time.Time            `json:"oldKeyRevokedAt"`
	NewKey          APIKeyCreateResponse `json:"newKey"`
}

// APIKeyListResponse wraps a user's keys.
type APIKeyListResponse struct {
	Keys []APIKeyResponse `json:"keys"`
}

// ToAPIKeyResponse converts an APIKey model to its DTO.
func ToAPIKeyResponse(k *model.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:            k.ID,
		Name:          k.Name,
		KeyPrefix:     k.KeyPrefix,
		Scopes:        k.Scopes,
		RateLimitTier: k.RateLimitTier,
		LastUsedAt:    k.LastUsedAt,
		RevokedAt:     k.RevokedAt,
		CreatedAt:     k.CreatedAt,
	}
}
