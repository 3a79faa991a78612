package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timeledger/timeledger/internal/auth"
	"github.com/timeledger/timeledger/internal/handler/dto"
	"github.com/timeledger/timeledger/internal/service"
)

// APIKeyHandler handles API key management endpoints.
type APIKeyHandler struct {
	svc    *service.APIKeyService
	logger *slog.Logger
}

// NewAPIKeyHandler creates a new APIKeyHandler.
func NewAPIKeyHandler(svc *service.APIKeyService, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/api-keys. The plaintext key is returned once.
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.APIKeyCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	issued, err := h.svc.Create(r.Context(), userID, service.CreateAPIKeyInput{
		Name:          req.Name,
		Scopes:        req.Scopes,
		RateLimitTier: req.RateLimitTier,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("api key created",
		slog.String("key_id", issued.Key.ID),
		slog.String("key_prefix", issued.Key.KeyPrefix),
		slog.String("user_id", userID),
	)
	writeJSON(w, http.StatusCreated, dto.APIKeyCreateResponse{
		APIKeyResponse: dto.ToAPIKeyResponse(issued.Key),
		Key:            issued.Plaintext,
	})
}

// List handles GET /api/v1/api-keys.
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	keys, err := h.svc.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	resp := dto.APIKeyListResponse{Keys: make([]dto.APIKeyResponse, 0, len(keys))}
	for _, k := range keys {
		resp.Keys = append(resp.Keys, dto.ToAPIKeyResponse(k))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Revoke handles DELETE /api/v1/api-keys/{key_id}.
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	keyID := chi.URLParam(r, "key_id")

	if err := h.svc.Revoke(r.Context(), userID, keyID); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("api key revoked", slog.String("key_id", keyID), slog.String("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}

// Rotate handles POST /api/v1/api-keys/{key_id}/rotate.
func (h *APIKeyHandler) Rotate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	keyID := chi.URLParam(r, "key_id")

	rotated, err := h.svc.Rotate(r.Context(), userID, keyID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("api key rotated",
		slog.String("old_key_id", rotated.OldKeyID),
		slog.String("new_key_id", rotated.New.Key.ID),
		slog.String("user_id", userID),
	)
	writeJSON(w, http.StatusOK, dto.APIKeyRotateResponse{
		OldKeyID:        rotated.OldKeyID,
		OldKeyRevokedAt: rotated.RevokedAt,
		NewKey: dto.APIKeyCreateResponse{
			APIKeyResponse: dto.ToAPIKeyResponse(rotated.New.Key),
			Key:            rotated.New.Plaintext,
		},
	})
}
