package auth

import (
	"context"

	"github.com/timeledger/timeledger/internal/model"
)

type contextKey string

const authContextKey contextKey = "auth_context"

// ContextWithAuth stores the authenticated caller on ctx.
func ContextWithAuth(ctx context.Context, auth *model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, auth)
}

// AuthFromContext returns the authenticated caller, or nil.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	auth, _ := ctx.Value(authContextKey).(*model.AuthContext)
	return auth
}

// UserIDFromContext returns the caller's user ID, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	if auth := AuthFromContext(ctx); auth != nil {
		return auth.UserID
	}
	return ""
}

// KeyIDFromContext returns the caller's key ID, or "" when unauthenticated.
func KeyIDFromContext(ctx context.Context) string {
	if auth := AuthFromContext(ctx); auth != nil {
		return auth.KeyID
	}
	return ""
}
