package middleware

import (
	"net/http"

	"github.com/timeledger/timeledger/internal/auth"
	"github.com/timeledger/timeledger/internal/model"
)

// RequireScope enforces that the caller holds scope. Admin implies every
// scope. Must be applied after Auth.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			if !authCtx.HasScope(scope) {
				writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions. Required scope: "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireRead() func(http.Handler) http.Handler  { return RequireScope(model.ScopeRead) }
func RequireWrite() func(http.Handler) http.Handler { return RequireScope(model.ScopeWrite) }
func RequireAdmin() func(http.Handler) http.Handler { return RequireScope(model.ScopeAdmin) }
