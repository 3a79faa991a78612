package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/timeledger/timeledger/internal/auth"
	"github.com/timeledger/timeledger/internal/model"
)

func TestRequireScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		scopes     []string
		required   string
		anonymous  bool
		wantStatus int
	}{
		{name: "read allows read", scopes: []string{model.ScopeRead}, required: model.ScopeRead, wantStatus: http.StatusOK},
		{name: "write allows write", scopes: []string{model.ScopeWrite}, required: model.ScopeWrite, wantStatus: http.StatusOK},
		{name: "admin implies read", scopes: []string{model.ScopeAdmin}, required: model.ScopeRead, wantStatus: http.StatusOK},
		{name: "admin implies write", scopes: []string{model.ScopeAdmin}, required: model.ScopeWrite, wantStatus: http.StatusOK},
		{name: "read denied write", scopes: []string{model.ScopeRead}, required: model.ScopeWrite, wantStatus: http.StatusForbidden},
		{name: "write denied admin", scopes: []string{model.ScopeRead, model.ScopeWrite}, required: model.ScopeAdmin, wantStatus: http.StatusForbidden},
		{name: "no scopes", scopes: nil, required: model.ScopeRead, wantStatus: http.StatusForbidden},
		{name: "anonymous", anonymous: true, required: model.ScopeRead, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := RequireScope(tt.required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if !tt.anonymous {
				req = req.WithContext(auth.ContextWithAuth(req.Context(), &model.AuthContext{
					KeyID:  "key123",
					UserID: "user123",
					Scopes: tt.scopes,
				}))
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
