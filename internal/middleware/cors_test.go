package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	handler := CORS(DefaultCORSConfig([]string{"https://app.example.com", "*.internal.test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed bool
	}{
		{name: "same origin", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "exact match", method: http.MethodGet, origin: "https://app.example.com", wantStatus: http.StatusOK, wantAllowed: true},
		{name: "case insensitive", method: http.MethodGet, origin: "HTTPS://APP.EXAMPLE.COM", wantStatus: http.StatusOK, wantAllowed: true},
		{name: "wildcard subdomain", method: http.MethodGet, origin: "https://ui.internal.test", wantStatus: http.StatusOK, wantAllowed: true},
		{name: "wildcard needs a label", method: http.MethodGet, origin: "https://internal.test", wantStatus: http.StatusOK},
		{name: "lookalike domain", method: http.MethodGet, origin: "https://evilinternal.test", wantStatus: http.StatusOK},
		{name: "preflight allowed", method: http.MethodOptions, origin: "https://app.example.com", wantStatus: http.StatusNoContent, wantAllowed: true},
		{name: "preflight denied", method: http.MethodOptions, origin: "https://evil.example.org", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, "/api/v1/projects", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.wantAllowed && got != tt.origin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.origin)
			}
			if !tt.wantAllowed && got != "" {
				t.Errorf("Allow-Origin = %q, want empty", got)
			}
		})
	}
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	t.Parallel()

	handler := CORS(DefaultCORSConfig(nil))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
