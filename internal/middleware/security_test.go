package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		isDev  bool
		header string
		want   string
	}{
		{name: "nosniff", header: "X-Content-Type-Options", want: "nosniff"},
		{name: "frame options", header: "X-Frame-Options", want: "DENY"},
		{name: "referrer", header: "Referrer-Policy", want: "strict-origin-when-cross-origin"},
		{name: "csp", header: "Content-Security-Policy", want: "default-src 'none'; frame-ancestors 'none'"},
		{name: "no store", header: "Cache-Control", want: "no-store"},
		{name: "hsts in production", header: "Strict-Transport-Security", want: "max-age=31536000; includeSubDomains"},
		{name: "no hsts in development", isDev: true, header: "Strict-Transport-Security", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := Security(tt.isDev)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if got := rec.Header().Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	t.Parallel()

	readAll := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := MaxBodySize(16)(readAll)

	tests := []struct {
		name       string
		body       string
		unknownLen bool
		wantStatus int
		wantJSON   bool
	}{
		{name: "small", body: "{}", wantStatus: http.StatusOK},
		{name: "declared too large", body: strings.Repeat("x", 32), wantStatus: http.StatusRequestEntityTooLarge, wantJSON: true},
		{name: "streamed too large", body: strings.Repeat("x", 32), unknownLen: true, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", strings.NewReader(tt.body))
			if tt.unknownLen {
				req.ContentLength = -1
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantJSON && !strings.Contains(rec.Body.String(), `"code":"PAYLOAD_TOO_LARGE"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}
