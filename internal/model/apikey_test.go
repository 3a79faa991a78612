package model

import "testing"

func TestHasScope(t *testing.T) {
	testCases := []struct {
		name     string
		scopes   []string
		checkFor string
		want     bool
	}{
		{name: "exact scope", scopes: []string{ScopeRead, ScopeWrite}, checkFor: ScopeRead, want: true},
		{name: "missing scope", scopes: []string{ScopeRead}, checkFor: ScopeWrite, want: false},
		{name: "admin implies read", scopes: []string{ScopeAdmin}, checkFor: ScopeRead, want: true},
		{name: "admin implies write", scopes: []string{ScopeAdmin}, checkFor: ScopeWrite, want: true},
		{name: "read does not imply admin", scopes: []string{ScopeRead, ScopeWrite}, checkFor: ScopeAdmin, want: false},
		{name: "empty scopes", scopes: nil, checkFor: ScopeRead, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key := &APIKey{Scopes: tc.scopes}
			if got := key.HasScope(tc.checkFor); got != tc.want {
				t.Errorf("APIKey.HasScope(%s) = %v, want %v", tc.checkFor, got, tc.want)
			}
			ac := &AuthContext{Scopes: tc.scopes}
			if got := ac.HasScope(tc.checkFor); got != tc.want {
				t.Errorf("AuthContext.HasScope(%s) = %v, want %v", tc.checkFor, got, tc.want)
			}
		})
	}
}

func TestAPIKey_RateLimit(t *testing.T) {
	testCases := []struct {
		tier      string
		wantRPM   int
		wantBurst int
	}{
		{TierFree, 60, 10},
		{TierPro, 600, 50},
		{TierUnlimited, 0, 0},
		{"unknown", 60, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.tier, func(t *testing.T) {
			cfg := (&APIKey{RateLimitTier: tc.tier}).RateLimit()
			if cfg.RequestsPerMinute != tc.wantRPM || cfg.Burst != tc.wantBurst {
				t.Errorf("RateLimit() = %+v, want %d/%d", cfg, tc.wantRPM, tc.wantBurst)
			}
		})
	}
}

func TestIsValidScope(t *testing.T) {
	for _, s := range []string{ScopeRead, ScopeWrite, ScopeAdmin} {
		if !IsValidScope(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	if IsValidScope("webhook") {
		t.Error("webhook should not be a valid scope")
	}
}
