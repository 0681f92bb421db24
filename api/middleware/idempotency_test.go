package middleware

import (
	"net/http"
	"testing"
	"time"
)

func TestRouteTTLMatchesProtectedRoutes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		method  string
		pattern string
		wantTTL time.Duration
		wantOK  bool
	}{
		{http.MethodPost, "/api/v1/transactions", ledgerIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/transactions/", ledgerIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/transactions/{transactionId}/void", ledgerIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/sales/{saleId}/returns", ledgerIdempotencyTTL, true},
		{http.MethodPut, "/api/v1/purchases/{purchaseId}", ledgerIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/inventory/adjustments", ledgerIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/reports/z", ledgerIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/users/", defaultIdempotencyTTL, true},
		{http.MethodPost, "/api/v1/products/", defaultIdempotencyTTL, true},
		{http.MethodGet, "/api/v1/transactions", 0, false},
		{http.MethodPost, "/api/v1/categories/", 0, false},
		{http.MethodPut, "/api/v1/transactions/{transactionId}/totals", 0, false},
	}

	for _, tc := range cases {
		ttl, ok := routeTTL(tc.method, tc.pattern)
		if ok != tc.wantOK {
			t.Fatalf("routeTTL(%s %s) matched=%v, want %v", tc.method, tc.pattern, ok, tc.wantOK)
		}
		if ttl != tc.wantTTL {
			t.Fatalf("routeTTL(%s %s) ttl=%v, want %v", tc.method, tc.pattern, ttl, tc.wantTTL)
		}
	}
}

func TestAuthRateLimitPolicyKeys(t *testing.T) {
	t.Parallel()

	policy := NewAuthRateLimitPolicy(" Login ", time.Minute, 20, 5)
	if !policy.enabled() {
		t.Fatal("policy with limits should be enabled")
	}
	if got := policy.ipKey("10.0.0.1"); got != "rl:ip:login:10.0.0.1" {
		t.Fatalf("ipKey = %q", got)
	}
	if got := policy.emailKey("abc123"); got != "rl:email:login:abc123" {
		t.Fatalf("emailKey = %q", got)
	}

	disabled := NewAuthRateLimitPolicy("login", 0, 20, 5)
	if disabled.enabled() {
		t.Fatal("policy without a window should be disabled")
	}
}
