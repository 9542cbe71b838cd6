package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowEnforcesBudget(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()

	if !rl.Allow("c1") || !rl.Allow("c1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("c1") {
		t.Fatal("third request within the window should be rejected")
	}
	// A different key carries its own budget.
	if !rl.Allow("c2") {
		t.Fatal("fresh client should pass")
	}
}

func TestActiveClients(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 10})
	defer rl.Stop()

	if n := rl.ActiveClients(); n != 0 {
		t.Fatalf("expected 0 tracked clients, got %d", n)
	}
	rl.Allow("a")
	rl.Allow("b")
	rl.Allow("a")
	if n := rl.ActiveClients(); n != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", n)
	}
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	handler := rl.Middleware(func(r *http.Request) string { return "same" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After header, got %q", rec.Header().Get("Retry-After"))
	}
}
