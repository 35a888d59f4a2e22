// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func fire(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.RemoteAddr = ip
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_ShedsOverBudget(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestLimit: 3, WindowSize: time.Second})(okHandler())

	for i := 0; i < 3; i++ {
		if w := fire(handler, "192.0.2.1:4000"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, w.Code)
		}
	}

	w := fire(handler, "192.0.2.1:4000")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over budget: got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 must carry Retry-After")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(w.Body.String(), "rate_limit_exceeded") {
		t.Errorf("body = %q, want rate_limit_exceeded", w.Body.String())
	}
}

func TestRateLimit_KeysByClientIP(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestLimit: 2, WindowSize: time.Second})(okHandler())

	fire(handler, "192.0.2.1:4000")
	fire(handler, "192.0.2.1:4000")

	if w := fire(handler, "192.0.2.2:4000"); w.Code != http.StatusOK {
		t.Fatalf("fresh IP: got %d, want 200", w.Code)
	}
	if w := fire(handler, "192.0.2.1:4000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("exhausted IP: got %d, want 429", w.Code)
	}
}

func TestAPIRateLimit_DefaultBudget(t *testing.T) {
	handler := APIRateLimit(0)(okHandler())

	for i := 0; i < 50; i++ {
		if w := fire(handler, "192.0.2.9:4000"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, w.Code)
		}
	}
}

func TestAPIRateLimit_HonoursConfiguredBudget(t *testing.T) {
	handler := APIRateLimit(2)(okHandler())

	fire(handler, "192.0.2.7:4000")
	fire(handler, "192.0.2.7:4000")

	if w := fire(handler, "192.0.2.7:4000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("configured budget of 2: third request got %d, want 429", w.Code)
	}
}
