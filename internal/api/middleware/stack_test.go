// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestApplyStack_FullChainByDefault(t *testing.T) {
	router := NewRouter(StackConfig{AllowedOrigins: []string{"*"}})
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.1.2.3:4321"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("expected X-Request-ID set by the stack")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers applied")
	}
	if w.Header().Get("Content-Security-Policy") != DefaultCSP {
		t.Error("expected default CSP applied")
	}
}

func TestApplyStack_LayersCanBeDisabled(t *testing.T) {
	router := NewRouter(StackConfig{
		DisableCORS:     true,
		DisableSecurity: true,
		DisableLimiter:  true,
	})
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "" {
		t.Error("security headers must be off when disabled")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS headers must be off when disabled")
	}
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("request IDs are not optional")
	}
}

func TestApplyStack_RecovererIsAlwaysOn(t *testing.T) {
	router := NewRouter(StackConfig{})
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from recoverer, got %d", w.Code)
	}
}

func TestSecurityHeaders_HSTSBehindProxy(t *testing.T) {
	handler := SecurityHeaders("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Plain HTTP: no HSTS
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set on plain HTTP")
	}

	// TLS terminated upstream
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS when X-Forwarded-Proto is https")
	}
}
