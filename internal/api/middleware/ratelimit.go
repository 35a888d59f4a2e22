// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// defaultGlobalLimit is the per-IP request budget for the whole API
// surface when the stack does not configure one.
const defaultGlobalLimit = 600 // requests per minute

// RateLimitConfig configures a sliding-window rate limiter.
type RateLimitConfig struct {
	// RequestLimit is the number of requests allowed per window.
	RequestLimit int
	// WindowSize is the length of the sliding window.
	WindowSize time.Duration
	// KeyFunc derives the limiter key from a request. Defaults to the
	// client IP.
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit builds a sliding-window limiter around httprate. Rejected
// requests get a JSON 429 with a Retry-After hint.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}
	retryAfter := strconv.Itoa(int(cfg.WindowSize.Seconds()))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retryAfter)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","detail":"Too many requests. Please try again later."}`))
		}),
	)
}

// APIRateLimit returns the coarse per-IP limiter for the whole API
// surface. It only sheds floods; the per-client validation budget is
// enforced separately by the handlers. limit <= 0 selects the default.
func APIRateLimit(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = defaultGlobalLimit
	}
	return RateLimit(RateLimitConfig{
		RequestLimit: limit,
		WindowSize:   time.Minute,
	})
}
