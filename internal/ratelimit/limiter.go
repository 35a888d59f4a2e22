// SPDX-License-Identifier: MIT

// Package ratelimit guards the validation engine with token buckets: a
// global bucket that caps overall throughput and one bucket per client
// so a single noisy caller cannot starve the rest.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "checkings",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total rate limit rejections",
	},
	[]string{"limit_type"},
)

// Config holds rate limiting configuration.
type Config struct {
	GlobalRate  rate.Limit // requests per second across all clients
	GlobalBurst int

	PerClientRate  rate.Limit
	PerClientBurst int

	// CleanupInterval bounds how long idle per-client buckets live.
	CleanupInterval time.Duration
}

// DefaultConfig returns limits suited to a single validation node.
func DefaultConfig() Config {
	return Config{
		GlobalRate:  100,
		GlobalBurst: 200,

		PerClientRate:  10,
		PerClientBurst: 20,

		CleanupInterval: 5 * time.Minute,
	}
}

// Limiter applies global and per-client rate limits.
type Limiter struct {
	config Config

	global    *rate.Limiter
	perClient map[string]*rate.Limiter
	mu        sync.RWMutex

	lastCleanup time.Time
}

// New creates a limiter with the given config.
func New(config Config) *Limiter {
	return &Limiter{
		config:      config,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		perClient:   make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether a request from client may proceed. The global
// bucket is drained first so a rejected client does not consume its own
// bucket for nothing.
func (l *Limiter) Allow(client string) bool {
	if !l.global.Allow() {
		rateLimitExceeded.WithLabelValues("global").Inc()
		return false
	}

	if !l.clientLimiter(client).Allow() {
		rateLimitExceeded.WithLabelValues("per_client").Inc()
		return false
	}

	l.maybeCleanup()
	return true
}

// clientLimiter returns the bucket for one client, creating it on first
// sight.
func (l *Limiter) clientLimiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.perClient[client]
	if !exists {
		limiter = rate.NewLimiter(l.config.PerClientRate, l.config.PerClientBurst)
		l.perClient[client] = limiter
	}
	return limiter
}

// SetPerClientLimit applies reloaded per-client limits. Existing buckets
// are dropped so every client picks up the new rate at once.
func (l *Limiter) SetPerClientLimit(r rate.Limit, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r > 0 {
		l.config.PerClientRate = r
	}
	if burst > 0 {
		l.config.PerClientBurst = burst
	}
	l.perClient = make(map[string]*rate.Limiter)
}

// maybeCleanup drops all per-client buckets once the cleanup interval
// has passed. Recreated buckets start full, which only ever errs in the
// client's favor.
func (l *Limiter) maybeCleanup() {
	if time.Since(l.lastCleanup) < l.config.CleanupInterval {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.perClient = make(map[string]*rate.Limiter)
	l.lastCleanup = time.Now()
}

// GetClientIP extracts the originating client IP from the request,
// preferring proxy headers over the socket address.
func GetClientIP(r *http.Request) string {
	// X-Forwarded-For may carry a chain: "client, proxy1, proxy2".
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx > 0 {
			xff = xff[:idx]
		}
		if xff = strings.TrimSpace(xff); xff != "" {
			return xff
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
