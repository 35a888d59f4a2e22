// SPDX-License-Identifier: MIT

package middleware

import (
	"github.com/go-chi/chi/v5"
)

// StackConfig tunes the shared HTTP ingress stack. The zero value yields
// the full production stack; test servers switch individual layers off.
type StackConfig struct {
	AllowedOrigins []string // CORS allow list; empty selects dev defaults
	CSP            string   // Content-Security-Policy; empty selects DefaultCSP
	TracingService string   // service name on HTTP spans; empty disables tracing
	GlobalLimit    int      // per-IP requests per minute; <=0 selects the default

	DisableCORS     bool
	DisableSecurity bool
	DisableMetrics  bool
	DisableLogging  bool
	DisableLimiter  bool
}

// NewRouter returns a chi router with the shared stack already applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack installs the shared middleware stack on r. The daemon server
// and test servers both come through here so the layering cannot drift.
//
// Order matters: the recoverer sits outermost so a panic anywhere below
// still becomes a 500, request IDs exist before anything logs or traces,
// and the limiter runs innermost so shed requests still show up in the
// access log.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Recoverer)
	r.Use(RequestID)
	if !cfg.DisableCORS {
		r.Use(CORS(cfg.AllowedOrigins))
	}
	if !cfg.DisableSecurity {
		r.Use(SecurityHeaders(cfg.CSP))
	}
	if !cfg.DisableMetrics {
		r.Use(Metrics())
	}
	if cfg.TracingService != "" {
		r.Use(OTelHTTP(cfg.TracingService))
	}
	if !cfg.DisableLogging {
		r.Use(Logging())
	}
	if !cfg.DisableLimiter {
		r.Use(APIRateLimit(cfg.GlobalLimit))
	}
}
