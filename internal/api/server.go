// SPDX-License-Identifier: MIT

// Package api provides the HTTP server for the checkings service:
// validation endpoints, schema CRUD, report retrieval and the
// health/metrics surface.
package api

import (
	"net/http"
	"os"
	"time"

	"github.com/checkings/checkings/internal/audit"
	"github.com/checkings/checkings/internal/cache"
	"github.com/checkings/checkings/internal/config"
	"github.com/checkings/checkings/internal/engine"
	"github.com/checkings/checkings/internal/health"
	"github.com/checkings/checkings/internal/ratelimit"
	"github.com/checkings/checkings/internal/registry"
	"github.com/checkings/checkings/internal/report"
)

// defaultMaxBody bounds request bodies. Large batches stay well under
// this; anything bigger is abuse, not a payload.
const defaultMaxBody = 4 << 20 // 4 MiB

// Server is the HTTP API server. It is immutable after New; runtime
// tunables reach it through the engine, which the reload listener
// updates directly.
type Server struct {
	cfg      config.AppConfig
	engine   *engine.Engine
	store    registry.Store
	reports  *report.Writer
	verdicts cache.Verdicts
	health   *health.Manager
	audit    *audit.Logger
	limiter  *ratelimit.Limiter

	token     string
	version   string
	startTime time.Time
	maxBody   int64
}

// Options carries the server's collaborators.
type Options struct {
	Config   config.AppConfig
	Engine   *engine.Engine
	Store    registry.Store
	Reports  *report.Writer
	Verdicts cache.Verdicts
	Health   *health.Manager
	Audit    *audit.Logger
	// Limiter guards the validation endpoints per client; nil disables.
	Limiter *ratelimit.Limiter
	Version string
}

// New creates the API server. The API token comes from the
// CHECKINGS_API_TOKEN environment variable; when unset the API is open,
// which suits single-node and development use.
func New(opts Options) *Server {
	s := &Server{
		cfg:       opts.Config,
		engine:    opts.Engine,
		store:     opts.Store,
		reports:   opts.Reports,
		verdicts:  opts.Verdicts,
		health:    opts.Health,
		audit:     opts.Audit,
		limiter:   opts.Limiter,
		token:     os.Getenv(config.EnvAPIToken),
		version:   opts.Version,
		startTime: time.Now(),
		maxBody:   defaultMaxBody,
	}
	if s.audit == nil {
		s.audit = audit.NewLogger()
	}
	if s.health == nil {
		s.health = health.NewManager(opts.Version)
	}
	return s
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// allowClient applies the per-client validation rate limit. It is a
// no-op when limiting is disabled.
func (s *Server) allowClient(r *http.Request) bool {
	if s.limiter == nil {
		return true
	}
	if s.limiter.Allow(ratelimit.GetClientIP(r)) {
		return true
	}
	s.audit.RateLimitExceeded(r.RemoteAddr, r.URL.Path)
	return false
}
