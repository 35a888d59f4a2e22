// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/checkings/checkings/internal/api/middleware"
)

// Handler builds the full router with the canonical middleware stack.
func (s *Server) Handler() http.Handler {
	tracingService := ""
	if s.cfg.OTLPEndpoint != "" {
		tracingService = "checkings-api"
	}

	// The ingress shed rides an order of magnitude above the per-client
	// validation budget; with limiting off it falls back to the stack
	// default.
	globalLimit := 0
	if s.cfg.RateLimit > 0 {
		globalLimit = int(s.cfg.RateLimit * 600)
	}

	r := middleware.NewRouter(middleware.StackConfig{
		TracingService: tracingService,
		GlobalLimit:    globalLimit,
	})

	// Probes and metrics stay outside the auth boundary.
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/validate", s.handleValidate)
		r.Post("/validate/batch", s.handleValidateBatch)

		r.Route("/schemas", func(r chi.Router) {
			r.Get("/", s.handleListSchemas)
			r.Post("/", s.handleCreateSchema)
			r.Get("/{id}", s.handleGetSchema)
			r.Put("/{id}", s.handleUpdateSchema)
			r.Delete("/{id}", s.handleDeleteSchema)
		})

		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/status", s.handleStatus)
	})

	return r
}
