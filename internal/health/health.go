// SPDX-License-Identifier: MIT

// Package health provides health and readiness check functionality for
// production deployments. It supports Docker HEALTHCHECK and Kubernetes
// probes with detailed component status.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/checkings/checkings/internal/cache"
	"github.com/checkings/checkings/internal/log"
	"github.com/checkings/checkings/internal/registry"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// checkTimeout bounds any single component check so one wedged
// dependency cannot stall the probe endpoints.
const checkTimeout = 2 * time.Second

var severity = map[Status]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

func worse(a, b Status) Status {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse represents the full health check response
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs registered component checks and serves the probe
// endpoints. Checkers are registered during startup; Manager is not
// safe for concurrent registration after serving begins.
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates a new health check manager
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a health checker to the manager
func (m *Manager) RegisterChecker(checker Checker) {
	m.checkers = append(m.checkers, checker)
}

// runChecks executes every registered checker, each under its own
// timeout, and folds the results into an overall status.
func (m *Manager) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	results := make(map[string]CheckResult, len(m.checkers))
	overall := StatusHealthy

	for _, c := range m.checkers {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		result := c.Check(cctx)
		cancel()

		results[c.Name()] = result
		overall = worse(overall, result.Status)
	}
	return results, overall
}

// Health performs a liveness check. The process being able to answer is
// the signal; component checks are only included when verbose.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
	}
	if verbose && len(m.checkers) > 0 {
		resp.Checks, resp.Status = m.runChecks(ctx)
	}
	return resp
}

// Ready performs a readiness check: no registered component may be
// unhealthy. Degraded components keep the service ready; they only cost
// performance, not correctness.
func (m *Manager) Ready(ctx context.Context, _ bool) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}
	if len(m.checkers) == 0 {
		return resp
	}

	resp.Checks, resp.Status = m.runChecks(ctx)
	resp.Ready = resp.Status != StatusUnhealthy
	return resp
}

// ServeHealth handles HTTP health check requests
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "health")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Health(r.Context(), verbose)

	// Liveness always answers 200; a live process that cannot serve is
	// the readiness probe's business.
	writeProbe(w, http.StatusOK, resp, logger)

	logger.Debug().
		Str("event", "health.checked").
		Str("status", string(resp.Status)).
		Bool("verbose", verbose).
		Msg("health check performed")
}

// ServeReady handles HTTP readiness check requests
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Ready(r.Context(), verbose)

	code := http.StatusOK
	if !resp.Ready {
		code = http.StatusServiceUnavailable
	}
	writeProbe(w, code, resp, logger)

	logger.Debug().
		Str("event", "readiness.checked").
		Str("status", string(resp.Status)).
		Bool("ready", resp.Ready).
		Bool("verbose", verbose).
		Msg("readiness check performed")
}

func writeProbe(w http.ResponseWriter, code int, v any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Str("event", "health.encode_error").Msg("failed to encode probe response")
	}
}

// ReportDirChecker verifies the report directory exists and is writable.
type ReportDirChecker struct {
	path string
}

// NewReportDirChecker creates a checker for the report directory.
func NewReportDirChecker(path string) *ReportDirChecker {
	return &ReportDirChecker{path: path}
}

func (c *ReportDirChecker) Name() string {
	return "report_dir"
}

func (c *ReportDirChecker) Check(ctx context.Context) CheckResult {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusUnhealthy,
				Error:   "directory not found",
				Message: c.path,
			}
		}
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if !info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "expected directory, got file"}
	}

	// Reports are written atomically via temp files, so writability of
	// the directory is the thing to probe.
	probe := filepath.Join(c.path, ".write_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: "directory not writable: " + err.Error()}
	}
	_ = os.Remove(probe)

	return CheckResult{Status: StatusHealthy, Message: "directory writable"}
}

// StoreChecker verifies the schema registry answers queries.
type StoreChecker struct {
	store registry.Store
}

// NewStoreChecker creates a checker for the schema registry.
func NewStoreChecker(store registry.Store) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string {
	return "schema_store"
}

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	schemas, err := c.store.List(ctx)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: strconv.Itoa(len(schemas)) + " schemas registered",
	}
}

// CacheChecker verifies the verdict cache is reachable. An unreachable
// cache only costs revalidation, so it degrades instead of failing
// readiness.
type CacheChecker struct {
	verdicts cache.Verdicts
}

// NewCacheChecker creates a checker for the verdict cache.
func NewCacheChecker(verdicts cache.Verdicts) *CacheChecker {
	return &CacheChecker{verdicts: verdicts}
}

func (c *CacheChecker) Name() string {
	return "verdict_cache"
}

func (c *CacheChecker) Check(ctx context.Context) CheckResult {
	if err := c.verdicts.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Error:   err.Error(),
			Message: "validating without verdict cache",
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "cache reachable"}
}
