// SPDX-License-Identifier: MIT

// Package daemon runs the long-lived server process: HTTP listeners,
// graceful shutdown with LIFO cleanup hooks, and config reload wiring.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ShutdownHook performs cleanup during graceful shutdown. Hooks run in
// reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Manager manages the daemon lifecycle: starting servers, handling shutdown.
type Manager interface {
	// Start starts all configured servers and blocks until shutdown.
	Start(ctx context.Context) error

	// Shutdown gracefully shuts down all servers and runs the hooks.
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a function to be called during shutdown.
	RegisterShutdownHook(name string, hook ShutdownHook)
}

// ServerConfig holds the HTTP server tuning for the daemon.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns production timeouts for the given listen
// address.
func DefaultServerConfig(listen string) ServerConfig {
	return ServerConfig{
		ListenAddr:      listen,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// shutdownGrace bounds the detached shutdown that Start performs when
// its own context is already cancelled.
const shutdownGrace = 30 * time.Second

// Lifecycle states. A manager moves strictly forward: new, running,
// stopping. There is no restart.
const (
	stateNew = iota
	stateRunning
	stateStopping
)

// listener pairs an http.Server with a name for logs and errors.
type listener struct {
	name string
	srv  *http.Server
}

type manager struct {
	serverCfg ServerConfig
	deps      Deps
	logger    zerolog.Logger

	mu            sync.Mutex
	state         int
	listeners     []listener
	shutdownHooks []namedHook
}

// namedHook pairs a shutdown hook with a name for logging.
type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a daemon manager from the given configuration and
// dependencies.
func NewManager(serverCfg ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	return &manager{
		serverCfg: serverCfg,
		deps:      deps,
		logger:    deps.Logger.With().Str("component", "manager").Logger(),
	}, nil
}

// Start brings up every configured listener and blocks until the context
// is cancelled or a listener fails. Either way it drives a full shutdown
// before returning.
func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.state != stateNew {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.state = stateRunning
	m.listeners = m.buildListeners()
	m.mu.Unlock()

	m.logger.Info().
		Str("listen", m.serverCfg.ListenAddr).
		Dur("read_timeout", m.serverCfg.ReadTimeout).
		Dur("write_timeout", m.serverCfg.WriteTimeout).
		Dur("shutdown_timeout", m.serverCfg.ShutdownTimeout).
		Msg("starting daemon manager")

	errChan := make(chan error, len(m.listeners))
	for _, l := range m.listeners {
		m.serve(l, errChan)
	}

	select {
	case err := <-errChan:
		m.logger.Error().Err(err).Msg("server error, initiating shutdown")
		if shutdownErr := m.shutdownDetached(ctx); shutdownErr != nil {
			return fmt.Errorf("server error and shutdown failure: %w", errors.Join(err, shutdownErr))
		}
		return err
	case <-ctx.Done():
		m.logger.Info().Msg("shutdown signal received")
		return m.shutdownDetached(ctx)
	}
}

// buildListeners assembles the API server and, when configured, the
// dedicated metrics listener.
func (m *manager) buildListeners() []listener {
	ls := []listener{{
		name: "api",
		srv: &http.Server{
			Addr:              m.serverCfg.ListenAddr,
			Handler:           m.deps.APIHandler,
			ReadTimeout:       m.serverCfg.ReadTimeout,
			ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
			WriteTimeout:      m.serverCfg.WriteTimeout,
			IdleTimeout:       m.serverCfg.IdleTimeout,
			MaxHeaderBytes:    m.serverCfg.MaxHeaderBytes,
		},
	}}

	if m.deps.MetricsHandler != nil && m.deps.MetricsAddr != "" {
		ls = append(ls, listener{
			name: "metrics",
			srv: &http.Server{
				Addr:              m.deps.MetricsAddr,
				Handler:           m.deps.MetricsHandler,
				ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
			},
		})
	}
	return ls
}

func (m *manager) serve(l listener, errChan chan<- error) {
	go func() {
		m.logger.Info().
			Str("server", l.name).
			Str("addr", l.srv.Addr).
			Msg("listening")

		if err := l.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().
				Err(err).
				Str("event", "daemon.server_failed").
				Str("server", l.name).
				Msg("server failed")
			errChan <- fmt.Errorf("%s server: %w", l.name, err)
		}
	}()
}

// shutdownDetached shuts down under a fresh bounded context, so shutdown
// completes even when the parent context is already cancelled.
func (m *manager) shutdownDetached(parent context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), shutdownGrace)
	defer cancel()
	return m.Shutdown(ctx)
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	switch m.state {
	case stateStopping:
		m.mu.Unlock()
		return nil
	case stateNew:
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.state = stateStopping
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down daemon manager")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, l := range m.listeners {
		m.logger.Debug().Str("server", l.name).Msg("shutting down listener")
		if err := l.srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s server shutdown: %w", l.name, err))
		}
	}

	errs = append(errs, m.runHooks(shutdownCtx)...)

	if len(errs) > 0 {
		m.logger.Error().
			Int("error_count", len(errs)).
			Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Msg("daemon manager stopped cleanly")
	return nil
}

// runHooks executes the shutdown hooks in reverse registration order.
func (m *manager) runHooks(ctx context.Context) []error {
	m.logger.Debug().Int("hooks", len(m.shutdownHooks)).Msg("executing shutdown hooks")

	var errs []error
	for i := len(m.shutdownHooks) - 1; i >= 0; i-- {
		h := m.shutdownHooks[i]

		start := time.Now()
		if err := h.hook(ctx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", h.name).
				Dur("duration", time.Since(start)).
				Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
			continue
		}
		m.logger.Debug().
			Str("hook", h.name).
			Dur("duration", time.Since(start)).
			Msg("shutdown hook completed")
	}
	return errs
}

// RegisterShutdownHook registers a cleanup function to run during
// shutdown. Hooks run in reverse registration order (LIFO).
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHooks = append(m.shutdownHooks, namedHook{name: name, hook: hook})
	m.logger.Debug().Str("hook", name).Msg("registered shutdown hook")
}
