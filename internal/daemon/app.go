// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/checkings/checkings/internal/audit"
	"github.com/checkings/checkings/internal/config"
	"github.com/checkings/checkings/internal/engine"
	"github.com/checkings/checkings/internal/ratelimit"
	"github.com/checkings/checkings/internal/registry"
)

// AppDeps carries the runtime targets a config reload applies to. Every
// field is optional; a nil target just means that setting cannot be
// hot-applied.
type AppDeps struct {
	Engine  *engine.Engine
	Store   registry.Store
	Limiter *ratelimit.Limiter
	Audit   *audit.Logger
}

// App owns the long-lived runtime lifecycle (config watcher, reload
// wiring, signals) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	holder       *config.Holder
	deps         AppDeps
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, deps AppDeps) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		deps:         deps,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup must not fail when the
	// watcher cannot be started.
	if a.holder != nil {
		if err := a.holder.StartWatcher(ctx); err != nil {
			a.logger.Warn().
				Err(err).
				Str("event", "config.watcher_start_failed").
				Msg("failed to start config watcher")
		}

		applyCh := make(chan config.AppConfig, 1)
		a.holder.RegisterListener(applyCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.applyConfig(ctx, cfg)
				}
			}
		})
	}

	// SIGHUP trigger for manual reload.
	if a.holder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.holder.Reload(context.Background()); err != nil {
						a.logger.Warn().
							Err(err).
							Str("event", "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// applyConfig pushes a reloaded configuration into the running
// subsystems. Only hot-applicable settings are touched; listen address
// and store backend changes need a restart.
func (a *App) applyConfig(ctx context.Context, cfg config.AppConfig) {
	if a.deps.Engine != nil {
		a.deps.Engine.UpdateLimits(cfg.MaxBatch, cfg.Workers)
		a.deps.Engine.UpdateCacheTTL(cfg.CacheTTL)
	}

	if a.deps.Limiter != nil {
		a.deps.Limiter.SetPerClientLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	if a.deps.Store != nil && cfg.SchemaDir != "" {
		stats, err := registry.SyncDir(ctx, a.deps.Store, cfg.SchemaDir)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("event", "schema.sync_failed").
				Msg("schema directory sync failed")
		} else if a.deps.Engine != nil {
			for _, id := range stats.UpdatedIDs {
				a.deps.Engine.Invalidate(id)
			}
		}
	}

	if a.deps.Audit != nil {
		a.deps.Audit.ConfigReload("daemon", "applied", map[string]string{
			"log_level": cfg.LogLevel,
			"max_batch": strconv.Itoa(cfg.MaxBatch),
			"workers":   strconv.Itoa(cfg.Workers),
		})
	}

	a.logger.Info().
		Str("event", "config.applied").
		Msg("reloaded configuration applied")
}
