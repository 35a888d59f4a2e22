// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/checkings/checkings/internal/log"
)

// Holder holds configuration with atomic reloading capability. It provides
// thread-safe access to the current configuration and supports hot
// reloading from file or manual trigger via API.
type Holder struct {
	mu         sync.RWMutex
	current    AppConfig
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewHolder creates a new configuration holder with initial config.
func NewHolder(initial AppConfig, loader *Loader, configPath string) *Holder {
	return &Holder{
		current:         initial,
		loader:          loader,
		configPath:      configPath,
		logger:          log.WithComponent("config"),
		reloadListeners: make([]chan<- AppConfig, 0),
	}
}

// Get returns the current configuration (thread-safe read).
func (h *Holder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from file and validates it. If validation
// fails, the old configuration is kept and an error is returned, so either
// the full new config applies or nothing changes.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str(log.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().
		Str(log.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")

	return nil
}

// StartWatcher starts watching the config file for changes. If configPath
// is empty this is a no-op (config comes from ENV only).
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str(log.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	h.watcher = watcher

	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}

	h.logger.Info().
		Str(log.FieldEvent, "config.watcher_started").
		Str(log.FieldPath, h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)

	return nil
}

// watchLoop is the main file watcher loop.
func (h *Holder) watchLoop(ctx context.Context) {
	// Debounce timer to avoid multiple reloads for rapid file changes
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(log.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			if h.watcher != nil {
				_ = h.watcher.Close()
			}
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Write and Create cover vim, nano and plain redirection.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				h.logger.Debug().
					Str(log.FieldEvent, "config.file_changed").
					Str("op", event.Op.String()).
					Msg("config file changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().
							Err(err).
							Str(log.FieldEvent, "config.auto_reload_failed").
							Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(log.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher (if running).
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive config reload
// notifications. The channel receives the new config whenever a reload
// succeeds. The caller is responsible for closing the channel.
func (h *Holder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new config to all registered listeners without
// blocking.
func (h *Holder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str(log.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// logChanges logs the operationally interesting differences between the old
// and new configuration.
func (h *Holder) logChanges(oldCfg, newCfg AppConfig) {
	if oldCfg.LogLevel != newCfg.LogLevel {
		h.logger.Info().
			Str(log.FieldEvent, "config.changed").
			Str("key", "logLevel").
			Str("old", oldCfg.LogLevel).
			Str("new", newCfg.LogLevel).
			Msg("config value changed")
	}
	if oldCfg.Store != newCfg.Store {
		h.logger.Warn().
			Str(log.FieldEvent, "config.changed").
			Str("key", "store").
			Str("old", oldCfg.Store).
			Str("new", newCfg.Store).
			Msg("store backend change requires restart to take effect")
	}
	if oldCfg.SchemaDir != newCfg.SchemaDir {
		h.logger.Info().
			Str(log.FieldEvent, "config.changed").
			Str("key", "schemaDir").
			Str("old", oldCfg.SchemaDir).
			Str("new", newCfg.SchemaDir).
			Msg("config value changed")
	}
	if oldCfg.RateLimit != newCfg.RateLimit || oldCfg.RateBurst != newCfg.RateBurst {
		h.logger.Info().
			Str(log.FieldEvent, "config.changed").
			Str("key", "http.rateLimit").
			Float64("old", oldCfg.RateLimit).
			Float64("new", newCfg.RateLimit).
			Msg("config value changed")
	}
	if oldCfg.MaxBatch != newCfg.MaxBatch || oldCfg.Workers != newCfg.Workers {
		h.logger.Info().
			Str(log.FieldEvent, "config.changed").
			Str("key", "batch").
			Int("old", oldCfg.MaxBatch).
			Int("new", newCfg.MaxBatch).
			Msg("config value changed")
	}
}
