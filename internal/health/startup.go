// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/checkings/checkings/internal/config"
	"github.com/checkings/checkings/internal/log"
)

// PerformStartupChecks validates the host environment before the daemon
// starts serving. Shape checks live in config validation; this covers
// what only the running host can answer: directories, writability,
// address resolvability.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("Running pre-flight startup checks...")

	steps := []struct {
		name string
		run  func() error
	}{
		{"data directory", func() error { return ensureWritableDir(cfg.DataDir) }},
		{"report directory", func() error { return ensureWritableDir(cfg.EffectiveReportDir()) }},
		{"listen address", func() error { return checkListenAddr(cfg.Listen) }},
		{"redis address", func() error { return checkRedisAddr(cfg.RedisAddr) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s check failed: %w", step.name, err)
		}
		logger.Info().Str("check", step.name).Msg("✓ passed")
	}

	if cfg.Store == "memory" {
		logger.Warn().
			Str("store", cfg.Store).
			Msg("schema registry uses in-memory store; schemas are lost on restart")
	}

	logger.Info().Msg("✅ All startup checks passed")
	return nil
}

// ensureWritableDir creates path if needed and probes that the daemon
// can actually write into it.
func ensureWritableDir(path string) error {
	if err := os.MkdirAll(path, 0750); err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	probe := filepath.Join(path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0600); err != nil {
		return fmt.Errorf("not writable: %s: %w", path, err)
	}
	_ = os.Remove(probe)
	return nil
}

func checkListenAddr(addr string) error {
	if addr == "" {
		return nil
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q in %q", port, addr)
	}
	return nil
}

// checkRedisAddr only validates shape. Reachability is probed by the
// cache itself, which degrades to in-process misses when Redis is down.
func checkRedisAddr(addr string) error {
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid redis address %q: %w", addr, err)
	}
	return nil
}
