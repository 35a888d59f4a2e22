// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/checkings/checkings/internal/api"
	"github.com/checkings/checkings/internal/audit"
	"github.com/checkings/checkings/internal/cache"
	"github.com/checkings/checkings/internal/config"
	"github.com/checkings/checkings/internal/daemon"
	"github.com/checkings/checkings/internal/engine"
	"github.com/checkings/checkings/internal/health"
	"github.com/checkings/checkings/internal/log"
	"github.com/checkings/checkings/internal/ratelimit"
	"github.com/checkings/checkings/internal/registry"
	"github.com/checkings/checkings/internal/report"
	"github.com/checkings/checkings/internal/telemetry"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("checkings daemon", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML configuration file")
	_ = fs.Parse(args)

	// Configure logger with safe defaults until config is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: "checkings",
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Determine config path:
	// - Explicit via -config
	// - Otherwise auto-load ${CHECKINGS_DATA_DIR}/config.yaml if it exists
	//   (so a file written by `checkings config init` is picked up)
	explicitConfigPath := strings.TrimSpace(*configPath)
	effectiveConfigPath := explicitConfigPath
	if effectiveConfigPath == "" {
		effectiveConfigPath = resolveDefaultConfigPath()
	}

	// Load configuration with precedence: ENV > File > Defaults
	loader := config.NewLoader(effectiveConfigPath, version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
		return 1
	}

	// Configure ran before the level was known; apply the loaded level
	// the same way a reload does.
	if cfg.LogLevel != "" {
		if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	// Log config source
	if explicitConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file").
			Str("path", explicitConfigPath).
			Msg("loaded configuration from file")
	} else if effectiveConfigPath != "" {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "file(auto)").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str("event", "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Error().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("startup checks failed, verify configuration and permissions")
		return 1
	}

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.OTLPEndpoint != "",
		ServiceName:    "checkings",
		ServiceVersion: version,
		Environment:    config.ParseString(config.EnvEnvironment, "production"),
		ExporterType:   config.ParseString(config.EnvOTLPProtocol, "grpc"),
		Endpoint:       cfg.OTLPEndpoint,
		SamplingRate:   config.ParseFloat(config.EnvTraceSampling, 1.0),
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "telemetry.init_failed").
			Msg("failed to initialise telemetry")
		return 1
	}

	store, err := registry.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "store.open_failed").
			Str("store", cfg.Store).
			Msg("failed to open schema store")
		return 1
	}

	verdicts := openVerdictCache(cfg, logger)
	reports := report.NewWriter(cfg.EffectiveReportDir())

	eng := engine.New(store, verdicts, reports, engine.Options{
		CacheTTL: cfg.CacheTTL,
		Workers:  cfg.Workers,
		MaxBatch: cfg.MaxBatch,
	})

	// Seed the registry from the schema directory before serving; the
	// reload path repeats this sync on every config change.
	if cfg.SchemaDir != "" {
		if _, err := registry.SyncDir(ctx, store, cfg.SchemaDir); err != nil {
			logger.Warn().
				Err(err).
				Str("event", "schema.sync_failed").
				Str("path", cfg.SchemaDir).
				Msg("initial schema directory sync failed")
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit > 0 {
		rlCfg := ratelimit.DefaultConfig()
		rlCfg.PerClientRate = rate.Limit(cfg.RateLimit)
		rlCfg.GlobalRate = rate.Limit(cfg.RateLimit * 10)
		if cfg.RateBurst > 0 {
			rlCfg.PerClientBurst = cfg.RateBurst
			rlCfg.GlobalBurst = cfg.RateBurst * 10
		}
		limiter = ratelimit.New(rlCfg)
	}

	healthMgr := health.NewManager(version)
	healthMgr.RegisterChecker(health.NewStoreChecker(store))
	healthMgr.RegisterChecker(health.NewCacheChecker(verdicts))
	healthMgr.RegisterChecker(health.NewReportDirChecker(cfg.EffectiveReportDir()))

	auditor := audit.NewLogger()

	apiServer := api.New(api.Options{
		Config:   cfg,
		Engine:   eng,
		Store:    store,
		Reports:  reports,
		Verdicts: verdicts,
		Health:   healthMgr,
		Audit:    auditor,
		Limiter:  limiter,
		Version:  version,
	})

	logger.Info().
		Str("event", "startup").
		Str("version", version).
		Str("commit", commit).
		Str("build_date", buildDate).
		Str("addr", cfg.Listen).
		Msg("starting checkings")

	logger.Info().Msgf("→ Store: %s (%s)", cfg.Store, cfg.DataDir)
	switch {
	case cfg.CacheTTL <= 0:
		logger.Info().Msg("→ Verdict cache: disabled")
	case cfg.RedisAddr != "":
		logger.Info().Msgf("→ Verdict cache: redis %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
	default:
		logger.Info().Msgf("→ Verdict cache: memory (ttl %s)", cfg.CacheTTL)
	}
	logger.Info().Msgf("→ Reports: %s", cfg.EffectiveReportDir())
	if cfg.SchemaDir != "" {
		logger.Info().Msgf("→ Schema dir: %s", cfg.SchemaDir)
	}
	if limiter != nil {
		logger.Info().Msgf("→ Rate limit: %.0f req/s per client", cfg.RateLimit)
	}
	if os.Getenv(config.EnvAPIToken) != "" {
		logger.Info().Msg("→ API token: configured")
	} else {
		logger.Warn().
			Str("event", "auth.disabled").
			Msg("→ API token: NOT configured (auth disabled). Set CHECKINGS_API_TOKEN to protect the API.")
	}

	holder := config.NewHolder(cfg, config.NewLoader(effectiveConfigPath, version), effectiveConfigPath)

	mgr, err := daemon.NewManager(daemon.DefaultServerConfig(cfg.Listen), daemon.Deps{
		Logger:         logger,
		Config:         cfg,
		APIHandler:     apiServer.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    strings.TrimSpace(config.ParseString(config.EnvMetricsListen, "")),
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "manager.creation_failed").
			Msg("failed to create daemon manager")
		return 1
	}

	// Hooks run LIFO: watcher first, store last.
	mgr.RegisterShutdownHook("schema-store", func(context.Context) error {
		return store.Close()
	})
	mgr.RegisterShutdownHook("verdict-cache", func(context.Context) error {
		return verdicts.Close()
	})
	mgr.RegisterShutdownHook("telemetry", provider.Shutdown)
	mgr.RegisterShutdownHook("config-watcher", func(context.Context) error {
		holder.Stop()
		return nil
	})

	app := daemon.NewApp(logger, mgr, holder, daemon.AppDeps{
		Engine:  eng,
		Store:   store,
		Limiter: limiter,
		Audit:   auditor,
	})
	if err := app.Run(ctx); err != nil {
		logger.Error().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon exited with error")
		return 1
	}

	logger.Info().Msg("server exiting")
	return 0
}

// openVerdictCache picks the verdict cache backend: disabled when the
// TTL is zero, Redis when an address is configured, in-process memory
// otherwise. A Redis that cannot be reached at startup degrades to the
// memory cache instead of blocking the daemon.
func openVerdictCache(cfg config.AppConfig, logger zerolog.Logger) cache.Verdicts {
	if cfg.CacheTTL <= 0 {
		return cache.NewNop()
	}
	if cfg.RedisAddr != "" {
		redis, err := cache.NewRedis(cache.RedisConfig{Addr: cfg.RedisAddr}, log.WithComponent("cache"))
		if err == nil {
			return redis
		}
		logger.Warn().
			Err(err).
			Str("event", "cache.redis_unavailable").
			Str("addr", cfg.RedisAddr).
			Msg("redis unavailable, falling back to in-memory verdict cache")
	}
	return cache.NewMemory(time.Minute)
}
