package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	Level   string    // optional log level ("debug", "info", etc.)
	Output  io.Writer // optional writer (defaults to os.Stdout)
	Service string    // optional service name attached to every log entry
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global logger exactly once; later calls are
// no-ops. The daemon applies the level from the loaded config afterwards
// through zerolog.SetGlobalLevel, the same way a reload does.
func Configure(cfg Config) {
	once.Do(func() { base = build(cfg) })
}

func build(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(resolveLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	service := cfg.Service
	if service == "" {
		service = "checkings"
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("service", service).
		Str("version", os.Getenv("VERSION")).
		Logger()
}

// resolveLevel picks the explicit level first, then the LOG_LEVEL
// environment escape hatch, then info. One-shot commands fix their level
// in code; LOG_LEVEL lets an operator turn up verbosity without flags.
func resolveLevel(explicit string) zerolog.Level {
	for _, candidate := range []string{explicit, os.Getenv("LOG_LEVEL")} {
		if candidate == "" {
			continue
		}
		if lvl, err := zerolog.ParseLevel(candidate); err == nil {
			return lvl
		}
	}
	return zerolog.InfoLevel
}

func logger() zerolog.Logger {
	Configure(Config{})
	return base
}

// Base returns the configured base logger instance.
func Base() zerolog.Logger {
	return logger()
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return logger().With().Str(FieldComponent, component).Logger()
}
