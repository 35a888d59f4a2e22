// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/checkings/checkings/internal/log"
)

// Environment variable keys. Every key the loader consumes is listed here;
// the verify script in scripts/ checks that no other key sneaks in.
const (
	EnvListen       = "CHECKINGS_LISTEN"
	EnvDataDir      = "CHECKINGS_DATA_DIR"
	EnvLogLevel     = "CHECKINGS_LOG_LEVEL"
	EnvStore        = "CHECKINGS_STORE"
	EnvSchemaDir    = "CHECKINGS_SCHEMA_DIR"
	EnvRedisAddr    = "CHECKINGS_REDIS_ADDR"
	EnvCacheTTL     = "CHECKINGS_CACHE_TTL"
	EnvReportDir    = "CHECKINGS_REPORT_DIR"
	EnvRateLimit    = "CHECKINGS_RATE_LIMIT"
	EnvRateBurst    = "CHECKINGS_RATE_BURST"
	EnvMaxBatch     = "CHECKINGS_MAX_BATCH"
	EnvWorkers      = "CHECKINGS_WORKERS"
	EnvOTLPEndpoint = "CHECKINGS_OTLP_ENDPOINT"
)

// Keys consumed outside the loader: secrets and operate-time knobs that
// never belong in a config file.
const (
	EnvAPIToken      = "CHECKINGS_API_TOKEN"
	EnvMetricsListen = "CHECKINGS_METRICS_LISTEN"
	EnvOTLPProtocol  = "CHECKINGS_OTLP_PROTOCOL"
	EnvEnvironment   = "CHECKINGS_ENVIRONMENT"
	EnvTraceSampling = "CHECKINGS_TRACE_SAMPLING"
)

// ParseString returns the environment value for key, or defaultValue when
// unset or empty.
func ParseString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

// ParseInt returns the integer environment value for key, or defaultValue
// when unset or unparseable.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Int("default", defaultValue).
				Msg("invalid integer in environment variable, using default")
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// ParseFloat returns the float environment value for key, or defaultValue
// when unset or unparseable.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Float64("default", defaultValue).
				Msg("invalid float in environment variable, using default")
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// ParseDuration returns the duration environment value for key, or
// defaultValue when unset or unparseable.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Dur("default", defaultValue).
				Msg("invalid duration in environment variable, using default")
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// ParseBool returns the boolean environment value for key, accepting
// true/1/yes and false/0/no, or defaultValue otherwise.
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		default:
			logger.Warn().
				Str("key", key).
				Str("value", v).
				Bool("default", defaultValue).
				Msg("invalid boolean in environment variable, using default")
			return defaultValue
		}
	}
	return defaultValue
}
