// SPDX-License-Identifier: MIT

package config

import (
	"path/filepath"
	"time"
)

// AppConfig is the resolved runtime configuration.
type AppConfig struct {
	// Listen is the HTTP listen address, host optional.
	Listen string `check:"listen"`
	// DataDir is the base directory for stores and reports.
	DataDir string `check:"data_dir"`
	// LogLevel is the zerolog level name.
	LogLevel string `check:"log_level"`

	// Store selects the schema registry backend.
	Store string `check:"store"`

	// SchemaDir, when non-empty, names a directory of schema documents
	// that are synced into the registry at startup and on every reload.
	SchemaDir string `check:"schema_dir"`

	// RedisAddr enables the validation result cache when non-empty.
	RedisAddr string `check:"redis_addr"`
	// CacheTTL bounds how long cached validation verdicts live.
	CacheTTL time.Duration `check:"cache_ttl"`

	// ReportDir overrides DataDir/reports when non-empty.
	ReportDir string `check:"report_dir"`

	// RateLimit is the per-client request rate in requests per second,
	// zero disables limiting.
	RateLimit float64 `check:"rate_limit"`
	RateBurst int     `check:"rate_burst"`

	// MaxBatch caps the number of values in one batch validation call.
	MaxBatch int `check:"max_batch"`
	// Workers sizes the batch validation worker pool.
	Workers int `check:"workers"`

	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string `check:"otlp_endpoint"`
}

// FileConfig mirrors the YAML config file. Pointer fields distinguish
// "absent" from zero values so the merge never clobbers a default with an
// unset key.
type FileConfig struct {
	Listen       *string `yaml:"listen,omitempty"`
	DataDir      *string `yaml:"dataDir,omitempty"`
	LogLevel     *string `yaml:"logLevel,omitempty"`
	Store        *string `yaml:"store,omitempty"`
	SchemaDir    *string `yaml:"schemaDir,omitempty"`
	ReportDir    *string `yaml:"reportDir,omitempty"`
	OTLPEndpoint *string `yaml:"otlpEndpoint,omitempty"`

	Cache CacheFileConfig `yaml:"cache,omitempty"`
	HTTP  HTTPFileConfig  `yaml:"http,omitempty"`
	Batch BatchFileConfig `yaml:"batch,omitempty"`
}

// CacheFileConfig is the cache section of the config file.
type CacheFileConfig struct {
	RedisAddr *string `yaml:"redisAddr,omitempty"`
	TTL       *string `yaml:"ttl,omitempty"`
}

// HTTPFileConfig is the http section of the config file.
type HTTPFileConfig struct {
	RateLimit *float64 `yaml:"rateLimit,omitempty"`
	RateBurst *int     `yaml:"rateBurst,omitempty"`
}

// BatchFileConfig is the batch section of the config file.
type BatchFileConfig struct {
	MaxValues *int `yaml:"maxValues,omitempty"`
	Workers   *int `yaml:"workers,omitempty"`
}

// EffectiveReportDir resolves where reports go: ReportDir when set,
// otherwise a reports directory under DataDir.
func (c AppConfig) EffectiveReportDir() string {
	if c.ReportDir != "" {
		return c.ReportDir
	}
	return filepath.Join(c.DataDir, "reports")
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Listen:    ":8080",
		DataDir:   "./data",
		LogLevel:  "info",
		Store:     "memory",
		CacheTTL:  5 * time.Minute,
		RateLimit: 0,
		RateBurst: 20,
		MaxBatch:  1000,
		Workers:   4,
	}
}
