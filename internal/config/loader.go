// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknownConfigField classifies strict YAML parse failures caused by
// unknown keys. Use errors.Is instead of string matching.
var ErrUnknownConfigField = errors.New("unknown config field")

// Loader handles configuration loading with precedence ENV > file >
// defaults.
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

// Load resolves the configuration: defaults, then the strict-parsed file,
// then environment overrides, then validation. A config that fails
// validation is never returned.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	l.mergeEnvConfig(&cfg)

	// DataDir must be absolute so reload cannot change its meaning with the
	// working directory.
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = filepath.Join(cfg.DataDir, "reports")
	} else if abs, err := filepath.Abs(cfg.ReportDir); err == nil {
		cfg.ReportDir = abs
	}
	if cfg.SchemaDir != "" {
		if abs, err := filepath.Abs(cfg.SchemaDir); err == nil {
			cfg.SchemaDir = abs
		}
	}

	if err := Validate(&cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// loadFile parses a YAML config file in strict mode.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	// Reject multiple documents or trailing content.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.New("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

// mergeFileConfig applies every present file value onto cfg.
func mergeFileConfig(cfg *AppConfig, file *FileConfig) {
	setString(&cfg.Listen, file.Listen)
	setString(&cfg.DataDir, file.DataDir)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.Store, file.Store)
	setString(&cfg.SchemaDir, file.SchemaDir)
	setString(&cfg.ReportDir, file.ReportDir)
	setString(&cfg.OTLPEndpoint, file.OTLPEndpoint)
	setString(&cfg.RedisAddr, file.Cache.RedisAddr)

	if file.Cache.TTL != nil {
		if d, err := time.ParseDuration(*file.Cache.TTL); err == nil {
			cfg.CacheTTL = d
		}
	}
	if file.HTTP.RateLimit != nil {
		cfg.RateLimit = *file.HTTP.RateLimit
	}
	if file.HTTP.RateBurst != nil {
		cfg.RateBurst = *file.HTTP.RateBurst
	}
	if file.Batch.MaxValues != nil {
		cfg.MaxBatch = *file.Batch.MaxValues
	}
	if file.Batch.Workers != nil {
		cfg.Workers = *file.Batch.Workers
	}
}

// mergeEnvConfig applies environment overrides, the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.Listen = l.envString(EnvListen, cfg.Listen)
	cfg.DataDir = l.envString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Store = l.envString(EnvStore, cfg.Store)
	cfg.SchemaDir = l.envString(EnvSchemaDir, cfg.SchemaDir)
	cfg.RedisAddr = l.envString(EnvRedisAddr, cfg.RedisAddr)
	cfg.CacheTTL = l.envDuration(EnvCacheTTL, cfg.CacheTTL)
	cfg.ReportDir = l.envString(EnvReportDir, cfg.ReportDir)
	cfg.RateLimit = l.envFloat(EnvRateLimit, cfg.RateLimit)
	cfg.RateBurst = l.envInt(EnvRateBurst, cfg.RateBurst)
	cfg.MaxBatch = l.envInt(EnvMaxBatch, cfg.MaxBatch)
	cfg.Workers = l.envInt(EnvWorkers, cfg.Workers)
	cfg.OTLPEndpoint = l.envString(EnvOTLPEndpoint, cfg.OTLPEndpoint)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
