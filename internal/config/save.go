// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Manager handles configuration persistence.
type Manager struct {
	configPath string
}

// NewManager creates a new configuration manager.
func NewManager(configPath string) *Manager {
	return &Manager{configPath: configPath}
}

// Save writes the configuration to disk atomically. Only user-configurable
// fields are written; environment-only state never lands in the file.
func (m *Manager) Save(cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o750); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	ttl := cfg.CacheTTL.String()
	fileCfg := FileConfig{
		Listen:       strPtr(cfg.Listen),
		DataDir:      strPtr(cfg.DataDir),
		LogLevel:     strPtr(cfg.LogLevel),
		Store:        strPtr(cfg.Store),
		SchemaDir:    strPtr(cfg.SchemaDir),
		ReportDir:    strPtr(cfg.ReportDir),
		OTLPEndpoint: strPtr(cfg.OTLPEndpoint),
		Cache: CacheFileConfig{
			RedisAddr: strPtr(cfg.RedisAddr),
			TTL:       &ttl,
		},
		HTTP: HTTPFileConfig{
			RateLimit: &cfg.RateLimit,
			RateBurst: &cfg.RateBurst,
		},
		Batch: BatchFileConfig{
			MaxValues: &cfg.MaxBatch,
			Workers:   &cfg.Workers,
		},
	}

	pending, err := renameio.NewPendingFile(m.configPath, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck

	enc := yaml.NewEncoder(pending)
	enc.SetIndent(2)
	if err := enc.Encode(fileCfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
