// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/checkings/checkings/internal/config"
)

func runConfigCLI(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage()
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "dump":
		return runConfigDump(args[1:])
	case "init":
		return runConfigInit(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  checkings config validate [--file|-f config.yaml]")
	fmt.Fprintln(os.Stderr, "  checkings config dump --effective [--file|-f config.yaml] [--format=yaml|json]")
	fmt.Fprintln(os.Stderr, "  checkings config init [--file|-f config.yaml] [--force]")
}

func resolveDefaultConfigPath() string {
	dataDir := strings.TrimSpace(os.Getenv(config.EnvDataDir))
	if dataDir == "" {
		dataDir = "./data"
	}
	autoPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(autoPath); err == nil {
		return autoPath
	}
	return ""
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("checkings config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	if configPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --file is required (no default config.yaml found in $%s)\n", config.EnvDataDir)
		return 2
	}

	loader := config.NewLoader(configPath, version)
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fmt.Printf("✓ %s is valid\n", configPath)
	return 0
}

func runConfigDump(args []string) int {
	fs := flag.NewFlagSet("checkings config dump", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var format string
	var effective bool

	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	fs.BoolVar(&effective, "effective", false, "dump effective configuration (defaults + file + env)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !effective {
		fmt.Fprintln(os.Stderr, "Error: --effective is required")
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}

	// Dump works without a file: the effective config is then defaults
	// plus environment overrides.
	loader := config.NewLoader(configPath, version)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fileCfg := fileConfigFromAppConfig(cfg)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unsupported format: %s (use yaml or json)\n", format)
		return 2
	}
}

// runConfigInit writes a config file with the default settings, giving a
// fresh install something to edit.
func runConfigInit(args []string) int {
	fs := flag.NewFlagSet("checkings config init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var force bool
	fs.StringVar(&file, "file", "", "path to write the configuration file")
	fs.StringVar(&file, "f", "", "path to write the configuration file (shorthand)")
	fs.BoolVar(&force, "force", false, "overwrite an existing file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		dataDir := strings.TrimSpace(os.Getenv(config.EnvDataDir))
		if dataDir == "" {
			dataDir = "./data"
		}
		configPath = filepath.Join(dataDir, "config.yaml")
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", configPath)
			return 1
		}
	}

	cfg := config.Defaults()
	if err := config.NewManager(configPath).Save(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s:\n  %v\n", configPath, err)
		return 1
	}

	fmt.Printf("✓ wrote %s\n", configPath)
	return 0
}

func fileConfigFromAppConfig(cfg config.AppConfig) config.FileConfig {
	ttl := cfg.CacheTTL.String()
	return config.FileConfig{
		Listen:       strPtr(cfg.Listen),
		DataDir:      strPtr(cfg.DataDir),
		LogLevel:     strPtr(cfg.LogLevel),
		Store:        strPtr(cfg.Store),
		SchemaDir:    strPtr(cfg.SchemaDir),
		ReportDir:    strPtr(cfg.ReportDir),
		OTLPEndpoint: strPtr(cfg.OTLPEndpoint),
		Cache: config.CacheFileConfig{
			RedisAddr: strPtr(cfg.RedisAddr),
			TTL:       &ttl,
		},
		HTTP: config.HTTPFileConfig{
			RateLimit: &cfg.RateLimit,
			RateBurst: &cfg.RateBurst,
		},
		Batch: config.BatchFileConfig{
			MaxValues: &cfg.MaxBatch,
			Workers:   &cfg.Workers,
		},
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
