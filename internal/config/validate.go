// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"net"
	"net/url"
	"strconv"

	"github.com/checkings/checkings/checking"
)

// Validate checks the configuration with the same checkers this service
// offers its clients. All violations are reported together.
func Validate(cfg *AppConfig) error {
	return checking.ValidateStruct(cfg, configFields())
}

// configFields declares one checker per validated field. Field names match
// the `check` tags on AppConfig.
func configFields() checking.Fields {
	return checking.Fields{
		"listen":        checking.Str().MustMerge(checking.NotEmpty()).And(hostPortRule),
		"data_dir":      checking.Str().MustMerge(checking.NotEmpty()),
		"log_level":     checking.OneOf("trace", "debug", "info", "warn", "error", "fatal", "panic"),
		"store":         checking.OneOf("memory", "sqlite", "badger"),
		"schema_dir":    checking.Str(),
		"redis_addr":    checking.Str().And(optionalHostPortRule),
		"cache_ttl":     checking.NonNegative(),
		"report_dir":    checking.Str().MustMerge(checking.NotEmpty()),
		"rate_limit":    checking.NonNegative(),
		"rate_burst":    checking.NonNegative(),
		"max_batch":     checking.IntInRange(1, 100000),
		"workers":       checking.IntInRange(1, 256),
		"otlp_endpoint": checking.Str().And(optionalEndpointRule),
	}
}

func hostPortRule(value any) error {
	s, ok := value.(string)
	if !ok || !isHostPort(s) {
		return errors.New("Value must be a host:port address")
	}
	return nil
}

func optionalHostPortRule(value any) error {
	if s, ok := value.(string); ok && s == "" {
		return nil
	}
	return hostPortRule(value)
}

// optionalEndpointRule accepts an empty string, a host:port pair or an
// absolute http(s) URL.
func optionalEndpointRule(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("Value must be a host:port address or http(s) URL")
	}
	if s == "" || isHostPort(s) {
		return nil
	}
	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return nil
	}
	return errors.New("Value must be a host:port address or http(s) URL")
}

// isHostPort reports whether s splits into a host and a valid port number.
// SplitHostPort alone does not check that the port is numeric.
func isHostPort(s string) bool {
	_, port, err := net.SplitHostPort(s)
	if err != nil {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p >= 1 && p <= 65535
}
