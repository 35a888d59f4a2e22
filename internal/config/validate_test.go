// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	cfg := Defaults()
	cfg.DataDir = "/var/lib/checkings"
	cfg.ReportDir = "/var/lib/checkings/reports"
	return cfg
}

func TestValidate_AcceptsResolvedDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Validate(&cfg))
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Listen = "no-port"
	cfg.Store = "cassandra"
	cfg.Workers = 0

	err := Validate(&cfg)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "listen has incorrect value")
	assert.Contains(t, msg, "store has incorrect value")
	assert.Contains(t, msg, "workers has incorrect value")
}

func TestValidate_ListenForms(t *testing.T) {
	cases := []struct {
		listen string
		ok     bool
	}{
		{":8080", true},
		{"127.0.0.1:8080", true},
		{"[::1]:8080", true},
		{"8080", false},
		{"", false},
	}

	for _, tc := range cases {
		cfg := validConfig()
		cfg.Listen = tc.listen
		err := Validate(&cfg)
		if tc.ok {
			assert.NoError(t, err, "listen %q", tc.listen)
		} else {
			assert.Error(t, err, "listen %q", tc.listen)
		}
	}
}

func TestValidate_RedisAddrOptional(t *testing.T) {
	cfg := validConfig()
	cfg.RedisAddr = ""
	require.NoError(t, Validate(&cfg))

	cfg.RedisAddr = "localhost:6379"
	require.NoError(t, Validate(&cfg))

	cfg.RedisAddr = "localhost"
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis_addr has incorrect value")
}

func TestValidate_OTLPEndpointForms(t *testing.T) {
	cases := []struct {
		endpoint string
		ok       bool
	}{
		{"", true},
		{"otel-collector:4317", true},
		{"https://otel.example.com/v1/traces", true},
		{"http://otel.example.com", true},
		{"gopher://otel", false},
		{"just-a-host", false},
	}

	for _, tc := range cases {
		cfg := validConfig()
		cfg.OTLPEndpoint = tc.endpoint
		err := Validate(&cfg)
		if tc.ok {
			assert.NoError(t, err, "endpoint %q", tc.endpoint)
		} else {
			assert.Error(t, err, "endpoint %q", tc.endpoint)
		}
	}
}

func TestValidate_RateLimits(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = -1
	err := Validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit has incorrect value")

	cfg = validConfig()
	cfg.RateLimit = 0
	require.NoError(t, Validate(&cfg), "zero disables limiting and must validate")
}

func TestValidate_BatchBounds(t *testing.T) {
	cfg := validConfig()
	cfg.MaxBatch = 0
	require.Error(t, Validate(&cfg))

	cfg = validConfig()
	cfg.MaxBatch = 100001
	require.Error(t, Validate(&cfg))

	cfg = validConfig()
	cfg.Workers = 257
	require.Error(t, Validate(&cfg))
}
