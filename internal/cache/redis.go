// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/checkings/checkings/internal/report"
)

// Redis is a Redis-backed Verdicts implementation, shared by all
// replicas pointing at the same server.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// NewRedis connects to Redis and verifies the connection before
// returning. Callers fall back to NewMemory when this fails.
func NewRedis(cfg RedisConfig, logger zerolog.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis verdict cache")

	return &Redis{client: client, logger: logger}, nil
}

// Get retrieves a verdict from Redis. Transport and decode errors count
// as misses; the caller revalidates and overwrites the entry.
func (c *Redis) Get(key string) (report.Verdict, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.stats.misses.Add(1)
		return report.Verdict{}, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		c.stats.misses.Add(1)
		return report.Verdict{}, false
	}

	var v report.Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("verdict decode failed")
		c.stats.misses.Add(1)
		return report.Verdict{}, false
	}

	c.stats.hits.Add(1)
	return v, true
}

// Set stores a verdict in Redis with the given TTL. Failures are logged
// and swallowed; a missing cache entry only costs a revalidation.
func (c *Redis) Set(key string, v report.Verdict, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("verdict encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
		return
	}
	c.stats.sets.Add(1)
}

// Stats returns cache counters. CurrentSize is the whole DB size, so
// keep verdicts in their own Redis database.
func (c *Redis) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size, err := c.client.DBSize(ctx).Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("redis dbsize failed")
		size = 0
	}

	return Stats{
		Hits:        c.stats.hits.Load(),
		Misses:      c.stats.misses.Load(),
		Sets:        c.stats.sets.Load(),
		CurrentSize: int(size),
	}
}

// HealthCheck pings Redis.
func (c *Redis) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}
