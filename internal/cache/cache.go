// SPDX-License-Identifier: MIT

// Package cache stores validation verdicts keyed by schema version and
// payload digest, so repeated submissions of an identical document skip
// the checker walk entirely.
package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/checkings/checkings/internal/report"
)

// Verdicts is a TTL cache for validation verdicts.
type Verdicts interface {
	// Get returns the cached verdict for key, if present and fresh.
	Get(key string) (report.Verdict, bool)

	// Set stores a verdict under key for ttl.
	Set(key string, v report.Verdict, ttl time.Duration)

	// Stats returns a snapshot of hit/miss counters.
	Stats() Stats

	// HealthCheck reports whether the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the backing store.
	Close() error
}

// Key builds the cache key for one schema version and payload digest.
// The version is part of the key, so bumping a schema invalidates all
// of its verdicts without an explicit purge.
func Key(schemaID string, version int, digest string) string {
	return "vd:" + schemaID + ":v" + strconv.Itoa(version) + ":" + digest
}

// Stats holds cache counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"current_size"`
}

// entry is a cached verdict with its expiry.
type entry struct {
	verdict    report.Verdict
	expiration time.Time
}

func (e *entry) expired() bool {
	return time.Now().After(e.expiration)
}

// memory is the in-process Verdicts backend, used when no Redis address
// is configured and in one-shot runs.
type memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	janitor *janitor

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

// NewMemory creates an in-process cache. A positive cleanupInterval
// starts a janitor goroutine that evicts expired entries; Close stops it.
func NewMemory(cleanupInterval time.Duration) Verdicts {
	m := &memory{entries: make(map[string]*entry)}
	if cleanupInterval > 0 {
		m.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
		}
		go m.janitor.run(m)
	}
	return m
}

func (m *memory) Get(key string) (report.Verdict, bool) {
	m.mu.RLock()
	e, found := m.entries[key]
	m.mu.RUnlock()

	if !found || e.expired() {
		m.misses.Add(1)
		return report.Verdict{}, false
	}
	m.hits.Add(1)
	return e.verdict, true
}

func (m *memory) Set(key string, v report.Verdict, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = &entry{verdict: v, expiration: time.Now().Add(ttl)}
	m.mu.Unlock()
	m.sets.Add(1)
}

func (m *memory) Stats() Stats {
	m.mu.RLock()
	size := len(m.entries)
	m.mu.RUnlock()

	return Stats{
		Hits:        m.hits.Load(),
		Misses:      m.misses.Load(),
		Sets:        m.sets.Load(),
		Evictions:   m.evictions.Load(),
		CurrentSize: size,
	}
}

func (m *memory) HealthCheck(ctx context.Context) error { return nil }

// Close stops the janitor goroutine, if one was started. Idempotent,
// like the other backends.
func (m *memory) Close() error {
	if m.janitor != nil {
		m.janitor.halt()
	}
	return nil
}

// deleteExpired removes expired entries and returns how many went.
func (m *memory) deleteExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key, e := range m.entries {
		if e.expired() {
			delete(m.entries, key)
			count++
		}
	}
	m.evictions.Add(int64(count))
	return count
}

// janitor periodically evicts expired entries.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// halt stops the janitor. Safe to call more than once.
func (j *janitor) halt() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *janitor) run(m *memory) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

// nop is a Verdicts backend that caches nothing, used when caching is
// disabled by a zero TTL.
type nop struct{}

// NewNop creates a cache that never stores anything.
func NewNop() Verdicts { return nop{} }

func (nop) Get(key string) (report.Verdict, bool)             { return report.Verdict{}, false }
func (nop) Set(key string, v report.Verdict, t time.Duration) {}
func (nop) Stats() Stats                                      { return Stats{} }
func (nop) HealthCheck(ctx context.Context) error             { return nil }
func (nop) Close() error                                      { return nil }
