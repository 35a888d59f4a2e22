// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/checkings/checkings/internal/cache"
	"github.com/checkings/checkings/internal/registry"
	"github.com/checkings/checkings/internal/report"
	"github.com/checkings/checkings/internal/schema"
)

func testSchema() *schema.Schema {
	s := &schema.Schema{
		Name:    "server-config",
		Version: 1,
		Fields: map[string]schema.FieldSpec{
			"host":    {Type: "string", NotEmpty: true},
			"port":    {Type: "int", Port: true},
			"workers": {Type: "int", Positive: true, Default: 4},
		},
	}
	s.ID = s.Fingerprint()
	return s
}

func cacheForTest(t *testing.T) cache.Verdicts {
	t.Helper()
	verdicts := cache.NewMemory(0)
	t.Cleanup(func() { _ = verdicts.Close() })
	return verdicts
}

func newTestEngine(t *testing.T, opts Options) (*Engine, registry.Store, *report.Writer) {
	t.Helper()

	store := registry.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	writer := report.NewWriter(t.TempDir())
	return New(store, cacheForTest(t), writer, opts), store, writer
}

func TestValidate_Valid(t *testing.T) {
	e, store, writer := newTestEngine(t, Options{CacheTTL: time.Minute})
	s := testSchema()
	require.NoError(t, store.Put(context.Background(), s))

	rep, err := e.Validate(context.Background(), Ref{Name: "server-config"}, map[string]any{
		"host": "example.com",
		"port": 8080,
	})
	require.NoError(t, err)

	assert.True(t, rep.Valid)
	assert.Equal(t, 3, rep.Checked)
	assert.Empty(t, rep.Failures)
	assert.True(t, strings.HasPrefix(rep.ID, "rep-"), "report ID %q", rep.ID)
	assert.True(t, strings.HasPrefix(rep.Digest, "pay-"), "digest %q", rep.Digest)
	assert.Equal(t, s.ID, rep.SchemaID)
	assert.Equal(t, "server-config", rep.SchemaName)
	assert.Equal(t, 1, rep.SchemaVersion)
	assert.False(t, rep.CreatedAt.IsZero())

	// The report was persisted and round-trips.
	stored, err := writer.Read(rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, stored.ID)
	assert.True(t, stored.Valid)
}

func TestValidate_Invalid(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{CacheTTL: time.Minute})
	require.NoError(t, store.Put(context.Background(), testSchema()))

	rep, err := e.Validate(context.Background(), Ref{Name: "server-config"}, map[string]any{
		"host":  "",
		"port":  70000,
		"bogus": 1,
	})
	require.NoError(t, err)

	assert.False(t, rep.Valid)
	require.Len(t, rep.Failures, 3)

	byField := make(map[string]report.FieldFailure, len(rep.Failures))
	for _, f := range rep.Failures {
		byField[f.Field] = f
	}

	host, ok := byField["host"]
	require.True(t, ok, "expected a failure for host")
	assert.Equal(t, "", host.Value)
	assert.NotEmpty(t, host.Messages)

	port, ok := byField["port"]
	require.True(t, ok, "expected a failure for port")
	assert.Equal(t, 70000, port.Value)
	assert.Contains(t, port.Messages[0], "port")

	bogus, ok := byField["bogus"]
	require.True(t, ok, "expected a failure for bogus")
	assert.Equal(t, []string{"unknown field"}, bogus.Messages)
}

func TestValidate_ByID(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{CacheTTL: time.Minute})
	s := testSchema()
	require.NoError(t, store.Put(context.Background(), s))

	rep, err := e.Validate(context.Background(), Ref{ID: s.ID}, map[string]any{
		"host": "example.com",
		"port": 443,
	})
	require.NoError(t, err)
	assert.True(t, rep.Valid)
}

func TestValidate_CacheHit(t *testing.T) {
	store := registry.NewMemoryStore()
	defer store.Close() //nolint:errcheck

	verdicts := cache.NewMemory(0)
	defer verdicts.Close() //nolint:errcheck

	e := New(store, verdicts, report.NewWriter(t.TempDir()), Options{CacheTTL: time.Minute})
	require.NoError(t, store.Put(context.Background(), testSchema()))

	payload := map[string]any{"host": "example.com", "port": 8080}

	first, err := e.Validate(context.Background(), Ref{Name: "server-config"}, payload)
	require.NoError(t, err)

	second, err := e.Validate(context.Background(), Ref{Name: "server-config"}, payload)
	require.NoError(t, err)

	stats := verdicts.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)

	// Each run is its own report, sharing the verdict.
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.Valid, second.Valid)
}

func TestValidate_RequiredAndOptionalFields(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{CacheTTL: time.Minute})
	s := &schema.Schema{
		Name:    "signup",
		Version: 1,
		Fields: map[string]schema.FieldSpec{
			"email":    {Type: "string", NotEmpty: true, Required: true},
			"plan":     {Type: "string", Default: "free"},
			"referrer": {Type: "string"},
		},
	}
	s.ID = s.Fingerprint()
	require.NoError(t, store.Put(context.Background(), s))

	// Omitting a required field must fail; the default of plan does not
	// paper over it.
	rep, err := e.Validate(context.Background(), Ref{Name: "signup"}, map[string]any{})
	require.NoError(t, err)
	assert.False(t, rep.Valid)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "email", rep.Failures[0].Field)
	assert.Equal(t, []string{"missing required field"}, rep.Failures[0].Messages)

	// With the required field supplied, the absent optional field is
	// skipped and the defaulted field still counts as checked.
	rep, err = e.Validate(context.Background(), Ref{Name: "signup"}, map[string]any{
		"email": "ops@example.com",
	})
	require.NoError(t, err)
	assert.True(t, rep.Valid)
	assert.Equal(t, 2, rep.Checked)

	// A supplied optional field is still validated.
	rep, err = e.Validate(context.Background(), Ref{Name: "signup"}, map[string]any{
		"email":    "ops@example.com",
		"referrer": 42,
	})
	require.NoError(t, err)
	assert.False(t, rep.Valid)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "referrer", rep.Failures[0].Field)
}

func TestValidate_SchemaNotFound(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	_, err := e.Validate(context.Background(), Ref{Name: "missing"}, map[string]any{})
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	_, err = e.Validate(context.Background(), Ref{ID: "sch-0000000000000000"}, map[string]any{})
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	_, err = e.Validate(context.Background(), Ref{}, map[string]any{})
	assert.ErrorIs(t, err, ErrNoSchemaRef)
}

func TestInvalidate(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{CacheTTL: time.Minute})
	s := testSchema()
	require.NoError(t, store.Put(context.Background(), s))

	_, err := e.Validate(context.Background(), Ref{ID: s.ID}, map[string]any{
		"host": "example.com",
		"port": 8080,
	})
	require.NoError(t, err)

	e.mu.Lock()
	compiledBefore := len(e.compiled)
	e.mu.Unlock()
	assert.Equal(t, 1, compiledBefore)

	e.Invalidate(s.ID)

	e.mu.Lock()
	compiledAfter := len(e.compiled)
	e.mu.Unlock()
	assert.Equal(t, 0, compiledAfter)

	// Revalidation recompiles transparently.
	rep, err := e.Validate(context.Background(), Ref{ID: s.ID}, map[string]any{
		"host": "example.com",
		"port": 8080,
	})
	require.NoError(t, err)
	assert.True(t, rep.Valid)
}

func TestValidate_VersionBumpChangesVerdict(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{CacheTTL: time.Minute})
	s := testSchema()
	require.NoError(t, store.Put(context.Background(), s))

	payload := map[string]any{"host": "example.com", "port": 8080}

	rep, err := e.Validate(context.Background(), Ref{ID: s.ID}, payload)
	require.NoError(t, err)
	require.True(t, rep.Valid)

	// Tighten the port range in version 2 of the same schema.
	maxPort := 1000.0
	s2 := &schema.Schema{
		ID:      s.ID,
		Name:    s.Name,
		Version: 2,
		Fields: map[string]schema.FieldSpec{
			"host":    {Type: "string", NotEmpty: true},
			"port":    {Type: "int", Min: new(float64), Max: &maxPort},
			"workers": {Type: "int", Positive: true, Default: 4},
		},
	}
	require.NoError(t, store.Put(context.Background(), s2))
	e.Invalidate(s.ID)

	// Same payload, new version: the old cached verdict is unreachable.
	rep, err = e.Validate(context.Background(), Ref{ID: s.ID}, payload)
	require.NoError(t, err)
	assert.False(t, rep.Valid)
}

func TestUpdateLimitsAndTTL(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{CacheTTL: time.Minute, MaxBatch: 10})
	require.NoError(t, store.Put(context.Background(), testSchema()))

	e.UpdateLimits(2, 8)
	assert.Equal(t, 2, e.maxBatchSize())
	assert.Equal(t, 8, e.workerCount())

	// Zero values leave the current limits alone.
	e.UpdateLimits(0, 0)
	assert.Equal(t, 2, e.maxBatchSize())
	assert.Equal(t, 8, e.workerCount())

	e.UpdateCacheTTL(time.Hour)
	assert.Equal(t, time.Hour, e.cacheTTL())

	payloads := []map[string]any{
		{"host": "a.example.com", "port": 1},
		{"host": "b.example.com", "port": 2},
		{"host": "c.example.com", "port": 3},
	}
	_, err := e.ValidateBatch(context.Background(), Ref{Name: "server-config"}, payloads)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestValidateBatch(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{CacheTTL: time.Minute, Workers: 4})
	s := testSchema()
	require.NoError(t, store.Put(context.Background(), s))

	payloads := []map[string]any{
		{"host": "a.example.com", "port": 80},
		{"host": "", "port": 80},
		{"host": "c.example.com", "port": 99999},
		{"host": "d.example.com", "port": 443},
	}

	result, err := e.ValidateBatch(context.Background(), Ref{Name: "server-config"}, payloads)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.BatchID, "bat-"), "batch ID %q", result.BatchID)
	assert.Equal(t, s.ID, result.SchemaID)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Items, 4)

	// Items stay in input order.
	for i, item := range result.Items {
		assert.Equal(t, i, item.Index)
		assert.Equal(t, 3, item.Checked)
	}
	assert.True(t, result.Items[0].Valid)
	assert.False(t, result.Items[1].Valid)
	assert.False(t, result.Items[2].Valid)
	assert.True(t, result.Items[3].Valid)
}

func TestValidateBatch_Limits(t *testing.T) {
	e, store, _ := newTestEngine(t, Options{MaxBatch: 2})
	require.NoError(t, store.Put(context.Background(), testSchema()))

	_, err := e.ValidateBatch(context.Background(), Ref{Name: "server-config"}, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	payloads := []map[string]any{
		{"host": "a.example.com", "port": 1},
		{"host": "b.example.com", "port": 2},
		{"host": "c.example.com", "port": 3},
	}
	_, err = e.ValidateBatch(context.Background(), Ref{Name: "server-config"}, payloads)
	assert.ErrorIs(t, err, ErrBatchTooLarge)

	_, err = e.ValidateBatch(context.Background(), Ref{Name: "missing"}, payloads[:1])
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}

func TestValidateBatch_SharesVerdicts(t *testing.T) {
	store := registry.NewMemoryStore()
	defer store.Close() //nolint:errcheck

	verdicts := cache.NewMemory(0)
	defer verdicts.Close() //nolint:errcheck

	// One worker makes the cache interleaving deterministic.
	e := New(store, verdicts, nil, Options{CacheTTL: time.Minute, Workers: 1})
	require.NoError(t, store.Put(context.Background(), testSchema()))

	same := map[string]any{"host": "example.com", "port": 8080}
	other := map[string]any{"host": "other.example.com", "port": 9090}

	result, err := e.ValidateBatch(context.Background(), Ref{Name: "server-config"},
		[]map[string]any{same, other, same, same})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Passed)

	stats := verdicts.Stats()
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, int64(2), stats.Hits)
}

func TestValidate_NilWriterSkipsPersistence(t *testing.T) {
	store := registry.NewMemoryStore()
	defer store.Close() //nolint:errcheck

	verdicts := cache.NewMemory(0)
	defer verdicts.Close() //nolint:errcheck

	e := New(store, verdicts, nil, Options{})
	require.NoError(t, store.Put(context.Background(), testSchema()))

	rep, err := e.Validate(context.Background(), Ref{Name: "server-config"}, map[string]any{
		"host": "example.com",
		"port": 8080,
	})
	require.NoError(t, err)
	assert.True(t, rep.Valid)
}

func TestValidateInline(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{CacheTTL: time.Minute})

	doc := &schema.Schema{
		Name: "ad-hoc",
		Fields: map[string]schema.FieldSpec{
			"email": {Type: "string", NotEmpty: true},
		},
	}

	rep, err := e.ValidateInline(context.Background(), doc, map[string]any{"email": "ops@example.com"})
	require.NoError(t, err)
	assert.True(t, rep.Valid)
	assert.Equal(t, 1, rep.Checked)
	assert.Equal(t, doc.Fingerprint(), rep.SchemaID)
	assert.Equal(t, 1, rep.SchemaVersion)

	// Inline schemas never enter the compiled-checker map.
	e.mu.Lock()
	compiled := len(e.compiled)
	e.mu.Unlock()
	assert.Zero(t, compiled)
}

func TestValidateInline_CompileFailure(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	doc := &schema.Schema{
		Name: "broken",
		Fields: map[string]schema.FieldSpec{
			"x": {Type: "no-such-kind"},
		},
	}

	_, err := e.ValidateInline(context.Background(), doc, map[string]any{"x": 1})
	require.ErrorIs(t, err, ErrSchemaInvalid)
}
