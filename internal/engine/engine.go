// SPDX-License-Identifier: MIT

// Package engine executes validations: it resolves schemas from the
// registry, compiles them into checkers, consults the verdict cache and
// persists a report per run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/checkings/checkings/checking"
	"github.com/checkings/checkings/internal/cache"
	"github.com/checkings/checkings/internal/log"
	"github.com/checkings/checkings/internal/metrics"
	"github.com/checkings/checkings/internal/registry"
	"github.com/checkings/checkings/internal/report"
	"github.com/checkings/checkings/internal/schema"
)

// Ref identifies the schema to validate against, by ID or by name. ID
// wins when both are set.
type Ref struct {
	ID   string
	Name string
}

func (r Ref) String() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// Options tune the engine.
type Options struct {
	// CacheTTL bounds how long verdicts stay cached.
	CacheTTL time.Duration
	// Workers sizes the batch worker pool.
	Workers int
	// MaxBatch caps the payload count of one batch call.
	MaxBatch int
}

// Engine validates payloads against registered schemas.
type Engine struct {
	store    registry.Store
	verdicts cache.Verdicts
	reports  *report.Writer

	mu       sync.Mutex
	compiled map[string]checking.Fields
	ttl      time.Duration
	workers  int
	maxBatch int
}

// New creates an engine. A nil reports writer disables persistence,
// which one-shot runs use.
func New(store registry.Store, verdicts cache.Verdicts, reports *report.Writer, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 1000
	}
	return &Engine{
		store:    store,
		verdicts: verdicts,
		reports:  reports,
		compiled: make(map[string]checking.Fields),
		ttl:      opts.CacheTTL,
		workers:  opts.Workers,
		maxBatch: opts.MaxBatch,
	}
}

// Resolve looks the schema up by ID first, then by name.
func (e *Engine) Resolve(ctx context.Context, ref Ref) (*schema.Schema, error) {
	switch {
	case ref.ID != "":
		s, err := e.store.Get(ctx, ref.ID)
		if err != nil {
			return nil, refError(ref.ID, err)
		}
		return s, nil
	case ref.Name != "":
		s, err := e.store.GetByName(ctx, ref.Name)
		if err != nil {
			return nil, refError(ref.Name, err)
		}
		return s, nil
	default:
		return nil, ErrNoSchemaRef
	}
}

// Validate checks one payload against the referenced schema and returns
// the persisted report. Identical payloads within the cache TTL reuse
// the cached verdict instead of rerunning the checkers.
func (e *Engine) Validate(ctx context.Context, ref Ref, payload map[string]any) (*report.Report, error) {
	start := time.Now()

	s, err := e.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	ctx, span := StartValidationSpan(ctx)
	defer span.End()

	fields, err := e.compiledFor(s)
	if err != nil {
		return nil, err
	}

	return e.finish(ctx, s, fields, payload, start)
}

// ValidateInline checks one payload against a schema document supplied
// by the caller, without touching the registry. The schema gets its
// fingerprint ID, so verdicts cache under the same key a registered copy
// would use. Inline schemas are compiled per call and never enter the
// compiled-checker map, which keeps one-off documents from growing it
// without bound.
func (e *Engine) ValidateInline(ctx context.Context, s *schema.Schema, payload map[string]any) (*report.Report, error) {
	start := time.Now()

	s.EnsureID()
	if s.Version <= 0 {
		s.Version = 1
	}

	ctx, span := StartValidationSpan(ctx)
	defer span.End()

	fields, err := schema.Compile(*s)
	if err != nil {
		metrics.IncCompileError()
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, s.ID, err)
	}

	return e.finish(ctx, s, fields, payload, start)
}

// finish runs the cached-verdict path and assembles the report. The
// span is already open; start is when the caller began, so the report
// duration covers resolution and compilation too.
func (e *Engine) finish(ctx context.Context, s *schema.Schema, fields checking.Fields, payload map[string]any, start time.Time) (*report.Report, error) {
	digest := report.PayloadDigest(payload)
	verdict, hit := e.cachedVerdict(s, digest, fields, payload)

	rep := &report.Report{
		ID:            "rep-" + uuid.NewString(),
		SchemaID:      s.ID,
		SchemaName:    s.Name,
		SchemaVersion: s.Version,
		Valid:         verdict.Valid,
		Checked:       verdict.Checked,
		Failures:      verdict.Failures,
		Digest:        digest,
		Duration:      time.Since(start),
		CreatedAt:     time.Now().UTC(),
	}

	e.persist(ctx, rep)

	metrics.RecordValidation(s.Name, verdict.Valid, len(verdict.Failures), rep.Duration)
	EmitValidationObs(ctx, s, verdict, hit)

	lg := log.WithComponentFromContext(ctx, "engine")
	lg.Debug().
		Str("event", "validate.completed").
		Str(log.FieldSchemaID, s.ID).
		Str(log.FieldReportID, rep.ID).
		Bool("valid", verdict.Valid).
		Bool("cache_hit", hit).
		Msg("validation completed")

	return rep, nil
}

// cachedVerdict returns the verdict for one payload, from the cache when
// fresh, otherwise by running the checkers and caching the result.
func (e *Engine) cachedVerdict(s *schema.Schema, digest string, fields checking.Fields, payload map[string]any) (report.Verdict, bool) {
	key := cache.Key(s.ID, s.Version, digest)

	if verdict, ok := e.verdicts.Get(key); ok {
		metrics.IncCacheHit()
		return verdict, true
	}
	metrics.IncCacheMiss()

	verdict := e.check(s, fields, payload)
	e.verdicts.Set(key, verdict, e.cacheTTL())
	return verdict, false
}

// check runs the compiled checkers over one payload. Absent fields
// resolve by their spec before the checker walk: required fields fail,
// defaulted fields resolve the default, and optional fields with neither
// are skipped.
func (e *Engine) check(s *schema.Schema, fields checking.Fields, payload map[string]any) report.Verdict {
	run := make(checking.Fields, len(fields))
	var missing []string
	for name, c := range fields {
		if _, ok := payload[name]; ok {
			run[name] = c
			continue
		}
		spec := s.Fields[name]
		switch {
		case spec.Required:
			missing = append(missing, name)
		case spec.HasDefault():
			run[name] = c
		}
	}
	sort.Strings(missing)

	_, err := run.Validate(payload)
	verdict := report.Verdict{Valid: err == nil && len(missing) == 0, Checked: len(run)}
	if err != nil {
		verdict.Failures = failuresFrom(err)
	}
	for _, name := range missing {
		verdict.Failures = append(verdict.Failures, report.FieldFailure{
			Field:    name,
			Messages: []string{"missing required field"},
		})
	}
	return verdict
}

// compiledFor returns the checkers for one schema version, compiling on
// first use. The registry rejects schemas that do not compile, so a
// failure here means the stored schema predates a checker change.
func (e *Engine) compiledFor(s *schema.Schema) (checking.Fields, error) {
	key := s.ID + "@" + strconv.Itoa(s.Version)

	e.mu.Lock()
	defer e.mu.Unlock()

	if fields, ok := e.compiled[key]; ok {
		return fields, nil
	}

	fields, err := schema.Compile(*s)
	if err != nil {
		metrics.IncCompileError()
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, s.ID, err)
	}
	e.compiled[key] = fields

	lg := log.WithComponent("engine")
	lg.Debug().
		Str("event", "schema.compiled").
		Str(log.FieldSchemaID, s.ID).
		Int("version", s.Version).
		Int("fields", len(fields)).
		Msg("schema compiled")

	return fields, nil
}

// Invalidate drops the compiled checkers of every version of one
// schema. The API calls this after updates and deletes; verdicts need no
// purge because the version is part of their cache key.
func (e *Engine) Invalidate(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key := range e.compiled {
		if strings.HasPrefix(key, id+"@") {
			delete(e.compiled, key)
		}
	}
}

// UpdateLimits applies reloaded batch settings.
func (e *Engine) UpdateLimits(maxBatch, workers int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if maxBatch > 0 {
		e.maxBatch = maxBatch
	}
	if workers > 0 {
		e.workers = workers
	}
}

// UpdateCacheTTL applies a reloaded verdict TTL.
func (e *Engine) UpdateCacheTTL(ttl time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ttl = ttl
}

func (e *Engine) cacheTTL() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ttl
}

func (e *Engine) workerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workers
}

func (e *Engine) maxBatchSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxBatch
}

// persist writes the report, logging instead of failing: a validation
// outcome is still delivered when the disk is not.
func (e *Engine) persist(ctx context.Context, rep *report.Report) {
	if e.reports == nil {
		return
	}

	_, err := e.reports.Write(rep)
	metrics.RecordReportWrite(err)
	if err != nil {
		lg := log.WithComponentFromContext(ctx, "engine")
		lg.Error().
			Err(err).
			Str("event", "report.write_failed").
			Str(log.FieldReportID, rep.ID).
			Msg("failed to persist validation report")
	}
}

// failuresFrom flattens the error tree of Fields.Validate into one
// failure entry per field.
func failuresFrom(err error) []report.FieldFailure {
	subs := []error{err}
	// Fields.Validate joins per-field errors one level deep. CheckError
	// also implements Unwrap() []error, so only the outer join may be
	// flattened here.
	switch err.(type) {
	case *checking.CheckError, *checking.UnknownFieldError:
	default:
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			subs = joined.Unwrap()
		}
	}

	failures := make([]report.FieldFailure, 0, len(subs))
	for _, sub := range subs {
		switch fe := sub.(type) {
		case *checking.CheckError:
			causes := fe.Unwrap()
			msgs := make([]string, len(causes))
			for i, cause := range causes {
				msgs[i] = cause.Error()
			}
			failures = append(failures, report.FieldFailure{
				Field:    fe.Name,
				Value:    fe.Value,
				Messages: msgs,
			})
		case *checking.UnknownFieldError:
			failures = append(failures, report.FieldFailure{
				Field:    fe.Name,
				Messages: []string{"unknown field"},
			})
		default:
			failures = append(failures, report.FieldFailure{
				Messages: []string{sub.Error()},
			})
		}
	}
	return failures
}

func refError(ref string, err error) error {
	if errors.Is(err, registry.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSchemaNotFound, ref)
	}
	return fmt.Errorf("resolve schema %s: %w", ref, err)
}
