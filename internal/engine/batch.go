// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/checkings/checkings/internal/cache"
	"github.com/checkings/checkings/internal/log"
	"github.com/checkings/checkings/internal/metrics"
	"github.com/checkings/checkings/internal/report"
)

// BatchItem is the verdict for one payload of a batch, in input order.
type BatchItem struct {
	Index    int                   `json:"index"`
	Valid    bool                  `json:"valid"`
	Checked  int                   `json:"checked"`
	Failures []report.FieldFailure `json:"failures,omitempty"`
	Digest   string                `json:"digest"`
}

// BatchResult summarizes one batch validation. Batch items are returned
// inline and not persisted as individual reports.
type BatchResult struct {
	BatchID       string        `json:"batch_id"`
	SchemaID      string        `json:"schema_id"`
	SchemaName    string        `json:"schema_name"`
	SchemaVersion int           `json:"schema_version,omitempty"`
	Total         int           `json:"total"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	Duration      time.Duration `json:"duration"`
	Items         []BatchItem   `json:"items"`
}

// ValidateBatch checks every payload against the referenced schema,
// fanning out over the worker pool. The schema is resolved and compiled
// once; each payload still gets its own verdict cache entry.
func (e *Engine) ValidateBatch(ctx context.Context, ref Ref, payloads []map[string]any) (*BatchResult, error) {
	start := time.Now()

	if len(payloads) == 0 {
		return nil, ErrEmptyBatch
	}
	if limit := e.maxBatchSize(); len(payloads) > limit {
		return nil, fmt.Errorf("%w: %d payloads, limit %d", ErrBatchTooLarge, len(payloads), limit)
	}

	s, err := e.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	fields, err := e.compiledFor(s)
	if err != nil {
		return nil, err
	}

	workers := e.workerCount()
	batchID := "bat-" + uuid.NewString()
	ctx = log.ContextWithBatchID(ctx, batchID)

	ctx, span := StartBatchSpan(ctx, len(payloads), workers)
	defer span.End()

	items := make([]BatchItem, len(payloads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, payload := range payloads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			digest := report.PayloadDigest(payload)
			key := cache.Key(s.ID, s.Version, digest)

			verdict, ok := e.verdicts.Get(key)
			if ok {
				metrics.IncCacheHit()
			} else {
				metrics.IncCacheMiss()
				verdict = e.check(s, fields, payload)
				e.verdicts.Set(key, verdict, e.cacheTTL())
			}

			items[i] = BatchItem{
				Index:    i,
				Valid:    verdict.Valid,
				Checked:  verdict.Checked,
				Failures: verdict.Failures,
				Digest:   digest,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{
		BatchID:       batchID,
		SchemaID:      s.ID,
		SchemaName:    s.Name,
		SchemaVersion: s.Version,
		Total:         len(items),
		Duration:      time.Since(start),
		Items:         items,
	}
	for _, item := range items {
		if item.Valid {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	metrics.RecordBatchSize(result.Total)

	lg := log.WithComponentFromContext(ctx, "engine")
	lg.Info().
		Str("event", "batch.completed").
		Str(log.FieldSchemaID, s.ID).
		Int("total", result.Total).
		Int("passed", result.Passed).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("batch validation completed")

	return result, nil
}
