// SPDX-License-Identifier: MIT

package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/checkings/checkings/internal/log"
	"github.com/checkings/checkings/internal/report"
	"github.com/checkings/checkings/internal/schema"
	"github.com/checkings/checkings/internal/telemetry"
)

// allowedAttributes is the engine's whitelist over the telemetry
// vocabulary. A key outside this set never reaches a span.
var allowedAttributes = map[string]bool{
	telemetry.AttrSchemaID:      true,
	telemetry.AttrSchemaName:    true,
	telemetry.AttrSchemaVersion: true,
	telemetry.AttrValid:         true,
	telemetry.AttrChecked:       true,
	telemetry.AttrFailures:      true,
	telemetry.AttrCacheHit:      true,
	telemetry.AttrBatchSize:     true,
	telemetry.AttrBatchWorkers:  true,
}

// StartValidationSpan opens the span for one validation. The tracer is
// looked up per call so a provider installed later still applies.
func StartValidationSpan(ctx context.Context) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer("checkings.engine")
	return tracer.Start(ctx, "checkings.validate")
}

// StartBatchSpan opens the span for one batch validation.
func StartBatchSpan(ctx context.Context, size, workers int) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer("checkings.engine")
	ctx, span := tracer.Start(ctx, "checkings.validate_batch")
	setAllowed(span, telemetry.BatchAttributes(size, workers))
	return ctx, span
}

// EmitValidationObs records one validation outcome on the current span
// and the engine meter.
func EmitValidationObs(ctx context.Context, s *schema.Schema, v report.Verdict, cacheHit bool) {
	span := trace.SpanFromContext(ctx)
	meter := otel.GetMeterProvider().Meter("checkings.engine")

	outcome := "valid"
	if !v.Valid {
		outcome = "invalid"
	}

	validationTotal, _ := meter.Int64Counter("checkings_validation_total",
		metric.WithDescription("Total validations executed"))
	validationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("schema", s.Name),
		attribute.String("outcome", outcome),
		attribute.Bool("cache_hit", cacheHit),
	))

	attrs := telemetry.SchemaAttributes(s.ID, s.Name, s.Version)
	attrs = append(attrs, telemetry.ValidationAttributes(v.Valid, v.Checked, len(v.Failures), cacheHit)...)
	setAllowed(span, attrs)
}

// setAllowed applies attributes after checking each against the
// whitelist. A rejected key drops the whole set and logs, so a drift
// between the vocabulary and the whitelist surfaces immediately.
func setAllowed(span trace.Span, attrs []attribute.KeyValue) {
	for _, kv := range attrs {
		if !allowedAttributes[string(kv.Key)] {
			lg := log.WithComponent("engine")
			lg.Error().
				Str("key", string(kv.Key)).
				Str("event", "observe.attribute_rejected").
				Msg("span attribute not in whitelist")
			return
		}
	}
	span.SetAttributes(attrs...)
}
