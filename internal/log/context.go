// Package log provides structured logging utilities.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	batchIDKey   ctxKey = "batch_id"
)

// identityFields orders the identity fields a context can carry. One
// table keeps the store, extract and enrich paths in sync.
var identityFields = []struct {
	key   ctxKey
	field string
}{
	{requestIDKey, FieldRequestID},
	{batchIDKey, FieldBatchID},
}

func withID(ctx context.Context, key ctxKey, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, id)
}

func idFrom(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID stores the request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, requestIDKey, id)
}

// ContextWithBatchID stores the batch ID in the context.
func ContextWithBatchID(ctx context.Context, id string) context.Context {
	return withID(ctx, batchIDKey, id)
}

// RequestIDFromContext extracts the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestIDKey)
}

// BatchIDFromContext extracts the batch ID, or "" when absent.
func BatchIDFromContext(ctx context.Context) string {
	return idFrom(ctx, batchIDKey)
}

// WithContext enriches the supplied logger with every identity field the
// context carries.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	builder := logger.With()
	enriched := false
	for _, f := range identityFields {
		if id := idFrom(ctx, f.key); id != "" {
			builder = builder.Str(f.field, id)
			enriched = true
		}
	}
	if !enriched {
		return logger
	}
	return builder.Logger()
}

// FromContext returns the logger stored in the context, or the base
// logger when none is.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := Base()
		return &l
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		b := Base()
		return &b
	}
	return l
}

// WithComponentFromContext returns a component logger enriched with the
// context's identity fields, so request and batch IDs follow the work
// into every subsystem that logs.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	l := WithContext(ctx, *FromContext(ctx))
	return l.With().Str(FieldComponent, component).Logger()
}
