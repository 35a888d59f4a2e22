package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		requestID string
		want      string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			requestID: "test-id-123",
			want:      "test-id-123",
		},
		{
			name:      "background context",
			ctx:       context.Background(),
			requestID: "req-456",
			want:      "req-456",
		},
		{
			name:      "empty request ID",
			ctx:       context.Background(),
			requestID: "",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRequestID(tt.ctx, tt.requestID)
			got := RequestIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("RequestIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextWithBatchID(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		batchID string
		want    string
	}{
		{
			name:    "nil context",
			ctx:     nil,
			batchID: "batch-123",
			want:    "batch-123",
		},
		{
			name:    "background context",
			ctx:     context.Background(),
			batchID: "batch-456",
			want:    "batch-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithBatchID(tt.ctx, tt.batchID)
			got := BatchIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("BatchIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIDsFromEmptyContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
	if got := RequestIDFromContext(nil); got != "" {
		t.Errorf("RequestIDFromContext(nil) = %q, want empty", got)
	}
	if got := BatchIDFromContext(context.Background()); got != "" {
		t.Errorf("BatchIDFromContext() = %q, want empty", got)
	}
}

func TestWithContextEnrichesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithBatchID(ctx, "batch-3")

	enriched := WithContext(ctx, base)
	enriched.Info().Msg("x")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	for field, want := range map[string]string{
		FieldRequestID: "req-1",
		FieldBatchID:   "batch-3",
	} {
		if entry[field] != want {
			t.Errorf("%s = %v, want %s", field, entry[field], want)
		}
	}
}

func TestWithComponentFromContextCarriesIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	ctx = ContextWithRequestID(ctx, "req-9")

	lg := WithComponentFromContext(ctx, "engine")
	lg.Info().Msg("x")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry[FieldComponent] != "engine" {
		t.Errorf("component = %v, want engine", entry[FieldComponent])
	}
	if entry[FieldRequestID] != "req-9" {
		t.Errorf("request_id = %v, want req-9", entry[FieldRequestID])
	}
}

func TestWithContextWithoutIDsReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	lg := WithContext(context.Background(), base)
	lg.Info().Msg("x")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if _, ok := entry[FieldRequestID]; ok {
		t.Error("request_id should not be present without context value")
	}
}

func TestFromContextFallsBackToBase(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil")
	}
	if l.GetLevel() == zerolog.Disabled {
		t.Error("fallback logger must not be disabled")
	}
}
