// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Enabled:      false,
		ServiceName:  "test-service",
		ExporterType: "grpc",
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if provider.tp != nil {
		t.Error("disabled config must install the noop provider")
	}

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	if span.IsRecording() {
		t.Error("noop span must not record")
	}
	span.End()
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "test-service",
		ExporterType: "carrier-pigeon",
	})
	if err == nil {
		t.Fatal("expected an error for an unknown exporter type")
	}
	if !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Errorf("error %q does not name the bad exporter type", err)
	}
}

func TestShutdownWithoutProvider(t *testing.T) {
	provider := &Provider{}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown: %v", err)
	}

	// An already-cancelled context is still a no-op.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("noop shutdown with cancelled context: %v", err)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want sdktrace.Sampler
	}{
		{1.0, sdktrace.AlwaysSample()},
		{1.5, sdktrace.AlwaysSample()},
		{0.0, sdktrace.NeverSample()},
		{-0.2, sdktrace.NeverSample()},
		{0.25, sdktrace.TraceIDRatioBased(0.25)},
	}
	for _, tt := range tests {
		got := newSampler(tt.rate)
		if got.Description() != tt.want.Description() {
			t.Errorf("newSampler(%v) = %s, want %s", tt.rate, got.Description(), tt.want.Description())
		}
	}
}
