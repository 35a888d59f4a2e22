// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus metrics of the validation
// service. All metrics are registered through promauto at package load;
// handlers and the engine record through the helper functions below.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Validation metrics
	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkings_validations_total",
		Help: "Total validation runs by schema and outcome",
	}, []string{"schema", "outcome"}) // outcome=valid|invalid|error

	validationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkings_validation_duration_seconds",
		Help:    "Time spent validating one payload against a schema",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs .. ~26s
	}, []string{"schema"})

	fieldFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkings_field_failures_total",
		Help: "Total field-level constraint failures by schema",
	}, []string{"schema"})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkings_batch_size",
		Help:    "Number of payloads per batch validation request",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 .. ~16k
	})

	// Schema registry metrics
	schemaOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkings_schema_ops_total",
		Help: "Schema registry operations by op and outcome",
	}, []string{"op", "outcome"}) // op=create|update|delete|get|list

	schemasLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkings_schemas_loaded",
		Help: "Number of schemas currently stored",
	})

	compileErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkings_schema_compile_errors_total",
		Help: "Total schema compilation failures",
	})

	// Verdict cache metrics
	verdictCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkings_verdict_cache_total",
		Help: "Verdict cache lookups by outcome",
	}, []string{"outcome"}) // outcome=hit|miss

	// Store metrics
	storeOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkings_store_op_duration_seconds",
		Help:    "Schema store operation latencies",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "op"})

	storeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkings_store_errors_total",
		Help: "Schema store operation failures",
	}, []string{"backend", "op"})

	// Report metrics
	reportsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkings_reports_written_total",
		Help: "Total validation reports persisted to disk",
	})

	reportWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkings_report_write_errors_total",
		Help: "Total report persistence failures",
	})
)

// RecordValidation records one finished validation run.
func RecordValidation(schema string, valid bool, failures int, d time.Duration) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	validationsTotal.WithLabelValues(schema, outcome).Inc()
	validationDuration.WithLabelValues(schema).Observe(d.Seconds())
	if failures > 0 {
		fieldFailuresTotal.WithLabelValues(schema).Add(float64(failures))
	}
}

// RecordValidationError records a run that failed before producing a
// verdict, such as an unknown schema or a store failure.
func RecordValidationError(schema string) {
	validationsTotal.WithLabelValues(schema, "error").Inc()
}

// RecordBatchSize records the payload count of one batch request.
func RecordBatchSize(n int) { batchSize.Observe(float64(n)) }

// IncSchemaOp counts a registry operation.
func IncSchemaOp(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	schemaOpsTotal.WithLabelValues(op, outcome).Inc()
}

// SetSchemasLoaded publishes the current schema count.
func SetSchemasLoaded(n int) { schemasLoaded.Set(float64(n)) }

// IncCompileError counts a schema that failed to compile.
func IncCompileError() { compileErrors.Inc() }

// IncCacheHit and IncCacheMiss count verdict cache lookups.
func IncCacheHit()  { verdictCacheTotal.WithLabelValues("hit").Inc() }
func IncCacheMiss() { verdictCacheTotal.WithLabelValues("miss").Inc() }

// ObserveStoreOp records the latency of one store call and counts its
// failure, if any.
func ObserveStoreOp(backend, op string, d time.Duration, err error) {
	storeOpDuration.WithLabelValues(backend, op).Observe(d.Seconds())
	if err != nil {
		storeErrors.WithLabelValues(backend, op).Inc()
	}
}

// RecordReportWrite counts one report persistence attempt.
func RecordReportWrite(err error) {
	if err != nil {
		reportWriteErrors.Inc()
		return
	}
	reportsWritten.Inc()
}
