// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys, frozen. Payload contents never become span
// attributes; only schema identity and outcome counts do. The engine
// enforces this with a whitelist over exactly these keys.
const (
	AttrSchemaID      = "checkings.schema.id"
	AttrSchemaName    = "checkings.schema.name"
	AttrSchemaVersion = "checkings.schema.version"

	AttrValid    = "checkings.validation.valid"
	AttrChecked  = "checkings.validation.checked"
	AttrFailures = "checkings.validation.failures"
	AttrCacheHit = "checkings.validation.cache_hit"

	AttrBatchSize    = "checkings.batch.size"
	AttrBatchWorkers = "checkings.batch.workers"
)

// SchemaAttributes builds the identity attributes of one schema. Empty
// fields are omitted so a lookup by name does not record a blank ID.
func SchemaAttributes(id, name string, version int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if id != "" {
		attrs = append(attrs, attribute.String(AttrSchemaID, id))
	}
	if name != "" {
		attrs = append(attrs, attribute.String(AttrSchemaName, name))
	}
	if version > 0 {
		attrs = append(attrs, attribute.Int(AttrSchemaVersion, version))
	}
	return attrs
}

// ValidationAttributes builds the outcome attributes of one validation.
func ValidationAttributes(valid bool, checked, failures int, cacheHit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(AttrValid, valid),
		attribute.Int(AttrChecked, checked),
		attribute.Int(AttrFailures, failures),
		attribute.Bool(AttrCacheHit, cacheHit),
	}
}

// BatchAttributes builds the fan-out attributes of one batch validation.
func BatchAttributes(size, workers int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrBatchSize, size),
		attribute.Int(AttrBatchWorkers, workers),
	}
}
