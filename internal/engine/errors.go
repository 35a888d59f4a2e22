// SPDX-License-Identifier: MIT

package engine

import "errors"

var (
	// ErrNoSchemaRef means the request named neither a schema ID nor a
	// schema name.
	ErrNoSchemaRef = errors.New("no schema reference")

	// ErrSchemaNotFound means the referenced schema is not registered.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrSchemaInvalid means the stored schema does not compile into
	// checkers.
	ErrSchemaInvalid = errors.New("schema does not compile")

	// ErrEmptyBatch means a batch call carried no payloads.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrBatchTooLarge means a batch call exceeded the configured
	// payload limit.
	ErrBatchTooLarge = errors.New("batch too large")
)
