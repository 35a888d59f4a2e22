// SPDX-License-Identifier: MIT

package daemon

import "errors"

// Sentinel errors for daemon wiring and lifecycle misuse.
var (
	ErrMissingLogger     = errors.New("logger is required")
	ErrMissingAPIHandler = errors.New("API handler is required")
	ErrMissingManager    = errors.New("manager is required")
	ErrManagerNotStarted = errors.New("manager not started")
)
