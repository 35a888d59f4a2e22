// SPDX-License-Identifier: MIT

// Package report defines validation reports and their atomic persistence.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// FieldFailure is one field's verdict: every constraint message the value
// violated.
type FieldFailure struct {
	Field    string   `json:"field"`
	Value    any      `json:"value,omitempty"`
	Messages []string `json:"messages"`
}

// Verdict is the cacheable core of a report: the outcome without the
// per-run identity. Two identical payloads against the same schema
// version share a verdict.
type Verdict struct {
	Valid    bool           `json:"valid"`
	Checked  int            `json:"checked"`
	Failures []FieldFailure `json:"failures,omitempty"`
}

// Report is the full record of one validation run.
type Report struct {
	ID            string         `json:"id"`
	SchemaID      string         `json:"schema_id"`
	SchemaName    string         `json:"schema_name"`
	SchemaVersion int            `json:"schema_version,omitempty"`
	Valid         bool           `json:"valid"`
	Checked       int            `json:"checked"`
	Failures      []FieldFailure `json:"failures,omitempty"`
	Digest        string         `json:"digest"`
	Duration      time.Duration  `json:"duration"`
	CreatedAt     time.Time      `json:"created_at"`
}

// PayloadDigest returns a stable hash of a payload. json.Marshal sorts
// map keys, so key order in the incoming document does not matter.
func PayloadDigest(payload map[string]any) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		// Payloads arrive through JSON or YAML decoding, so their values
		// always marshal; anything else still gets a stable fallback.
		raw = []byte(err.Error())
	}
	sum := sha256.Sum256(raw)
	return "pay-" + hex.EncodeToString(sum[:])[:16]
}
