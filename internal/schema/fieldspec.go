// SPDX-License-Identifier: MIT

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// FieldSpec declares the checks for one field. Every knob is optional;
// the knobs that are set combine into a single checker. Knob combinations
// that cannot hold at once are rejected at compile time.
type FieldSpec struct {
	// Type restricts the value kind: int, float, number (int or float),
	// string, bool, list, map, struct or func, with the usual aliases.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Elem restricts the element kind of a list field.
	Elem string `json:"elem,omitempty" yaml:"elem,omitempty"`
	// Literals restricts the value to an exact set.
	Literals []any `json:"literals,omitempty" yaml:"literals,omitempty"`

	// Default is applied when the field is absent. ReplaceNull extends
	// that to an explicit null. Required forces the field to be supplied
	// and cannot be combined with a default. A field with neither is
	// optional: absent values are skipped.
	Default     any  `json:"default,omitempty" yaml:"default,omitempty"`
	ReplaceNull bool `json:"replace_null,omitempty" yaml:"replace_null,omitempty"`
	Required    bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Numeric bounds. Min/Max are inclusive unless the exclusive flag is
	// set; Range is a closed interval, Between an open one. Positive and
	// Negative exclude zero unless IncludeZero is set. At most one of
	// these families may be used per field.
	Min          *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	ExclusiveMin bool      `json:"exclusive_min,omitempty" yaml:"exclusive_min,omitempty"`
	ExclusiveMax bool      `json:"exclusive_max,omitempty" yaml:"exclusive_max,omitempty"`
	Range        []float64 `json:"range,omitempty" yaml:"range,omitempty"`
	Between      []float64 `json:"between,omitempty" yaml:"between,omitempty"`
	Positive     bool      `json:"positive,omitempty" yaml:"positive,omitempty"`
	Negative     bool      `json:"negative,omitempty" yaml:"negative,omitempty"`
	IncludeZero  bool      `json:"include_zero,omitempty" yaml:"include_zero,omitempty"`
	NonZero      bool      `json:"non_zero,omitempty" yaml:"non_zero,omitempty"`
	Port         bool      `json:"port,omitempty" yaml:"port,omitempty"`

	Even bool `json:"even,omitempty" yaml:"even,omitempty"`
	Odd  bool `json:"odd,omitempty" yaml:"odd,omitempty"`

	// Length constraints for strings, lists and maps.
	Length    *int `json:"length,omitempty" yaml:"length,omitempty"`
	MinLength *int `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	NotEmpty  bool `json:"not_empty,omitempty" yaml:"not_empty,omitempty"`

	// String constraints.
	StartsWith string `json:"starts_with,omitempty" yaml:"starts_with,omitempty"`
	EndsWith   string `json:"ends_with,omitempty" yaml:"ends_with,omitempty"`
	Contains   string `json:"contains,omitempty" yaml:"contains,omitempty"`
	Pattern    string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Hostname   bool   `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	URL        bool   `json:"url,omitempty" yaml:"url,omitempty"`
	NFC        bool   `json:"nfc,omitempty" yaml:"nfc,omitempty"`
	Path       bool   `json:"path,omitempty" yaml:"path,omitempty"`
	Dir        bool   `json:"dir,omitempty" yaml:"dir,omitempty"`
	File       bool   `json:"file,omitempty" yaml:"file,omitempty"`

	Sorted bool `json:"sorted,omitempty" yaml:"sorted,omitempty"`
}

// HasDefault reports whether the spec resolves absent values.
func (f FieldSpec) HasDefault() bool {
	return f.Default != nil
}

// contradictions rejects knob combinations that cannot hold at once, so
// a schema that compiles never contains a field no value can satisfy.
func (f FieldSpec) contradictions() error {
	var numeric []string
	if f.Min != nil || f.Max != nil {
		numeric = append(numeric, "min/max")
	}
	if f.Range != nil {
		numeric = append(numeric, "range")
	}
	if f.Between != nil {
		numeric = append(numeric, "between")
	}
	if f.Positive {
		numeric = append(numeric, "positive")
	}
	if f.Negative {
		numeric = append(numeric, "negative")
	}
	if f.NonZero {
		numeric = append(numeric, "non_zero")
	}
	if f.Port {
		numeric = append(numeric, "port")
	}
	if len(numeric) > 1 {
		return fmt.Errorf("contradictory numeric constraints: %s", strings.Join(numeric, " and "))
	}

	if f.IncludeZero && !f.Positive && !f.Negative {
		return errors.New("include_zero needs positive or negative")
	}
	if f.Even && f.Odd {
		return errors.New("a number cannot be both even and odd")
	}
	if f.Length != nil && (f.MinLength != nil || f.MaxLength != nil) {
		return errors.New("contradictory length constraints: length and min_length/max_length")
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		return errors.New("min_length exceeds max_length")
	}
	if f.ReplaceNull && !f.HasDefault() {
		return errors.New("replace_null needs a default")
	}
	if f.Required && f.HasDefault() {
		return errors.New("required conflicts with default")
	}
	if f.Port && f.Elem != "" {
		return errors.New("elem cannot be combined with port")
	}
	return nil
}
