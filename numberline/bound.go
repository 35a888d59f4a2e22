// SPDX-License-Identifier: MIT

// Package numberline implements sets of real numbers as unions of ranges.
//
// A Line is built from Ranges, each delimited by two Bounds. Lines support
// union, subtraction, complement and membership checks, and can render a
// human-readable explanation of why a value falls outside the set.
package numberline

import (
	"math"
	"strconv"
)

// Bound is one endpoint of a range. Bounds at plus or minus infinity are
// always stored as inclusive so that infinity compares equal to infinity.
type Bound struct {
	Value     float64
	Inclusive bool
}

// NewBound returns a bound for value. Infinite values are forced inclusive.
func NewBound(value float64, inclusive bool) Bound {
	if math.IsInf(value, 0) {
		inclusive = true
	}
	return Bound{Value: value, Inclusive: inclusive}
}

// Infinity and MinusInfinity delimit the full number line.
var (
	Infinity      = Bound{Value: math.Inf(1), Inclusive: true}
	MinusInfinity = Bound{Value: math.Inf(-1), Inclusive: true}
)

// lessOrEq reports whether b lies at or below other. Equal values only
// count when both bounds are inclusive.
func (b Bound) lessOrEq(other Bound) bool {
	if b.Value < other.Value {
		return true
	}
	return b.Inclusive && other.Inclusive && b.Value == other.Value
}

// greaterOrEq reports whether b lies at or above other.
func (b Bound) greaterOrEq(other Bound) bool {
	if b.Value > other.Value {
		return true
	}
	return b.Inclusive && other.Inclusive && b.Value == other.Value
}

// lessOrEqValue reports whether the bound admits v from below.
func (b Bound) lessOrEqValue(v float64) bool {
	if b.Value < v {
		return true
	}
	return b.Inclusive && b.Value == v
}

// greaterOrEqValue reports whether the bound admits v from above.
func (b Bound) greaterOrEqValue(v float64) bool {
	if b.Value > v {
		return true
	}
	return b.Inclusive && b.Value == v
}

// formatValue renders a float the way failure messages expect: integral
// values without a decimal point, infinities as inf and -inf.
func formatValue(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
