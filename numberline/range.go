// SPDX-License-Identifier: MIT

package numberline

import "fmt"

// Range is a contiguous span between two bounds. The zero Range spans only
// the number zero; use NewRange or the package variables instead.
type Range struct {
	Lower Bound
	Upper Bound
}

// EmptyRange contains no values, FullRange contains every value.
var (
	EmptyRange = Range{Lower: Infinity, Upper: MinusInfinity}
	FullRange  = Range{Lower: MinusInfinity, Upper: Infinity}
)

// NewRange builds a range from lower to upper. Infinite bounds are
// normalized to inclusive. An inverted pair is rejected.
func NewRange(lower, upper Bound) (Range, error) {
	lower = NewBound(lower.Value, lower.Inclusive)
	upper = NewBound(upper.Value, upper.Inclusive)
	if !lower.lessOrEq(upper) {
		return Range{}, fmt.Errorf("lower bound (%s) cannot be bigger than upper bound (%s)",
			formatValue(lower.Value), formatValue(upper.Value))
	}
	return Range{Lower: lower, Upper: upper}, nil
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return r.Lower.lessOrEqValue(v) && r.Upper.greaterOrEqValue(v)
}

// IsEmpty reports whether the range admits no values at all.
func (r Range) IsEmpty() bool {
	return !r.Lower.lessOrEq(r.Upper)
}

// Union merges r with other. Overlapping or touching ranges collapse into
// one element, disjoint ranges are returned unchanged as two elements. Two
// ranges touching at a value that neither includes stay disjoint.
func (r Range) Union(other Range) []Range {
	disjoint := r.Lower.Value > other.Upper.Value ||
		r.Upper.Value < other.Lower.Value ||
		(r.Lower.Value == other.Upper.Value && !r.Lower.Inclusive && !other.Upper.Inclusive) ||
		(r.Upper.Value == other.Lower.Value && !r.Upper.Inclusive && !other.Lower.Inclusive)
	if disjoint {
		return []Range{r, other}
	}

	var lower Bound
	switch {
	case r.Lower.Value < other.Lower.Value:
		lower = r.Lower
	case r.Lower.Value > other.Lower.Value:
		lower = other.Lower
	default:
		lower = Bound{Value: r.Lower.Value, Inclusive: r.Lower.Inclusive || other.Lower.Inclusive}
	}

	var upper Bound
	switch {
	case r.Upper.Value > other.Upper.Value:
		upper = r.Upper
	case r.Upper.Value < other.Upper.Value:
		upper = other.Upper
	default:
		upper = Bound{Value: r.Upper.Value, Inclusive: r.Upper.Inclusive || other.Upper.Inclusive}
	}

	return []Range{{Lower: lower, Upper: upper}}
}

// Subtract removes other from r. The result holds zero, one or two ranges:
// zero when other covers r entirely, two when other cuts a hole into the
// middle of r.
func (r Range) Subtract(other Range) []Range {
	// The cut bounds flip inclusivity: removing a closed range leaves open
	// edges behind and vice versa.
	lowerCut := NewBound(other.Lower.Value, !other.Lower.Inclusive)
	upperCut := NewBound(other.Upper.Value, !other.Upper.Inclusive)

	switch {
	case r.Lower.greaterOrEq(upperCut) || r.Upper.lessOrEq(lowerCut):
		return []Range{r}
	case r.Lower.lessOrEq(lowerCut) && r.Upper.greaterOrEq(upperCut):
		return []Range{
			{Lower: r.Lower, Upper: lowerCut},
			{Lower: upperCut, Upper: r.Upper},
		}
	case r.Lower.lessOrEq(lowerCut) && r.Upper.lessOrEq(other.Upper):
		return []Range{{Lower: r.Lower, Upper: lowerCut}}
	case r.Lower.greaterOrEq(other.Lower) && r.Upper.greaterOrEq(upperCut):
		return []Range{{Lower: upperCut, Upper: r.Upper}}
	default:
		// other covers r entirely
		return nil
	}
}

// String renders the range in interval notation, with bracket style chosen
// by inclusivity. Infinite ends always render as open.
func (r Range) String() string {
	lower := "("
	if r.Lower.Inclusive && r.Lower.Value != MinusInfinity.Value {
		lower = "["
	}
	upper := ")"
	if r.Upper.Inclusive && r.Upper.Value != Infinity.Value {
		upper = "]"
	}
	return lower + formatValue(r.Lower.Value) + ", " + formatValue(r.Upper.Value) + upper
}
