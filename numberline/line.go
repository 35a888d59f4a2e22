// SPDX-License-Identifier: MIT

package numberline

import (
	"fmt"
	"sort"
	"strings"
)

// Line is a set of real numbers stored as a union of ranges. The zero value
// is the empty set. Lines are immutable: every operation returns a new Line
// with its ranges simplified, merged and sorted by lower bound.
type Line struct {
	ranges []Range
}

// NewLine builds a line from the given ranges.
func NewLine(ranges ...Range) Line {
	return Line{ranges: simplify(ranges)}
}

// Empty returns a line containing no values.
func Empty() Line {
	return Line{}
}

// Full returns a line containing every value.
func Full() Line {
	return Line{ranges: []Range{FullRange}}
}

// Include returns a line spanning start to end.
func Include(start, end Bound) (Line, error) {
	if start.greaterOrEq(end) {
		return Line{}, fmt.Errorf("start value (%s) cannot be bigger than end value (%s)",
			formatValue(start.Value), formatValue(end.Value))
	}
	r, err := NewRange(start, end)
	if err != nil {
		return Line{}, err
	}
	return NewLine(r), nil
}

// IncludeFloats returns a line spanning start to end with the given
// inclusivity on each side.
func IncludeFloats(start, end float64, startInclusive, endInclusive bool) (Line, error) {
	return Include(NewBound(start, startInclusive), NewBound(end, endInclusive))
}

// Exclude returns a line spanning everything outside start to end.
func Exclude(start, end Bound) (Line, error) {
	if start.greaterOrEq(end) {
		return Line{}, fmt.Errorf("start value (%s) cannot be bigger than end value (%s)",
			formatValue(start.Value), formatValue(end.Value))
	}
	if start == MinusInfinity && end == Infinity {
		return Empty(), nil
	}
	return NewLine(
		Range{Lower: MinusInfinity, Upper: start},
		Range{Lower: end, Upper: Infinity},
	), nil
}

// ExcludeFloats returns a line spanning everything outside start to end.
// The inclusivity flags apply to the surviving pieces, so passing false
// removes the boundary value itself from the line as well.
func ExcludeFloats(start, end float64, startInclusive, endInclusive bool) (Line, error) {
	return Exclude(NewBound(start, startInclusive), NewBound(end, endInclusive))
}

// GreaterThan returns a line of all values above the bound.
func GreaterThan(value Bound) (Line, error) {
	return Include(value, Infinity)
}

// GreaterThanFloat returns a line of all values above v.
func GreaterThanFloat(v float64, inclusive bool) (Line, error) {
	return GreaterThan(NewBound(v, inclusive))
}

// LessThan returns a line of all values below the bound.
func LessThan(value Bound) (Line, error) {
	return Include(MinusInfinity, value)
}

// LessThanFloat returns a line of all values below v.
func LessThanFloat(v float64, inclusive bool) (Line, error) {
	return LessThan(NewBound(v, inclusive))
}

// Positive returns a line of all values above zero.
func Positive(includeZero bool) Line {
	l, _ := GreaterThanFloat(0, includeZero)
	return l
}

// Negative returns a line of all values below zero.
func Negative(includeZero bool) Line {
	l, _ := LessThanFloat(0, includeZero)
	return l
}

// Ranges returns a copy of the simplified ranges, sorted by lower bound.
func (l Line) Ranges() []Range {
	out := make([]Range, len(l.ranges))
	copy(out, l.ranges)
	return out
}

// IsEmpty reports whether the line contains no values.
func (l Line) IsEmpty() bool {
	return len(l.ranges) == 0
}

// Contains reports whether v is in the line.
func (l Line) Contains(v float64) bool {
	for _, r := range l.ranges {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

// Union returns the combination of both lines.
func (l Line) Union(other Line) Line {
	combined := make([]Range, 0, len(l.ranges)+len(other.ranges))
	combined = append(combined, l.ranges...)
	combined = append(combined, other.ranges...)
	return Line{ranges: simplify(combined)}
}

// UnionRange returns the line extended by r.
func (l Line) UnionRange(r Range) Line {
	return Line{ranges: simplify(append(l.Ranges(), r))}
}

// UnionValue returns the line extended by the single value v.
func (l Line) UnionValue(v float64) Line {
	b := NewBound(v, true)
	return l.UnionRange(Range{Lower: b, Upper: b})
}

// Subtract returns the line with every value of other removed.
func (l Line) Subtract(other Line) Line {
	current := l.Ranges()
	for _, cut := range other.ranges {
		current = subtractRange(current, cut)
	}
	return Line{ranges: simplify(current)}
}

// SubtractRange returns the line with the values of r removed.
func (l Line) SubtractRange(r Range) Line {
	return Line{ranges: simplify(subtractRange(l.Ranges(), r))}
}

// SubtractValue returns the line with the single value v removed.
func (l Line) SubtractValue(v float64) Line {
	b := NewBound(v, true)
	return l.SubtractRange(Range{Lower: b, Upper: b})
}

// Invert returns the complement of the line.
func (l Line) Invert() Line {
	return Full().Subtract(l)
}

// Check returns nil when v is in the line, otherwise an error describing
// where v should have been.
func (l Line) Check(v float64) error {
	if l.Contains(v) {
		return nil
	}
	if len(l.ranges) == 1 {
		r := l.ranges[0]
		switch {
		case r.Lower == MinusInfinity:
			orEqual := ""
			if r.Upper.Inclusive {
				orEqual = "or equal to "
			}
			return fmt.Errorf("%s should be smaller than %s%s", formatValue(v), orEqual, formatValue(r.Upper.Value))
		case r.Upper == Infinity:
			orEqual := ""
			if r.Lower.Inclusive {
				orEqual = "or equal to "
			}
			return fmt.Errorf("%s should be bigger than %s%s", formatValue(v), orEqual, formatValue(r.Lower.Value))
		default:
			return fmt.Errorf("%s should be in the range %s", formatValue(v), r)
		}
	}
	return fmt.Errorf("%s should be in: %s", formatValue(v), l)
}

// String renders the line as NumberLine(...) with one interval per range.
func (l Line) String() string {
	parts := make([]string, len(l.ranges))
	for i, r := range l.ranges {
		parts[i] = r.String()
	}
	return "NumberLine(" + strings.Join(parts, ", ") + ")"
}

// subtractRange carves cut out of every range in ranges.
func subtractRange(ranges []Range, cut Range) []Range {
	out := make([]Range, 0, len(ranges)+1)
	for _, r := range ranges {
		out = append(out, r.Subtract(cut)...)
	}
	return out
}

// simplify drops empty ranges, merges overlapping or touching ones until no
// further merge applies, and sorts the result by lower bound.
func simplify(ranges []Range) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.IsEmpty() {
			out = append(out, r)
		}
	}

	merged := true
	for merged {
		merged = false
	scan:
		for i := 0; i < len(out)-1; i++ {
			for j := i + 1; j < len(out); j++ {
				u := out[i].Union(out[j])
				if len(u) == 1 {
					out[i] = u[0]
					out = append(out[:j], out[j+1:]...)
					merged = true
					break scan
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Lower.Value < out[j].Lower.Value })
	if len(out) == 0 {
		return nil
	}
	return out
}
