// SPDX-License-Identifier: MIT

package numberline

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewLineSimplifies(t *testing.T) {
	tests := []struct {
		name string
		in   []Range
		want []Range
	}{
		{
			name: "merges overlap",
			in:   []Range{{incl(0), incl(10)}, {incl(5), incl(15)}},
			want: []Range{{incl(0), incl(15)}},
		},
		{
			name: "drops empty ranges",
			in:   []Range{EmptyRange, {incl(0), incl(1)}, EmptyRange},
			want: []Range{{incl(0), incl(1)}},
		},
		{
			name: "only empty ranges",
			in:   []Range{EmptyRange, EmptyRange},
			want: nil,
		},
		{
			name: "sorts by lower bound",
			in:   []Range{{incl(5), incl(6)}, {incl(0), incl(1)}},
			want: []Range{{incl(0), incl(1)}, {incl(5), incl(6)}},
		},
		{
			name: "chain collapse",
			in:   []Range{{incl(0), incl(4)}, {incl(8), incl(12)}, {incl(3), incl(9)}},
			want: []Range{{incl(0), incl(12)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLine(tt.in...).Ranges()
			if len(tt.want) == 0 && len(got) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("NewLine() ranges (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLineContains(t *testing.T) {
	l := NewLine(Range{incl(0), incl(5)}, Range{excl(7), incl(9)})

	tests := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{5, true},
		{6, false},
		{7, false},
		{8, true},
		{9, true},
		{9.01, false},
	}
	for _, tt := range tests {
		if got := l.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestLineUnionAndSubtract(t *testing.T) {
	a := NewLine(Range{incl(0), incl(10)})
	b := NewLine(Range{incl(20), incl(30)})

	union := a.Union(b)
	want := []Range{{incl(0), incl(10)}, {incl(20), incl(30)}}
	if diff := cmp.Diff(want, union.Ranges()); diff != "" {
		t.Fatalf("Union() (-want +got):\n%s", diff)
	}

	carved := union.SubtractRange(Range{incl(5), incl(25)})
	want = []Range{{incl(0), excl(5)}, {excl(25), incl(30)}}
	if diff := cmp.Diff(want, carved.Ranges()); diff != "" {
		t.Fatalf("Subtract() (-want +got):\n%s", diff)
	}
}

func TestLineSubtractValueAndUnionValue(t *testing.T) {
	l := NewLine(Range{incl(0), incl(10)})

	holed := l.SubtractValue(5)
	want := []Range{{incl(0), excl(5)}, {excl(5), incl(10)}}
	if diff := cmp.Diff(want, holed.Ranges()); diff != "" {
		t.Fatalf("SubtractValue() (-want +got):\n%s", diff)
	}

	refilled := holed.UnionValue(5)
	want = []Range{{incl(0), incl(10)}}
	if diff := cmp.Diff(want, refilled.Ranges()); diff != "" {
		t.Fatalf("UnionValue() (-want +got):\n%s", diff)
	}
}

func TestLineInvert(t *testing.T) {
	l, err := IncludeFloats(0, 10, true, true)
	if err != nil {
		t.Fatalf("IncludeFloats: %v", err)
	}

	inv := l.Invert()
	want := []Range{
		{MinusInfinity, excl(0)},
		{excl(10), Infinity},
	}
	if diff := cmp.Diff(want, inv.Ranges()); diff != "" {
		t.Fatalf("Invert() (-want +got):\n%s", diff)
	}

	if inv.Contains(5) {
		t.Fatal("inverted line should not contain 5")
	}
	if !inv.Contains(-1) || !inv.Contains(11) {
		t.Fatal("inverted line should contain values outside [0, 10]")
	}

	if !Full().Invert().IsEmpty() {
		t.Fatal("inverted full line should be empty")
	}
	if Empty().Invert().IsEmpty() {
		t.Fatal("inverted empty line should be full")
	}
}

func TestIncludeRejectsInvertedBounds(t *testing.T) {
	if _, err := IncludeFloats(10, 0, true, true); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
	if _, err := IncludeFloats(5, 5, true, true); err == nil {
		t.Fatal("expected error for equal inclusive bounds")
	}
	got, err := IncludeFloats(0, 5, true, true)
	if err != nil {
		t.Fatalf("IncludeFloats: %v", err)
	}
	if !got.Contains(0) || !got.Contains(5) {
		t.Fatal("line should contain its inclusive endpoints")
	}
}

func TestExclude(t *testing.T) {
	l, err := ExcludeFloats(0, 10, true, true)
	if err != nil {
		t.Fatalf("ExcludeFloats: %v", err)
	}

	tests := []struct {
		v    float64
		want bool
	}{
		{-1, true},
		{0, true},
		{5, false},
		{10, true},
		{11, true},
	}
	for _, tt := range tests {
		if got := l.Contains(tt.v); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}

	everything, err := Exclude(MinusInfinity, Infinity)
	if err != nil {
		t.Fatalf("Exclude: %v", err)
	}
	if !everything.IsEmpty() {
		t.Fatal("excluding the full line should leave nothing")
	}
}

func TestExcludeSingleValue(t *testing.T) {
	// The non-zero pattern: exclusive bounds keep the boundary value out.
	l, err := ExcludeFloats(0, 0, false, false)
	if err != nil {
		t.Fatalf("ExcludeFloats: %v", err)
	}
	if l.Contains(0) {
		t.Fatal("0 should be excluded")
	}
	if !l.Contains(0.0001) || !l.Contains(-0.0001) {
		t.Fatal("values around 0 should be included")
	}
}

func TestPositiveNegative(t *testing.T) {
	tests := []struct {
		name        string
		line        Line
		includeZero bool
		contains    []float64
		excludes    []float64
	}{
		{"positive with zero", Positive(true), true, []float64{0, 1, math.Inf(1)}, []float64{-1}},
		{"positive without zero", Positive(false), false, []float64{0.001, 5}, []float64{0, -5}},
		{"negative with zero", Negative(true), true, []float64{0, -3}, []float64{2}},
		{"negative without zero", Negative(false), false, []float64{-0.5}, []float64{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.contains {
				if !tt.line.Contains(v) {
					t.Errorf("Contains(%v) = false, want true", v)
				}
			}
			for _, v := range tt.excludes {
				if tt.line.Contains(v) {
					t.Errorf("Contains(%v) = true, want false", v)
				}
			}
		})
	}
}

func TestLineCheckMessages(t *testing.T) {
	atMost10, err := LessThanFloat(10, true)
	if err != nil {
		t.Fatalf("LessThanFloat: %v", err)
	}
	below10, err := LessThanFloat(10, false)
	if err != nil {
		t.Fatalf("LessThanFloat: %v", err)
	}
	atLeast0, err := GreaterThanFloat(0, true)
	if err != nil {
		t.Fatalf("GreaterThanFloat: %v", err)
	}
	above0, err := GreaterThanFloat(0, false)
	if err != nil {
		t.Fatalf("GreaterThanFloat: %v", err)
	}
	between, err := IncludeFloats(0, 10, true, true)
	if err != nil {
		t.Fatalf("IncludeFloats: %v", err)
	}
	split := NewLine(Range{incl(0), incl(5)}, Range{incl(10), incl(15)})

	tests := []struct {
		name string
		line Line
		v    float64
		want string
	}{
		{"at most", atMost10, 11, "11 should be smaller than or equal to 10"},
		{"below", below10, 10, "10 should be smaller than 10"},
		{"at least", atLeast0, -1, "-1 should be bigger than or equal to 0"},
		{"above", above0, 0, "0 should be bigger than 0"},
		{"range", between, 10.5, "10.5 should be in the range [0, 10]"},
		{"split", split, 7, "7 should be in: NumberLine([0, 5], [10, 15])"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Check(tt.v)
			if err == nil {
				t.Fatal("Check() = nil, want error")
			}
			if err.Error() != tt.want {
				t.Fatalf("Check() = %q, want %q", err.Error(), tt.want)
			}
		})
	}

	if err := between.Check(5); err != nil {
		t.Fatalf("Check(5) = %v, want nil", err)
	}
}

func TestLineString(t *testing.T) {
	split := NewLine(Range{incl(0), incl(5)}, Range{excl(7), incl(9)})
	if got, want := split.String(), "NumberLine([0, 5], (7, 9])"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got, want := Empty().String(), "NumberLine()"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
