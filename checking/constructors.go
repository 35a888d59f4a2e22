// SPDX-License-Identifier: MIT

package checking

import (
	"fmt"
	"regexp"

	"github.com/checkings/checkings/numberline"
)

// Int accepts integer values.
func Int() *Checker {
	return New(WithKinds(KindInt))
}

// Float accepts floating point values.
func Float() *Checker {
	return New(WithKinds(KindFloat))
}

// Number accepts integer and floating point values.
func Number() *Checker {
	return New(WithKinds(KindInt, KindFloat))
}

// Str accepts string values.
func Str() *Checker {
	return New(WithKinds(KindString))
}

// Bool accepts boolean values.
func Bool() *Checker {
	return New(WithKinds(KindBool))
}

// Slice accepts slice and array values.
func Slice() *Checker {
	return New(WithKinds(KindSlice))
}

// Map accepts map values.
func Map() *Checker {
	return New(WithKinds(KindMap))
}

// Struct accepts struct values.
func Struct() *Checker {
	return New(WithKinds(KindStruct))
}

// Func accepts function values.
func Func() *Checker {
	return New(WithKinds(KindFunc))
}

// OneOf accepts only the given literals.
func OneOf(literals ...any) *Checker {
	return New(WithLiterals(literals...))
}

func lineChecker(l numberline.Line, err error, opts ...Option) *Checker {
	c := New(append(opts, WithLine(l))...)
	if err != nil {
		c.buildErr = err
	}
	return c
}

// Positive accepts numbers greater than zero.
func Positive() *Checker {
	return New(WithKinds(KindInt, KindFloat), WithLine(numberline.Positive(false)))
}

// NonNegative accepts numbers greater than or equal to zero.
func NonNegative() *Checker {
	return New(WithKinds(KindInt, KindFloat), WithLine(numberline.Positive(true)))
}

// Negative accepts numbers smaller than zero.
func Negative() *Checker {
	return New(WithKinds(KindInt, KindFloat), WithLine(numberline.Negative(false)))
}

// NonPositive accepts numbers smaller than or equal to zero.
func NonPositive() *Checker {
	return New(WithKinds(KindInt, KindFloat), WithLine(numberline.Negative(true)))
}

// NonZero accepts any number except zero.
func NonZero() *Checker {
	l, err := numberline.ExcludeFloats(0, 0, false, false)
	return lineChecker(l, err, WithKinds(KindInt, KindFloat))
}

// GreaterThan accepts numbers strictly above v.
func GreaterThan(v float64) *Checker {
	l, err := numberline.GreaterThanFloat(v, false)
	return lineChecker(l, err, WithKinds(KindInt, KindFloat))
}

// GreaterOrEqual accepts numbers above or equal to v.
func GreaterOrEqual(v float64) *Checker {
	l, err := numberline.GreaterThanFloat(v, true)
	return lineChecker(l, err, WithKinds(KindInt, KindFloat))
}

// LessThan accepts numbers strictly below v.
func LessThan(v float64) *Checker {
	l, err := numberline.LessThanFloat(v, false)
	return lineChecker(l, err, WithKinds(KindInt, KindFloat))
}

// LessOrEqual accepts numbers below or equal to v.
func LessOrEqual(v float64) *Checker {
	l, err := numberline.LessThanFloat(v, true)
	return lineChecker(l, err, WithKinds(KindInt, KindFloat))
}

// NumberInRange accepts numbers between low and high, boundaries included.
func NumberInRange(low, high float64) *Checker {
	l, err := numberline.IncludeFloats(low, high, true, true)
	return lineChecker(l, err, WithKinds(KindInt, KindFloat))
}

// NumberBetween accepts numbers between low and high, boundaries excluded.
func NumberBetween(low, high float64) *Checker {
	l, err := numberline.IncludeFloats(low, high, false, false)
	return lineChecker(l, err, WithKinds(KindInt, KindFloat))
}

// IntInRange accepts integers between low and high, boundaries included.
func IntInRange(low, high int) *Checker {
	l, err := numberline.IncludeFloats(float64(low), float64(high), true, true)
	return lineChecker(l, err, WithKinds(KindInt))
}

// FloatInRange accepts floats between low and high, boundaries included.
func FloatInRange(low, high float64) *Checker {
	l, err := numberline.IncludeFloats(low, high, true, true)
	return lineChecker(l, err, WithKinds(KindFloat))
}

// Even accepts even integers.
func Even() *Checker {
	return New(WithKinds(KindInt), WithRules(evenRule))
}

// Odd accepts odd integers.
func Odd() *Checker {
	return New(WithKinds(KindInt), WithRules(oddRule))
}

// PortNumber accepts valid TCP or UDP port numbers.
func PortNumber() *Checker {
	return IntInRange(1, 65535)
}

// NotEmpty accepts strings with at least one non-whitespace character and
// slices or maps with at least one element.
func NotEmpty() *Checker {
	return New(WithRules(notEmptyRule))
}

// Length accepts strings, slices and maps of exactly n elements.
func Length(n int) *Checker {
	return New(WithRules(lengthRule(n)))
}

// LengthBetween accepts strings, slices and maps whose length lies between
// minLen and maxLen, boundaries included.
func LengthBetween(minLen, maxLen int) *Checker {
	return New(WithRules(lengthBetweenRule(minLen, maxLen)))
}

// Contains accepts strings containing sub.
func Contains(sub string) *Checker {
	return New(WithKinds(KindString), WithRules(containsRule(sub)))
}

// StartsWith accepts strings starting with prefix.
func StartsWith(prefix string) *Checker {
	return New(WithKinds(KindString), WithRules(startsWithRule(prefix)))
}

// EndsWith accepts strings ending with suffix.
func EndsWith(suffix string) *Checker {
	return New(WithKinds(KindString), WithRules(endsWithRule(suffix)))
}

// Matches accepts strings matching the pattern. An invalid pattern
// surfaces as ErrInvalidChecker on first use.
func Matches(pattern string) *Checker {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &Checker{buildErr: fmt.Errorf("invalid pattern %q: %w", pattern, err)}
	}
	return New(WithKinds(KindString), WithRules(matchesRule(re)))
}

// Hostname accepts valid DNS host names, including internationalized ones.
func Hostname() *Checker {
	return New(WithKinds(KindString), WithRules(hostnameRule))
}

// HTTPURL accepts absolute http and https URLs.
func HTTPURL() *Checker {
	return New(WithKinds(KindString), WithRules(httpURLRule))
}

// NormalizedNFC accepts strings in Unicode normal form C.
func NormalizedNFC() *Checker {
	return New(WithKinds(KindString), WithRules(nfcRule))
}

// SliceOf accepts slices whose elements all have one of the given kinds.
func SliceOf(kinds ...Kind) *Checker {
	return New(WithKinds(KindSlice), WithRules(sliceOfRule(kinds...)))
}

// Sorted accepts slices of numbers or strings in non-decreasing order.
func Sorted() *Checker {
	return New(WithKinds(KindSlice), WithRules(sortedRule))
}

// HasField accepts structs carrying the named field.
func HasField(name string) *Checker {
	return New(WithRules(hasFieldRule(name)))
}

// HasMethod accepts values carrying the named method.
func HasMethod(name string) *Checker {
	return New(WithRules(hasMethodRule(name)))
}

// Path accepts paths that exist on the local filesystem.
func Path() *Checker {
	return New(WithKinds(KindString), WithRules(pathRule))
}

// Dir accepts paths of existing directories.
func Dir() *Checker {
	return New(WithKinds(KindString), WithRules(dirRule))
}

// File accepts paths of existing regular files.
func File() *Checker {
	return New(WithKinds(KindString), WithRules(fileRule))
}
