// SPDX-License-Identifier: MIT

package checking

// noValue marks the absence of a value, as opposed to an explicit nil.
type noValue struct{}

func (noValue) String() string { return "NoValue" }

// NoValue is passed to Apply when no value was supplied at all, so the
// checker can fall back to its default. A nil value is a value; NoValue is
// the absence of one.
var NoValue any = noValue{}

// IsNoValue reports whether v is the NoValue sentinel.
func IsNoValue(v any) bool {
	_, ok := v.(noValue)
	return ok
}
