// SPDX-License-Identifier: MIT

package checking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChecker wraps normalization failures: a checker whose configured
// constraints cannot be satisfied by any value, such as an empty literal set
// or an empty number line.
var ErrInvalidChecker = errors.New("invalid checker")

// CheckError reports every constraint a value violated. The individual
// failures are reachable through errors.Is/As via Unwrap.
type CheckError struct {
	Name  string
	Value any
	errs  []error
}

func (e *CheckError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s has incorrect value: %v: %s", e.Name, e.Value, strings.Join(msgs, "; "))
}

// Unwrap returns the individual constraint failures.
func (e *CheckError) Unwrap() []error {
	return e.errs
}

// UnknownFieldError reports a value under a name no checker is declared
// for.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field `%s`", e.Name)
}

// RuleError groups the failures of custom rules.
type RuleError struct {
	errs []error
}

func (e *RuleError) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return "value did not pass all validators: " + strings.Join(msgs, "; ")
}

// Unwrap returns the individual rule failures.
func (e *RuleError) Unwrap() []error {
	return e.errs
}

// tupleStr renders values the way failure messages list alternatives:
// a single element as (x,), multiple elements comma separated with strings
// quoted.
func tupleStr(values []any) string {
	if len(values) == 1 {
		return fmt.Sprintf("(%v,)", values[0])
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = "'" + s + "'"
		} else {
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
