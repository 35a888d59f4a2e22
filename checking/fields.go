// SPDX-License-Identifier: MIT

package checking

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// Fields maps field names to the checker each field must pass.
type Fields map[string]*Checker

// Validate runs every checker against the matching entry in values and
// returns the resolved values, with defaults filled in and converters
// applied. Missing entries resolve through the checker's default. Entries
// with no checker are rejected. All failures are reported together.
func (f Fields) Validate(values map[string]any) (map[string]any, error) {
	var errs []error
	for _, name := range sortedKeys(values) {
		if _, ok := f[name]; !ok {
			errs = append(errs, &UnknownFieldError{Name: name})
		}
	}

	out := make(map[string]any, len(f))
	for _, name := range sortedKeys(f) {
		value, ok := values[name]
		if !ok {
			value = NoValue
		}
		resolved, err := f[name].Apply(value, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[name] = resolved
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

// ValidateStruct checks the struct v against fields. Field names resolve
// through the `check` struct tag first, then the Go field name. A zero
// field whose checker carries a default counts as absent, and when v is a
// pointer the resolved values are written back, so defaults and converted
// values materialize in the struct.
func ValidateStruct(v any, fields Fields) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.New("cannot validate a nil struct")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("cannot validate a %s, expected a struct", KindOf(v))
	}

	var errs []error
	for _, name := range sortedKeys(fields) {
		fv, ok := structField(rv, name)
		if !ok {
			errs = append(errs, fmt.Errorf("struct has no field for `%s`", name))
			continue
		}

		checker := fields[name]
		value := fv.Interface()
		if fv.IsZero() && checker.hasAnyDefault() {
			value = NoValue
		}

		resolved, err := checker.Apply(value, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if fv.CanSet() {
			out := reflect.ValueOf(resolved)
			if out.IsValid() && out.Type().AssignableTo(fv.Type()) {
				fv.Set(out)
			}
		}
	}

	return errors.Join(errs...)
}

// structField resolves name against the `check` tag, then the exported
// field name.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).Tag.Get("check") == name {
			return rv.Field(i), true
		}
	}
	f, ok := rt.FieldByName(name)
	if !ok || !f.IsExported() {
		return reflect.Value{}, false
	}
	return rv.FieldByIndex(f.Index), true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
