// SPDX-License-Identifier: MIT

package checking

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"reflect"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// Rules report their own constraint and nothing about the value's kind.
// Constructors pair them with the matching kind family, so a value of the
// wrong kind fails both and the message names both problems.

func evenRule(value any) error {
	f, ok := numericValue(value)
	if !ok || math.Mod(f, 2) != 0 {
		return errors.New("Value must be even")
	}
	return nil
}

func oddRule(value any) error {
	f, ok := numericValue(value)
	if !ok || math.Mod(f, 2) == 0 {
		return errors.New("Value must be odd")
	}
	return nil
}

func lengthRule(n int) Rule {
	return func(value any) error {
		got, ok := lengthOf(value)
		if !ok || got != n {
			return fmt.Errorf("Value must be of length %d", n)
		}
		return nil
	}
}

func lengthBetweenRule(minLen, maxLen int) Rule {
	return func(value any) error {
		got, ok := lengthOf(value)
		if !ok || got < minLen || got > maxLen {
			return fmt.Errorf("Value must have length between %d and %d", minLen, maxLen)
		}
		return nil
	}
}

func lengthOf(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return len(v), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

func containsRule(sub string) Rule {
	return func(value any) error {
		s, ok := value.(string)
		if !ok || !strings.Contains(s, sub) {
			return fmt.Errorf("Value must contain %s", sub)
		}
		return nil
	}
}

func startsWithRule(prefix string) Rule {
	return func(value any) error {
		s, ok := value.(string)
		if !ok || !strings.HasPrefix(s, prefix) {
			return fmt.Errorf("Value must start with %s", prefix)
		}
		return nil
	}
}

func endsWithRule(suffix string) Rule {
	return func(value any) error {
		s, ok := value.(string)
		if !ok || !strings.HasSuffix(s, suffix) {
			return fmt.Errorf("Value must end with %s", suffix)
		}
		return nil
	}
}

func matchesRule(re *regexp.Regexp) Rule {
	return func(value any) error {
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return fmt.Errorf("Value must match the pattern %s", re.String())
		}
		return nil
	}
}

// sortedRule accepts slices whose elements are all numeric or all strings,
// in non-decreasing order.
func sortedRule(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return errors.New("Value must be sorted")
	}
	for i := 0; i+1 < rv.Len(); i++ {
		if !pairOrdered(rv.Index(i).Interface(), rv.Index(i + 1).Interface()) {
			return errors.New("Value must be sorted")
		}
	}
	return nil
}

func pairOrdered(a, b any) bool {
	if fa, ok := numericValue(a); ok {
		fb, ok := numericValue(b)
		return ok && fa <= fb
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa <= sb
	}
	return false
}

// sliceOfRule checks every element against the allowed kinds and names each
// offender by index.
func sliceOfRule(kinds ...Kind) Rule {
	names := make([]any, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	allowed := tupleStr(names)

	return func(value any) error {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("Value must contain only values of kind %s", allowed)
		}
		var bad []string
		for i := 0; i < rv.Len(); i++ {
			got := KindOf(rv.Index(i).Interface())
			if !kindIn(got, kinds) {
				bad = append(bad, fmt.Sprintf("value at %d is of kind %s", i, got))
			}
		}
		switch len(bad) {
		case 0:
			return nil
		case 1:
			return fmt.Errorf("Value must contain only values of kind %s. Error: %s", allowed, bad[0])
		default:
			return fmt.Errorf("Value must contain only values of kind %s. Errors: %s, and %s",
				allowed, strings.Join(bad[:len(bad)-1], ", "), bad[len(bad)-1])
		}
	}
}

func hasFieldRule(name string) Rule {
	return func(value any) error {
		rv := reflect.ValueOf(value)
		for rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct || !rv.FieldByName(name).IsValid() {
			return fmt.Errorf("Value must have field %s", name)
		}
		return nil
	}
}

func hasMethodRule(name string) Rule {
	return func(value any) error {
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fmt.Errorf("Value must have method %s", name)
		}
		if rv.MethodByName(name).IsValid() {
			return nil
		}
		if rv.Kind() != reflect.Pointer && rv.CanAddr() {
			if rv.Addr().MethodByName(name).IsValid() {
				return nil
			}
		}
		// Values obtained through any are not addressable, so probe the
		// pointer method set through a fresh pointer.
		pv := reflect.New(rv.Type())
		pv.Elem().Set(rv)
		if pv.MethodByName(name).IsValid() {
			return nil
		}
		return fmt.Errorf("Value must have method %s", name)
	}
}

func pathRule(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("Value must be an existing path")
	}
	if _, err := os.Stat(s); err != nil {
		return errors.New("Value must be an existing path")
	}
	return nil
}

func dirRule(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("Value must be an existing directory")
	}
	info, err := os.Stat(s)
	if err != nil || !info.IsDir() {
		return errors.New("Value must be an existing directory")
	}
	return nil
}

func fileRule(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("Value must be an existing file")
	}
	info, err := os.Stat(s)
	if err != nil || !info.Mode().IsRegular() {
		return errors.New("Value must be an existing file")
	}
	return nil
}

func notEmptyRule(value any) error {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return errors.New("Value must not be empty")
		}
		return nil
	}
	if n, ok := lengthOf(value); ok {
		if n == 0 {
			return errors.New("Value must not be empty")
		}
		return nil
	}
	if value == nil {
		return errors.New("Value must not be empty")
	}
	return nil
}

func hostnameRule(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("Value must be a valid hostname")
	}
	if _, err := idna.Lookup.ToASCII(s); err != nil {
		return errors.New("Value must be a valid hostname")
	}
	return nil
}

func httpURLRule(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("Value must be a valid HTTP or HTTPS URL")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Value must be a valid HTTP or HTTPS URL")
	}
	return nil
}

func nfcRule(value any) error {
	s, ok := value.(string)
	if !ok || !norm.NFC.IsNormalString(s) {
		return errors.New("Value must be normalized Unicode (NFC)")
	}
	return nil
}
