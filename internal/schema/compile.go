// SPDX-License-Identifier: MIT

package schema

import (
	"errors"
	"fmt"
	"math"

	"github.com/checkings/checkings/checking"
	"github.com/checkings/checkings/numberline"
)

// Compile resolves every field spec into a checker. All field errors are
// reported together; a schema that compiles is guaranteed to run without
// configuration errors at validation time.
func Compile(s Schema) (checking.Fields, error) {
	if len(s.Fields) == 0 {
		return nil, errors.New("schema has no fields")
	}

	fields := make(checking.Fields, len(s.Fields))
	var errs []error
	for name, spec := range s.Fields {
		if name == "" {
			errs = append(errs, errors.New("schema contains an unnamed field"))
			continue
		}
		c, err := compileField(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", name, err))
			continue
		}
		fields[name] = c
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return fields, nil
}

func compileField(spec FieldSpec) (*checking.Checker, error) {
	if err := spec.contradictions(); err != nil {
		return nil, err
	}

	typeKind, hasType, err := resolveType(spec)
	if err != nil {
		return nil, err
	}

	c, err := baseChecker(spec, typeKind, hasType)
	if err != nil {
		return nil, err
	}

	if spec.Elem != "" {
		k, err := checking.ParseKind(spec.Elem)
		if err != nil {
			return nil, err
		}
		c = c.MustMerge(checking.SliceOf(k))
	}
	if len(spec.Literals) > 0 {
		c = c.MustMerge(checking.OneOf(spec.Literals...))
	}

	for _, part := range ruleCheckers(spec) {
		c = c.MustMerge(part)
	}

	if lc, err := lengthChecker(spec); err != nil {
		return nil, err
	} else if lc != nil {
		c = c.MustMerge(lc)
	}
	if spec.Pattern != "" {
		c = c.MustMerge(checking.Matches(spec.Pattern))
	}

	c = c.Convert(converterFor(typeKind, hasType))
	if spec.ReplaceNull {
		c = c.ReplaceNil()
	}
	if spec.HasDefault() {
		c = c.Default(spec.Default)
	}

	// Surface configuration problems now rather than on the first request.
	if err := c.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// resolveType maps the type knob onto a kind. The "number" type has no
// single kind and is reported as (KindInvalid, true).
func resolveType(spec FieldSpec) (checking.Kind, bool, error) {
	switch spec.Type {
	case "":
		if spec.Port {
			return checking.KindInt, true, nil
		}
		return checking.KindInvalid, false, nil
	case "number":
		if spec.Elem != "" {
			return checking.KindInvalid, false, errors.New("elem needs a list field, not number")
		}
		return checking.KindInvalid, true, nil
	}
	k, err := checking.ParseKind(spec.Type)
	if err != nil {
		return checking.KindInvalid, false, err
	}
	if spec.Port && k != checking.KindInt {
		return checking.KindInvalid, false, fmt.Errorf("port needs an int field, not %s", k)
	}
	if spec.Elem != "" && k != checking.KindSlice {
		return checking.KindInvalid, false, fmt.Errorf("elem needs a list field, not %s", k)
	}
	return k, true, nil
}

// baseChecker builds the kind and number-line part of the field. The
// numeric knobs carry the kinds of the line into the checker, narrowed to
// the declared type when one is given.
func baseChecker(spec FieldSpec, typeKind checking.Kind, hasType bool) (*checking.Checker, error) {
	if spec.Port {
		return checking.PortNumber(), nil
	}

	line, hasLine, err := buildLine(spec)
	if err != nil {
		return nil, err
	}
	if !hasLine {
		if !hasType {
			return checking.New(), nil
		}
		if typeKind == checking.KindInvalid {
			return checking.Number(), nil
		}
		return checking.New(checking.WithKinds(typeKind)), nil
	}

	kinds := []checking.Kind{checking.KindInt, checking.KindFloat}
	if hasType && typeKind != checking.KindInvalid {
		kinds = []checking.Kind{typeKind}
	}
	return checking.New(checking.WithKinds(kinds...), checking.WithLine(line)), nil
}

func buildLine(spec FieldSpec) (numberline.Line, bool, error) {
	wrap := func(l numberline.Line, err error) (numberline.Line, bool, error) {
		return l, err == nil, err
	}
	switch {
	case spec.Range != nil:
		if len(spec.Range) != 2 {
			return numberline.Line{}, false, fmt.Errorf("range needs exactly two numbers, got %d", len(spec.Range))
		}
		return wrap(numberline.IncludeFloats(spec.Range[0], spec.Range[1], true, true))
	case spec.Between != nil:
		if len(spec.Between) != 2 {
			return numberline.Line{}, false, fmt.Errorf("between needs exactly two numbers, got %d", len(spec.Between))
		}
		return wrap(numberline.IncludeFloats(spec.Between[0], spec.Between[1], false, false))
	case spec.Min != nil && spec.Max != nil:
		return wrap(numberline.IncludeFloats(*spec.Min, *spec.Max, !spec.ExclusiveMin, !spec.ExclusiveMax))
	case spec.Min != nil:
		return wrap(numberline.GreaterThanFloat(*spec.Min, !spec.ExclusiveMin))
	case spec.Max != nil:
		return wrap(numberline.LessThanFloat(*spec.Max, !spec.ExclusiveMax))
	case spec.Positive:
		return numberline.Positive(spec.IncludeZero), true, nil
	case spec.Negative:
		return numberline.Negative(spec.IncludeZero), true, nil
	case spec.NonZero:
		return wrap(numberline.ExcludeFloats(0, 0, false, false))
	}
	return numberline.Line{}, false, nil
}

// ruleCheckers collects the boolean and string knobs that map straight
// onto the constructor grid.
func ruleCheckers(spec FieldSpec) []*checking.Checker {
	var parts []*checking.Checker
	add := func(on bool, ctor func() *checking.Checker) {
		if on {
			parts = append(parts, ctor())
		}
	}
	add(spec.Even, checking.Even)
	add(spec.Odd, checking.Odd)
	add(spec.NotEmpty, checking.NotEmpty)
	add(spec.Sorted, checking.Sorted)
	add(spec.Hostname, checking.Hostname)
	add(spec.URL, checking.HTTPURL)
	add(spec.NFC, checking.NormalizedNFC)
	add(spec.Path, checking.Path)
	add(spec.Dir, checking.Dir)
	add(spec.File, checking.File)
	if spec.StartsWith != "" {
		parts = append(parts, checking.StartsWith(spec.StartsWith))
	}
	if spec.EndsWith != "" {
		parts = append(parts, checking.EndsWith(spec.EndsWith))
	}
	if spec.Contains != "" {
		parts = append(parts, checking.Contains(spec.Contains))
	}
	return parts
}

func lengthChecker(spec FieldSpec) (*checking.Checker, error) {
	switch {
	case spec.Length != nil:
		if *spec.Length < 0 {
			return nil, errors.New("length must not be negative")
		}
		return checking.Length(*spec.Length), nil
	case spec.MinLength != nil && spec.MaxLength != nil:
		return checking.LengthBetween(*spec.MinLength, *spec.MaxLength), nil
	case spec.MinLength != nil:
		return checking.LengthBetween(*spec.MinLength, math.MaxInt32), nil
	case spec.MaxLength != nil:
		return checking.LengthBetween(0, *spec.MaxLength), nil
	}
	return nil, nil
}
