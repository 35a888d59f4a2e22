// SPDX-License-Identifier: MIT

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/checkings/checkings/checking"
)

// CoerceNumbers rewrites json.Number values into int64 or float64,
// recursively through maps and slices. Plain JSON decoding turns every
// number into float64, which erases the int/float distinction the kind
// checks depend on; decoding with UseNumber and running this pass keeps
// "2" an int and "2.0" a float.
func CoerceNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return string(t)
	case map[string]any:
		for k, e := range t {
			t[k] = CoerceNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = CoerceNumbers(e)
		}
		return t
	default:
		return v
	}
}

// converterFor picks the payload converter for a field. Int fields accept
// any integral JSON number, float fields convert every JSON number to
// float64, and everything else gets the generic int-or-float coercion.
// Values that are not json.Number pass through untouched.
func converterFor(typeKind checking.Kind, hasType bool) checking.Converter {
	if hasType {
		switch typeKind {
		case checking.KindInt:
			return intFromNumber
		case checking.KindFloat:
			return floatFromNumber
		}
	}
	return func(v any) (any, error) {
		return CoerceNumbers(v), nil
	}
}

func intFromNumber(v any) (any, error) {
	n, ok := v.(json.Number)
	if !ok {
		return v, nil
	}
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%s is not a number", n)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%s is not an integral number", n)
	}
	return int64(f), nil
}

func floatFromNumber(v any) (any, error) {
	n, ok := v.(json.Number)
	if !ok {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%s is not a number", n)
	}
	return f, nil
}

type fieldSpecJSON FieldSpec

// UnmarshalJSON decodes the spec strictly with UseNumber and coerces
// Default and Literals, so an int default stored as JSON comes back an
// int instead of a float64 that would fail the field's own kind check,
// and unknown knobs are rejected on every JSON path.
func (f *FieldSpec) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	var spec fieldSpecJSON
	if err := dec.Decode(&spec); err != nil {
		return err
	}
	spec.Default = CoerceNumbers(spec.Default)
	for i, lit := range spec.Literals {
		spec.Literals[i] = CoerceNumbers(lit)
	}
	*f = FieldSpec(spec)
	return nil
}
