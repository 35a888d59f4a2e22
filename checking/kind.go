// SPDX-License-Identifier: MIT

package checking

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind classifies a value for type checks. All integer widths, signed and
// unsigned, count as KindInt; float32 and float64 as KindFloat. Pointers
// classify as the kind of the value they point to.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindSlice
	KindMap
	KindStruct
	KindFunc
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindBool:    "bool",
	KindSlice:   "slice",
	KindMap:     "map",
	KindStruct:  "struct",
	KindFunc:    "func",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

var kindAliases = map[string]Kind{
	"int":        KindInt,
	"integer":    KindInt,
	"float":      KindFloat,
	"str":        KindString,
	"string":     KindString,
	"bool":       KindBool,
	"boolean":    KindBool,
	"slice":      KindSlice,
	"list":       KindSlice,
	"array":      KindSlice,
	"map":        KindMap,
	"dict":       KindMap,
	"dictionary": KindMap,
	"struct":     KindStruct,
	"object":     KindStruct,
	"func":       KindFunc,
	"function":   KindFunc,
}

// ParseKind resolves a kind name, accepting the common aliases (integer,
// string, list, dict and so on).
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return KindInvalid, fmt.Errorf("unknown kind %q", name)
}

// KindOf returns the kind of v, or KindInvalid for nil and unclassified
// values.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindInvalid
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return KindInt
	case float32, float64:
		return KindFloat
	case string:
		return KindString
	case bool:
		return KindBool
	}
	return kindOfReflect(reflect.ValueOf(v))
}

func kindOfReflect(rv reflect.Value) Kind {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return KindInt
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Slice, reflect.Array:
		return KindSlice
	case reflect.Map:
		return KindMap
	case reflect.Struct:
		return KindStruct
	case reflect.Func:
		return KindFunc
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return KindInvalid
		}
		return kindOfReflect(rv.Elem())
	default:
		return KindInvalid
	}
}

// numericValue extracts v as a float64 when v is an integer or float of any
// width. Booleans are not numeric.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// literalEqual compares two literals the way the checker treats equality:
// numeric values compare by value across integer and float representations,
// everything else by deep equality.
func literalEqual(a, b any) bool {
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if aok && bok {
		return af == bf
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}
