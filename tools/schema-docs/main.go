// SPDX-License-Identifier: MIT

// schema-docs generates Markdown documentation from a directory of
// schema documents.
//
// Usage:
//
//	go run ./tools/schema-docs [schema-dir] [output.md]
//
// Defaults:
//   - input: schemas
//   - output: docs/schemas.md
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/checkings/checkings/internal/schema"
)

func main() {
	in := "schemas"
	out := "docs/schemas.md"
	if len(os.Args) > 1 {
		in = os.Args[1]
	}
	if len(os.Args) > 2 {
		out = os.Args[2]
	}

	entries, err := os.ReadDir(in)
	check(err)

	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "# Schemas")
	fmt.Fprintf(buf, "> Source: `%s`\n\n", in)

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(in, entry.Name())
		data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied directory
		check(err)

		var doc schema.Schema
		if ext == ".json" {
			doc, err = schema.ParseJSON(data)
		} else {
			doc, err = schema.ParseYAML(data)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %s: %v\n", path, err)
			continue
		}
		if doc.Name == "" {
			doc.Name = strings.TrimSuffix(entry.Name(), ext)
		}

		renderSchema(buf, entry.Name(), doc)
		count++
	}

	check(os.MkdirAll(filepath.Dir(out), 0o755))
	check(os.WriteFile(out, buf.Bytes(), 0o644))
	fmt.Printf("generated %s from %d schemas in %s\n", out, count, in)
}

func renderSchema(buf *bytes.Buffer, file string, doc schema.Schema) {
	fmt.Fprintf(buf, "## `%s`\n\n", doc.Name)
	fmt.Fprintf(buf, "File: `%s`  \n", file)
	if doc.Description != "" {
		fmt.Fprintf(buf, "\n%s\n", mdSan(doc.Description))
	}
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "| Field | Type | Required | Constraints |")
	fmt.Fprintln(buf, "|---|---|:---:|---|")
	for _, name := range sortedKeys(doc.Fields) {
		spec := doc.Fields[name]
		fmt.Fprintf(buf, "| `%s` | %s | %s | %s |\n",
			name, mdCode(typeOf(spec)), boolIcon(spec.Required), mdSan(constraintsOf(spec)))
	}
	fmt.Fprintln(buf)
}

func typeOf(spec schema.FieldSpec) string {
	t := spec.Type
	if t == "" {
		t = "any"
	}
	if spec.Elem != "" {
		return t + "<" + spec.Elem + ">"
	}
	return t
}

// constraintsOf flattens the set knobs of a field into one cell.
func constraintsOf(spec schema.FieldSpec) string {
	var parts []string

	add := func(cond bool, s string) {
		if cond {
			parts = append(parts, s)
		}
	}

	add(len(spec.Literals) > 0, fmt.Sprintf("one of %v", spec.Literals))
	add(spec.HasDefault(), fmt.Sprintf("default `%v`", spec.Default))
	add(spec.ReplaceNull, "null replaced by default")

	if spec.Min != nil && spec.Max != nil {
		parts = append(parts, fmt.Sprintf("min %v, max %v", *spec.Min, *spec.Max))
	} else if spec.Min != nil {
		parts = append(parts, fmt.Sprintf("min %v", *spec.Min))
	} else if spec.Max != nil {
		parts = append(parts, fmt.Sprintf("max %v", *spec.Max))
	}
	add(len(spec.Range) == 2, fmt.Sprintf("range %v", spec.Range))
	add(len(spec.Between) == 2, fmt.Sprintf("between %v", spec.Between))
	add(spec.Positive && !spec.IncludeZero, "positive")
	add(spec.Positive && spec.IncludeZero, "positive or zero")
	add(spec.Negative && !spec.IncludeZero, "negative")
	add(spec.Negative && spec.IncludeZero, "negative or zero")
	add(spec.NonZero, "non-zero")
	add(spec.Port, "port")
	add(spec.Even, "even")
	add(spec.Odd, "odd")

	if spec.Length != nil {
		parts = append(parts, fmt.Sprintf("length %d", *spec.Length))
	}
	if spec.MinLength != nil {
		parts = append(parts, fmt.Sprintf("min length %d", *spec.MinLength))
	}
	if spec.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("max length %d", *spec.MaxLength))
	}
	add(spec.NotEmpty, "not empty")

	add(spec.StartsWith != "", fmt.Sprintf("starts with %q", spec.StartsWith))
	add(spec.EndsWith != "", fmt.Sprintf("ends with %q", spec.EndsWith))
	add(spec.Contains != "", fmt.Sprintf("contains %q", spec.Contains))
	add(spec.Pattern != "", fmt.Sprintf("matches `%s`", spec.Pattern))
	add(spec.Hostname, "hostname")
	add(spec.URL, "url")
	add(spec.NFC, "NFC-normalized")
	add(spec.Path, "existing path")
	add(spec.Dir, "existing directory")
	add(spec.File, "existing file")
	add(spec.Sorted, "sorted")

	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]schema.FieldSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mdSan(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func mdCode(s string) string {
	return "`" + s + "`"
}

func boolIcon(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
