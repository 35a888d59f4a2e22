// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/checkings/checkings/internal/cache"
	"github.com/checkings/checkings/internal/engine"
	"github.com/checkings/checkings/internal/log"
	"github.com/checkings/checkings/internal/registry"
	"github.com/checkings/checkings/internal/schema"
)

// runValidate checks one payload file against one schema file and prints
// the resulting report as JSON. Nothing is persisted.
//
// Exit codes:
//   - 0: payload is valid
//   - 1: payload is invalid, or the schema/payload could not be read
//   - 2: usage error (missing required flag)
func runValidate(args []string) int {
	fs := flag.NewFlagSet("checkings validate", flag.ExitOnError)
	schemaPath := fs.String("schema", "", "path to schema file (JSON or YAML)")
	payloadPath := fs.String("payload", "", "path to payload file (JSON)")
	reportPath := fs.String("report", "", "write the report to this file instead of stdout")
	_ = fs.Parse(args)

	if *schemaPath == "" || *payloadPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -schema and -payload are required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  checkings validate -schema schema.json -payload payload.json")
		return 2
	}

	// One-shot runs log to stderr so the report JSON owns stdout.
	log.Configure(log.Config{Level: "warn", Output: os.Stderr, Service: "checkings"})

	doc, err := loadSchemaFile(*schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Schema error in %s:\n", *schemaPath)
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return 1
	}

	payload, err := loadPayloadFile(*payloadPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Payload error in %s:\n", *payloadPath)
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return 1
	}

	// Nil report writer: one-shot runs never write to the report dir.
	eng := engine.New(registry.NewMemoryStore(), cache.NewNop(), nil, engine.Options{})
	rep, err := eng.ValidateInline(context.Background(), &doc, payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation error:\n")
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return 1
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	out = append(out, '\n')

	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, out, 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		_, _ = os.Stdout.Write(out)
	}

	if rep.Valid {
		fmt.Fprintf(os.Stderr, "✓ payload is valid (%d fields checked)\n", rep.Checked)
		return 0
	}
	fmt.Fprintf(os.Stderr, "✗ payload is invalid (%d of %d fields failed)\n", len(rep.Failures), rep.Checked)
	return 1
}

func loadSchemaFile(path string) (schema.Schema, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's flag
	if err != nil {
		return schema.Schema{}, err
	}

	var doc schema.Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = schema.ParseYAML(data)
	default:
		doc, err = schema.ParseJSON(data)
	}
	if err != nil {
		return schema.Schema{}, err
	}

	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

func loadPayloadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's flag
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	payload, ok := schema.CoerceNumbers(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload must be a JSON object")
	}
	return payload, nil
}
