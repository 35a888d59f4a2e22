//go:build ignore

// SPDX-License-Identifier: MIT

// verify-env-keys fails when an environment key literal is used outside
// internal/config/env.go. New CHECKINGS_* keys must be declared there so
// the docs and the loader's consumed-key tracking stay complete.
//
// Usage: go run scripts/verify-env-keys.go
package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const ssot = "internal/config/env.go"

var keyPattern = regexp.MustCompile(`^CHECKINGS_[A-Z0-9_]+$`)

func main() {
	var violations []string

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if filepath.ToSlash(path) == ssot {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		ast.Inspect(file, func(n ast.Node) bool {
			lit, ok := n.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				return true
			}
			val, _ := strconv.Unquote(lit.Value)
			if keyPattern.MatchString(val) {
				violations = append(violations, fmt.Sprintf("%s:%d: ad-hoc environment key %q (declare it in %s)", path, fset.Position(lit.Pos()).Line, val, ssot))
			}
			return true
		})
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk failed: %v\n", err)
		os.Exit(1)
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "❌ ad-hoc environment key violations found:")
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
}
