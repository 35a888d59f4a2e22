// SPDX-License-Identifier: MIT

// verify-check-messages fails when a failure-message literal is
// hand-rolled outside the checking package. CheckError owns the
// "has incorrect value" format; everything else must go through it so
// reports stay uniform.
//
// Usage: go run scripts/verify-check-messages.go [pattern]
package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

func main() {
	pattern := "./..."
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}

	violations, err := Analyze(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "❌ hand-rolled check message violations found:")
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
}

// Analyze walks the packages matching pattern and reports every string
// literal that carries the CheckError message format.
func Analyze(pattern string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedFiles | packages.NeedName,
		Dir:  ".",
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		for i, file := range pkg.Syntax {
			filename := ""
			if i < len(pkg.CompiledGoFiles) {
				filename = pkg.CompiledGoFiles[i]
			} else if i < len(pkg.GoFiles) {
				filename = pkg.GoFiles[i]
			}
			if filename == "" {
				continue
			}
			// Tests may assert on the format; the checking package owns
			// it, and this script quotes it.
			if strings.HasSuffix(filename, "_test.go") {
				continue
			}
			if strings.Contains(filename, string(filepath.Separator)+"checking"+string(filepath.Separator)) {
				continue
			}
			if strings.HasSuffix(filename, "verify-check-messages.go") {
				continue
			}

			fset := pkg.Fset
			ast.Inspect(file, func(n ast.Node) bool {
				lit, ok := n.(*ast.BasicLit)
				if !ok || lit.Kind != token.STRING {
					return true
				}
				val, _ := strconv.Unquote(lit.Value)
				if strings.Contains(val, "has incorrect value") {
					violations = append(violations, formatViolation(fset, filename, lit.Pos(), fmt.Sprintf("forbidden message literal %q (use checking.CheckError)", val)))
				}
				return true
			})
		}
	}
	return violations, nil
}

func formatViolation(fset *token.FileSet, filename string, pos token.Pos, msg string) string {
	if rel, err := filepath.Rel(".", filename); err == nil {
		filename = rel
	}
	line := 0
	if fset != nil {
		line = fset.Position(pos).Line
	}
	return fmt.Sprintf("%s:%d: %s", filename, line, msg)
}
