// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/checkings/checkings/internal/config"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// captureStdout swaps os.Stdout for a pipe while fn runs. Subcommands
// write reports and dumps straight to stdout, so the swap is the only
// way to observe them in-process.
func captureStdout(t *testing.T, fn func() int) (int, string) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	code := fn()

	_ = w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return code, string(out)
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "user.json")
	writeTestFile(t, schemaPath, `{
		"name": "user",
		"fields": {
			"email": {"type": "str", "not_empty": true},
			"age":   {"type": "int", "positive": true}
		}
	}`)

	yamlSchemaPath := filepath.Join(dir, "server.yaml")
	writeTestFile(t, yamlSchemaPath, "name: server\nfields:\n  host:\n    type: str\n    not_empty: true\n")

	validPayload := filepath.Join(dir, "valid.json")
	writeTestFile(t, validPayload, `{"email": "a@example.com", "age": 30}`)

	invalidPayload := filepath.Join(dir, "invalid.json")
	writeTestFile(t, invalidPayload, `{"email": "", "age": -1}`)

	hostPayload := filepath.Join(dir, "host.json")
	writeTestFile(t, hostPayload, `{"host": "localhost"}`)

	brokenSchema := filepath.Join(dir, "broken.json")
	writeTestFile(t, brokenSchema, `{"name": "broken", "fields":`)

	notObject := filepath.Join(dir, "list.json")
	writeTestFile(t, notObject, `[1, 2, 3]`)

	tests := []struct {
		name     string
		args     []string
		wantExit int
	}{
		{"valid payload", []string{"-schema", schemaPath, "-payload", validPayload}, 0},
		{"invalid payload", []string{"-schema", schemaPath, "-payload", invalidPayload}, 1},
		{"yaml schema", []string{"-schema", yamlSchemaPath, "-payload", hostPayload}, 0},
		{"missing flags", []string{}, 2},
		{"schema only", []string{"-schema", schemaPath}, 2},
		{"unparseable schema", []string{"-schema", brokenSchema, "-payload", validPayload}, 1},
		{"missing schema file", []string{"-schema", filepath.Join(dir, "nope.json"), "-payload", validPayload}, 1},
		{"payload not an object", []string{"-schema", schemaPath, "-payload", notObject}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := captureStdout(t, func() int {
				return runValidate(tt.args)
			})
			if code != tt.wantExit {
				t.Fatalf("exit = %d, want %d", code, tt.wantExit)
			}
		})
	}
}

func TestRunValidate_ReportFile(t *testing.T) {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "user.json")
	writeTestFile(t, schemaPath, `{"name": "user", "fields": {"email": {"type": "str", "not_empty": true}}}`)
	payloadPath := filepath.Join(dir, "payload.json")
	writeTestFile(t, payloadPath, `{"email": ""}`)
	reportPath := filepath.Join(dir, "report.json")

	code := runValidate([]string{"-schema", schemaPath, "-payload", payloadPath, "-report", reportPath})
	if code != 1 {
		t.Fatalf("exit = %d, want 1 for invalid payload", code)
	}

	raw, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var rep struct {
		Valid      bool   `json:"valid"`
		Checked    int    `json:"checked"`
		SchemaName string `json:"schema_name"`
		Failures   []struct {
			Field    string   `json:"field"`
			Messages []string `json:"messages"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(raw, &rep); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if rep.Valid {
		t.Error("report says valid, want invalid")
	}
	if rep.SchemaName != "user" {
		t.Errorf("schema_name = %q, want user", rep.SchemaName)
	}
	if len(rep.Failures) != 1 || rep.Failures[0].Field != "email" {
		t.Fatalf("failures = %+v, want one failure for email", rep.Failures)
	}
}

func TestRunValidate_SchemaNameFromFilename(t *testing.T) {
	dir := t.TempDir()

	// No name in the document: the file name becomes the schema name.
	schemaPath := filepath.Join(dir, "invoice.json")
	writeTestFile(t, schemaPath, `{"fields": {"total": {"type": "float", "positive": true}}}`)
	payloadPath := filepath.Join(dir, "payload.json")
	writeTestFile(t, payloadPath, `{"total": 12.5}`)
	reportPath := filepath.Join(dir, "report.json")

	code := runValidate([]string{"-schema", schemaPath, "-payload", payloadPath, "-report", reportPath})
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}

	raw, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var rep struct {
		SchemaName string `json:"schema_name"`
	}
	if err := json.Unmarshal(raw, &rep); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if rep.SchemaName != "invoice" {
		t.Errorf("schema_name = %q, want invoice", rep.SchemaName)
	}
}

func TestRunConfigCLI_Validate(t *testing.T) {
	dir := t.TempDir()

	goodPath := filepath.Join(dir, "good.yaml")
	writeTestFile(t, goodPath, "listen: \"127.0.0.1:8080\"\nlogLevel: info\n")

	badPath := filepath.Join(dir, "bad.yaml")
	writeTestFile(t, badPath, "listen: \"127.0.0.1:8080\"\nnoSuchKey: true\n")

	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantOut  string
	}{
		{"valid file", []string{"validate", "-f", goodPath}, 0, "is valid"},
		{"unknown key", []string{"validate", "-f", badPath}, 1, ""},
		{"missing file", []string{"validate", "-f", filepath.Join(dir, "nope.yaml")}, 1, ""},
		{"help", []string{"help"}, 0, ""},
		{"unknown subcommand", []string{"frobnicate"}, 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := captureStdout(t, func() int {
				return runConfigCLI(tt.args)
			})
			if code != tt.wantExit {
				t.Fatalf("exit = %d, want %d", code, tt.wantExit)
			}
			if tt.wantOut != "" && !strings.Contains(out, tt.wantOut) {
				t.Errorf("stdout = %q, want substring %q", out, tt.wantOut)
			}
		})
	}
}

func TestRunConfigCLI_DumpJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeTestFile(t, path, "listen: \"127.0.0.1:9011\"\nlogLevel: warn\nschemaDir: \""+dir+"\"\n")

	code, out := captureStdout(t, func() int {
		return runConfigCLI([]string{"dump", "--effective", "-f", path, "--format", "json"})
	})
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}

	var dumped config.FileConfig
	if err := json.Unmarshal([]byte(out), &dumped); err != nil {
		t.Fatalf("dump is not JSON: %v\n%s", err, out)
	}
	if dumped.Listen == nil || *dumped.Listen != "127.0.0.1:9011" {
		t.Errorf("dumped listen = %v, want 127.0.0.1:9011", dumped.Listen)
	}
	if dumped.LogLevel == nil || *dumped.LogLevel != "warn" {
		t.Errorf("dumped logLevel = %v, want warn", dumped.LogLevel)
	}
}

func TestRunConfigCLI_DumpRequiresEffective(t *testing.T) {
	code, _ := captureStdout(t, func() int {
		return runConfigCLI([]string{"dump"})
	})
	if code != 2 {
		t.Fatalf("exit = %d, want 2 without --effective", code)
	}
}

func TestRunConfigCLI_Init(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	code, out := captureStdout(t, func() int {
		return runConfigCLI([]string{"init", "-f", path})
	})
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out, "wrote") {
		t.Errorf("stdout = %q, want wrote confirmation", out)
	}

	// The written file must load back cleanly.
	if _, err := config.NewLoader(path, "test").Load(); err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}

	// A second init refuses to clobber without --force.
	code, _ = captureStdout(t, func() int {
		return runConfigCLI([]string{"init", "-f", path})
	})
	if code != 1 {
		t.Fatalf("exit = %d, want 1 when file exists", code)
	}

	code, _ = captureStdout(t, func() int {
		return runConfigCLI([]string{"init", "-f", path, "--force"})
	})
	if code != 0 {
		t.Fatalf("exit = %d, want 0 with --force", code)
	}
}

func TestResolveDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv(config.EnvDataDir, dir)
	if got := resolveDefaultConfigPath(); got != "" {
		t.Fatalf("path = %q, want empty when no config.yaml exists", got)
	}

	want := filepath.Join(dir, "config.yaml")
	writeTestFile(t, want, "listen: \"127.0.0.1:8080\"\n")
	if got := resolveDefaultConfigPath(); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}
}
