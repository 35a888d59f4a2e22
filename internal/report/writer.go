// SPDX-License-Identifier: MIT

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// Writer persists reports as pretty-printed JSON files, one per report,
// written atomically so readers never see a partial report.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write stores the report under <dir>/<id>.json and returns the path.
func (w *Writer) Write(rep *Report) (string, error) {
	if rep.ID == "" {
		return "", fmt.Errorf("report has no ID")
	}
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("mkdir report dir: %w", err)
	}

	path := filepath.Join(w.dir, rep.ID+".json")
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return "", fmt.Errorf("create pending report file: %w", err)
	}
	defer pending.Cleanup() //nolint:errcheck

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Read loads a report by ID.
func (w *Writer) Read(id string) (*Report, error) {
	if strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("invalid report ID %q", id)
	}
	raw, err := os.ReadFile(filepath.Join(w.dir, id+".json"))
	if err != nil {
		return nil, err
	}
	var rep Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &rep, nil
}
