// SPDX-License-Identifier: MIT

package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/checkings/checkings/internal/log"
	"github.com/checkings/checkings/internal/schema"
)

// SyncStats summarizes one schema directory sync.
type SyncStats struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int

	// UpdatedIDs lists schemas whose fields changed, so callers can drop
	// compiled state for the superseded versions.
	UpdatedIDs []string
}

// SyncDir loads every schema document in dir into the store. Files are
// matched by extension (.json, .yaml, .yml) and keyed by schema name,
// defaulting to the file name. A changed document keeps its ID and bumps
// the version, exactly like an update through the API. Broken files are
// skipped and counted, never fatal: one bad document must not take down
// a reload.
func SyncDir(ctx context.Context, store Store, dir string) (SyncStats, error) {
	var stats SyncStats
	if dir == "" {
		return stats, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("read schema dir: %w", err)
	}

	logger := log.WithComponent("registry")

	// ReadDir sorts by file name, so repeated syncs resolve duplicate
	// names the same way.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := syncFile(ctx, store, path, ext, &stats); err != nil {
			stats.Failed++
			logger.Warn().
				Err(err).
				Str(log.FieldEvent, "schema.sync_skip").
				Str(log.FieldPath, path).
				Msg("skipping schema file")
		}
	}

	logger.Info().
		Str(log.FieldEvent, "schema.sync_done").
		Str(log.FieldPath, dir).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("unchanged", stats.Unchanged).
		Int("failed", stats.Failed).
		Msg("schema directory synced")

	return stats, nil
}

// syncFile parses, compiles and upserts a single schema document.
func syncFile(ctx context.Context, store Store, path, ext string, stats *SyncStats) error {
	// #nosec G304 -- paths come from the operator's configured schema directory
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var doc schema.Schema
	if ext == ".json" {
		doc, err = schema.ParseJSON(data)
	} else {
		doc, err = schema.ParseYAML(data)
	}
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(doc.Fields) == 0 {
		return errors.New("schema has no fields")
	}
	if _, err := schema.Compile(doc); err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	now := time.Now().UTC()

	current, err := store.GetByName(ctx, doc.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		// The ID in the file is ignored; the fingerprint is the ID.
		doc.ID = ""
		doc.EnsureID()
		if doc.Version == 0 {
			doc.Version = 1
		}
		doc.CreatedAt = now
		doc.UpdatedAt = now
		if err := store.Put(ctx, &doc); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		stats.Created++
	case err != nil:
		return fmt.Errorf("lookup: %w", err)
	default:
		if current.Fingerprint() == doc.Fingerprint() {
			stats.Unchanged++
			return nil
		}
		doc.ID = current.ID
		doc.Version = current.Version + 1
		doc.CreatedAt = current.CreatedAt
		doc.UpdatedAt = now
		if err := store.Put(ctx, &doc); err != nil {
			return fmt.Errorf("store: %w", err)
		}
		stats.Updated++
		stats.UpdatedIDs = append(stats.UpdatedIDs, doc.ID)
	}

	return nil
}
