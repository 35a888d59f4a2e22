// SPDX-License-Identifier: MIT

// Package registry persists validation schemas. Three backends share one
// interface: an in-memory store for tests and ephemeral runs, sqlite as
// the durable default, and badger for write-heavy deployments.
package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/checkings/checkings/internal/schema"
)

// ErrNotFound is returned when no schema with the requested ID exists.
var ErrNotFound = errors.New("schema not found")

// Store is the system of record for schemas. Implementations must be safe
// for concurrent use; returned schemas are private copies the caller may
// mutate.
type Store interface {
	// Put writes the schema under its ID, replacing any previous version.
	Put(ctx context.Context, s *schema.Schema) error
	// Get returns the schema with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*schema.Schema, error)
	// GetByName returns the schema with the given name, or ErrNotFound.
	// When several versions share the name, the highest version wins.
	GetByName(ctx context.Context, name string) (*schema.Schema, error)
	// List returns all schemas ordered by name, then ID.
	List(ctx context.Context) ([]*schema.Schema, error)
	// Delete removes the schema with the given ID, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open creates a Store for the configured backend. The sqlite and badger
// backends keep their data under dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLiteStore(filepath.Join(dataDir, "schemas.db"))
	case "badger":
		return OpenBadgerStore(filepath.Join(dataDir, "schemas"))
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
