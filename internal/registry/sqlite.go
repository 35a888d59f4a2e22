// SPDX-License-Identifier: MIT

package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/checkings/checkings/internal/schema"
)

const sqliteSchemaVersion = 1

// SQLiteStore is the durable default backend. Schemas are stored as JSON
// payloads with the queryable columns extracted.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the schema database at dbPath. The
// pragmas ride in the DSN so they apply to every pooled connection.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		dbPath, (5 * time.Second).Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema store: migration failed: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= sqliteSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ddl := `
	CREATE TABLE IF NOT EXISTS schemas (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schemas_name ON schemas(name);
	`
	if _, err := tx.Exec(ddl); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Put(ctx context.Context, sc *schema.Schema) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	query := `
	INSERT INTO schemas (id, name, version, payload, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		version = excluded.version,
		payload = excluded.payload,
		updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		sc.ID, sc.Name, sc.Version, payload, sc.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*schema.Schema, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM schemas WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var out schema.Schema
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*schema.Schema, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM schemas WHERE name = ? ORDER BY version DESC LIMIT 1", name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var out schema.Schema
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*schema.Schema, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM schemas ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var list []*schema.Schema
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sc schema.Schema
		if err := json.Unmarshal(payload, &sc); err != nil {
			return nil, err
		}
		list = append(list, &sc)
	}
	return list, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM schemas WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ Store = (*SQLiteStore)(nil)
