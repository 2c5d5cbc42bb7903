// Package storage implements the durable SQLite store behind the
// ledger: schema management and the query surface every engine
// component reads and writes through.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SchemaVersionKey is the meta_info row marking the schema revision.
// It is written once at initialization and never migrated in place.
const SchemaVersionKey = "schema_version"

const schemaVersion = "1"

// Store owns the SQLite handle. All ledger operations run against it,
// each wrapped in its own transaction via WithTx.
type Store struct {
	db      *sql.DB
	queries *Queries
}

// Open creates the database file if needed, applies migrations and
// seeds the schema version marker.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{
		db:      db,
		queries: New(db),
	}

	if err := store.ensureSchemaVersion(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed schema version: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Queries returns the auto-committing query surface, outside any
// transaction. Use WithTx for multi-statement units.
func (s *Store) Queries() *Queries {
	return s.queries
}

// WithTx runs fn inside a single transaction. Any error rolls the
// whole unit back, so partial writes are never observable.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(s.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.ErrorContext(ctx, "Transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ensureSchemaVersion writes the schema_version marker once; later
// startups leave the existing value untouched.
func (s *Store) ensureSchemaVersion(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta_info (key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`,
		SchemaVersionKey, schemaVersion)
	return err
}

// SchemaVersion reads the stored schema version marker.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta_info WHERE key = ?`, SchemaVersionKey).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
