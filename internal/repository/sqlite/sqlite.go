// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite, a pure Go build of SQLite, so the binary
// needs no C toolchain. Schema changes live in migrations/*.sql, embedded in
// the binary and applied by golang-migrate every time New opens a database.
//
// Multi-row writes (create session + questions, add questions, delete
// session + questions) go through withTx, so a crash part-way through
// leaves either the old state or the new one.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// registers the "sqlite" database/sql driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a sql.DB connection pool and implements every repository in
// internal/repository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and brings the schema up to date.
//
// dbPath examples:
//   - "data/crackbano.db" → file-based database
//   - ":memory:"          → in-memory database, used by tests
//
// PRAGMAs are per connection. File databases pass them in the DSN so every
// pooled connection gets them; an in-memory database exists per connection,
// so its pool is pinned to one connection and the Exec calls below suffice.
func New(dbPath string) (*DB, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by /health.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// ExecContext exposes raw statement execution for maintenance jobs such as
// the orphan sweep.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}

// SchemaVersion returns the applied migration version and whether the last
// migration left the schema dirty.
func (db *DB) SchemaVersion(ctx context.Context) (uint, bool, error) {
	var (
		version int64
		dirty   bool
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT version, dirty FROM schema_migrations LIMIT 1`,
	).Scan(&version, &dirty)
	if err != nil {
		return 0, false, fmt.Errorf("sqlite: reading schema version: %w", err)
	}
	return uint(version), dirty, nil
}

// migrate applies every pending migration from migrationsFS.
//
// The migrate.Migrate instance is intentionally not closed: its database
// driver wraps db.conn and closing it would close our pool. Only the
// source is released.
func (db *DB) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("creating migration source: %w", err)
	}
	defer source.Close()

	driver, err := migratesqlite.WithInstance(db.conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
