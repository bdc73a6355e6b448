// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, pure Go, no cgo).
//
// It is the transactional alternative to the jsonfile backend. Writes that
// the JSON documents have to serialise through a queue are single statements
// here: an upvote is one UPDATE ... RETURNING, so concurrent upvotes cannot
// overwrite each other.
//
// The pattern is the usual database/sql one:
//  1. sql.Open(driverName, dataSourceName) creates a pool
//  2. db.QueryContext / db.ExecContext runs queries
//  3. rows.Scan(&field1, &field2) reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/samewave/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps the connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database and runs migrations.
//
// dbPath examples:
//   - "data/samewave.db" → file-based database
//   - ":memory:"         → in-memory database, used by the tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: SQLite has a single writer anyway, and every
	// ":memory:" connection would otherwise be a separate empty database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
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

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// seq is an AUTOINCREMENT key that only grows, so ORDER BY seq DESC is the
// head-first insertion order the JSON documents keep physically. thread_id
// deliberately has no foreign key: suggestions may point at missing threads.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS threads (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			id            TEXT NOT NULL UNIQUE,
			seed_track_id TEXT NOT NULL,
			tags          TEXT NOT NULL DEFAULT '[]',
			created_by    TEXT NOT NULL,
			created_at    DATETIME NOT NULL,
			track_data    TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating threads table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS suggestions (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			thread_id   TEXT NOT NULL,
			track_id    TEXT NOT NULL,
			reason      TEXT NOT NULL DEFAULT '',
			tags        TEXT NOT NULL DEFAULT '[]',
			created_by  TEXT NOT NULL,
			created_at  DATETIME NOT NULL,
			votes       INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
			track_data  TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_suggestions_thread_id ON suggestions(thread_id);
	`)
	if err != nil {
		return fmt.Errorf("creating suggestions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			id            TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
