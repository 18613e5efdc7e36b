// Package store provides SQLite-backed persistence for assets, users, tickets,
// and login sessions.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/itam/internal/apperr"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS assets (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	hostname     TEXT NOT NULL,
	serial       TEXT,
	model        TEXT,
	location     TEXT,
	status       TEXT NOT NULL DEFAULT 'active',
	purchased_at TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_serial   ON assets(serial);
CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_hostname ON assets(hostname);

CREATE TABLE IF NOT EXISTS users (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	username        TEXT NOT NULL,
	fullname        TEXT,
	email           TEXT,
	department      TEXT,
	hashed_password TEXT,
	is_active       INTEGER NOT NULL DEFAULT 1,
	role            TEXT NOT NULL DEFAULT 'user'
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email    ON users(email);

CREATE TABLE IF NOT EXISTS tickets (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	status      TEXT NOT NULL DEFAULT 'open',
	priority    TEXT NOT NULL DEFAULT 'medium',
	created_at  TEXT,
	asset_id    INTEGER REFERENCES assets(id) ON DELETE CASCADE,
	user_id     INTEGER REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tickets_user ON tickets(user_id);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory_files (
	path      TEXT PRIMARY KEY,
	checksum  TEXT NOT NULL,
	synced_at DATETIME NOT NULL
);
`

// DB wraps a sql.DB with inventory-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// mapErr converts driver errors into the application taxonomy. Unique
// violations become *apperr.DuplicateError naming the offending column.
func mapErr(err error, values map[string]string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
		// Message form: "UNIQUE constraint failed: assets.serial".
		field := se.Error()
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return &apperr.DuplicateError{Field: field, Value: values[field]}
	}
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
