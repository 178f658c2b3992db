// Package index provides a SQLite-backed index of parsed language files and
// their resolved translations, with optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS languages (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	file       TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	warnings   INTEGER NOT NULL DEFAULT 0,
	errors     INTEGER NOT NULL DEFAULT 0,
	keys       INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS translations (
	code  TEXT NOT NULL REFERENCES languages(code) ON DELETE CASCADE,
	key   TEXT NOT NULL,
	value TEXT NOT NULL DEFAULT '',
	UNIQUE(code, key)
);

CREATE INDEX IF NOT EXISTS idx_translations_key ON translations(key);
`

// schemaVersion is stored in PRAGMA user_version. The index only mirrors
// the language files, so a mismatch drops the tables and the next Sync
// rebuilds them.
const schemaVersion = 1

var derivedTables = []string{"translations_fts", "translations", "languages"}

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: set schema version: %w", err)
	}
	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("index: read schema version: %w", err)
	}
	if version == schemaVersion || version == 0 {
		return nil
	}
	for _, table := range derivedTables {
		if _, err := conn.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("index: drop %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
