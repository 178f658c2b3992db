//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS translations_fts USING fts5(
			code UNINDEXED,
			key,
			value,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, code, key, value string) error {
	_, err := tx.Exec(`INSERT INTO translations_fts (code, key, value) VALUES (?, ?, ?)`, code, key, value)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsClear(tx *sql.Tx, code string) {
	_, _ = tx.Exec(`DELETE FROM translations_fts WHERE code = ?`, code)
}

// Search performs an FTS5 full-text search over keys and values and returns
// matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT code,
		       key,
		       snippet(translations_fts, 2, '<b>', '</b>', '...', 32)
		FROM translations_fts
		WHERE translations_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Code, &r.Key, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
