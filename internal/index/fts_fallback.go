//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the translations table.
	return nil
}

func ftsInsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsClear(_ *sql.Tx, _ string) {}

// Search matches query as a substring of keys and values. Key matches
// rank first. Used when FTS5 is not compiled in.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT code, key, substr(value, 1, 200)
		FROM translations
		WHERE key LIKE ?1 ESCAPE '\' OR value LIKE ?1 ESCAPE '\'
		ORDER BY (key LIKE ?1 ESCAPE '\') DESC, code, key
		LIMIT ?2
	`, like, limit)
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
