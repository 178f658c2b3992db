package index

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

// LanguageRow represents a row in the languages table.
type LanguageRow struct {
	Code      string
	Name      string
	File      string
	Checksum  string
	Warnings  int
	Errors    int
	Keys      int
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Code    string
	Key     string
	Snippet string
}

// UpsertLanguage replaces a language row and its full translation set within
// a transaction. Keys is taken from len(translations).
func (db *DB) UpsertLanguage(row LanguageRow, translations map[string]string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO languages (code, name, file, checksum, warnings, errors, keys, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name       = excluded.name,
			file       = excluded.file,
			checksum   = excluded.checksum,
			warnings   = excluded.warnings,
			errors     = excluded.errors,
			keys       = excluded.keys,
			updated_at = excluded.updated_at
	`, row.Code, row.Name, row.File, row.Checksum, row.Warnings, row.Errors, len(translations), row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert language: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM translations WHERE code = ?`, row.Code); err != nil {
		return fmt.Errorf("index: clear translations: %w", err)
	}
	ftsClear(tx, row.Code)

	if len(translations) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO translations (code, key, value) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare translation insert: %w", err)
		}
		defer stmt.Close()
		for key, value := range translations {
			if _, err := stmt.Exec(row.Code, key, value); err != nil {
				return fmt.Errorf("index: insert translation %s: %w", key, err)
			}
			if err := ftsInsert(tx, row.Code, key, value); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteLanguage removes a language and all of its translations.
func (db *DB) DeleteLanguage(code string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsClear(tx, code)
	_, _ = tx.Exec(`DELETE FROM translations WHERE code = ?`, code)
	_, _ = tx.Exec(`DELETE FROM languages WHERE code = ?`, code)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for code, or "" if it is not indexed.
func (db *DB) GetChecksum(code string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM languages WHERE code = ?`, code).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

const languageColumns = `code, name, file, checksum, warnings, errors, keys, updated_at`

func scanLanguage(s interface{ Scan(...any) error }) (LanguageRow, error) {
	var r LanguageRow
	err := s.Scan(&r.Code, &r.Name, &r.File, &r.Checksum, &r.Warnings, &r.Errors, &r.Keys, &r.UpdatedAt)
	return r, err
}

// GetLanguage returns the row for code, or nil if it is not indexed.
func (db *DB) GetLanguage(code string) (*LanguageRow, error) {
	r, err := scanLanguage(db.conn.QueryRow(`SELECT `+languageColumns+` FROM languages WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get language: %w", err)
	}
	return &r, nil
}

// Languages returns every indexed language ordered by display name.
func (db *DB) Languages() ([]LanguageRow, error) {
	rows, err := db.conn.Query(`SELECT ` + languageColumns + ` FROM languages ORDER BY lower(name), code`)
	if err != nil {
		return nil, fmt.Errorf("index: languages: %w", err)
	}
	defer rows.Close()

	var out []LanguageRow
	for rows.Next() {
		r, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Translations returns the resolved key → value mapping of a language.
func (db *DB) Translations(code string) (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT key, value FROM translations WHERE code = ?`, code)
	if err != nil {
		return nil, fmt.Errorf("index: translations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Translate looks up a single key. ok is false when the key is absent.
func (db *DB) Translate(code, key string) (string, bool, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM translations WHERE code = ? AND key = ?`, code, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: translate: %w", err)
	}
	return v, true, nil
}

// Keys returns the sorted translation keys of a language.
func (db *DB) Keys(code string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT key FROM translations WHERE code = ?`, code)
	if err != nil {
		return nil, fmt.Errorf("index: keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out, rows.Err()
}

// AllChecksums returns code → checksum for every indexed language.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT code, checksum FROM languages`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var code, cs string
		if err := rows.Scan(&code, &cs); err != nil {
			return nil, err
		}
		out[code] = cs
	}
	return out, rows.Err()
}
