// Package testutil provides shared test helpers for setting up language
// directories and index databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/lngkit/internal/index"
	"github.com/starford/lngkit/internal/storage"
)

// TestDB opens an index in a fresh temp directory. It is closed when the
// test ends.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLanguages creates a temporary languages directory seeded with files
// (file name → content) and returns it with a .lng storage.Provider.
func TestLanguages(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		WriteLanguage(t, dir, name, content)
	}
	store, err := storage.NewFS(dir, ".lng")
	if err != nil {
		t.Fatalf("storage.NewFS: %v", err)
	}
	return store.Root(), store
}

// WriteLanguage writes content to dir/name, failing the test on error.
func WriteLanguage(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
