package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/lngkit/internal/storage"
)

func syncEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, ".lng")
	if err != nil {
		t.Fatal(err)
	}
	return dir, store, testDB(t)
}

func TestSync_IndexesResolvedTranslations(t *testing.T) {
	dir, store, db := syncEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "de_DE.lng"), []byte("!!! === $ $ #\n=== car\nAuto\n=== phrase\nMein $car$\n"), 0o644)

	if err := Sync(db, store, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	v, ok, _ := db.Translate("de_DE", "phrase")
	if !ok || v != "Mein Auto" {
		t.Errorf("phrase = %q, %v", v, ok)
	}
	lang, _ := db.GetLanguage("de_DE")
	if lang == nil || lang.Name != "Deutsch" || lang.Keys != 2 {
		t.Errorf("language row = %+v", lang)
	}
}

func TestSync_ErrorsStoreNoTranslations(t *testing.T) {
	dir, store, db := syncEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "fr.lng"), []byte("!!!\n=== a\n$missing$\n=== b\nok\n"), 0o644)

	if err := Sync(db, store, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	lang, _ := db.GetLanguage("fr")
	if lang == nil || lang.Errors != 1 || lang.Keys != 0 {
		t.Errorf("language row = %+v, want errors=1 keys=0", lang)
	}
	tr, _ := db.Translations("fr")
	if len(tr) != 0 {
		t.Errorf("translations = %v, want none", tr)
	}
}

func TestSync_RemovesStale(t *testing.T) {
	dir, store, db := syncEnv(t)
	path := filepath.Join(dir, "it.lng")
	_ = os.WriteFile(path, []byte("!!!\n=== a\nb\n"), 0o644)
	logger := slog.New(slog.DiscardHandler)
	_ = Sync(db, store, logger)

	_ = os.Remove(path)
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("it"); cs != "" {
		t.Error("stale language not removed")
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	dir, store, db := syncEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "es.lng"), []byte("!!!\n=== a\nb\n"), 0o644)
	logger := slog.New(slog.DiscardHandler)
	_ = Sync(db, store, logger)

	before, _ := db.GetLanguage("es")
	_ = Sync(db, store, logger)
	after, _ := db.GetLanguage("es")
	if !before.UpdatedAt.Equal(after.UpdatedAt) {
		t.Error("unchanged file was re-indexed")
	}
}
