package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/starford/lngkit/internal/index"
	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/langservice"
	"github.com/starford/lngkit/internal/testutil"
	"github.com/starford/lngkit/internal/translator"
)

func sessionEnv(t *testing.T, files map[string]string) http.Handler {
	t.Helper()
	_, store := testutil.TestLanguages(t, files)
	db := testutil.TestDB(t)
	if err := index.Sync(db, store, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	svc := langservice.NewService(store, db, nil)
	return NewRouter(svc, false, "", nil, WithTranslator(translator.New(store)))
}

func TestActive_DefaultsBeforeLoad(t *testing.T) {
	router := sessionEnv(t, map[string]string{"de_DE.lng": german})

	w := do(t, router, http.MethodGet, "/active/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ActiveLanguageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != translator.DefaultLanguage || resp.Keys != 0 {
		t.Errorf("active = %+v", resp)
	}
}

func TestActive_SetPreferredAndTranslate(t *testing.T) {
	router := sessionEnv(t, map[string]string{"de_DE.lng": german})

	w := do(t, router, http.MethodPut, "/active/", jsonBody(SetActiveRequest{Codes: []string{"fr", "de"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d: %s", w.Code, w.Body.String())
	}
	var active ActiveLanguageResponse
	_ = json.Unmarshal(w.Body.Bytes(), &active)
	if active.Code != "de_DE" || active.Name != "Deutsch" || active.Keys != 2 {
		t.Errorf("active = %+v", active)
	}

	w = do(t, router, http.MethodGet, "/active/keys/save_as", nil)
	var tr ActiveTranslationResponse
	_ = json.Unmarshal(w.Body.Bytes(), &tr)
	if !tr.Found || tr.Value != "Speichern unter..." {
		t.Errorf("translation = %+v", tr)
	}

	w = do(t, router, http.MethodGet, "/active/keys/svas?default=Save%20as", nil)
	tr = ActiveTranslationResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &tr)
	if tr.Found || tr.Value != "Save as" {
		t.Errorf("missing key = %+v", tr)
	}
	if len(tr.Suggestions) == 0 || tr.Suggestions[0] != "save_as" {
		t.Errorf("suggestions = %v", tr.Suggestions)
	}
}

func TestActive_SetUnknownLanguage(t *testing.T) {
	router := sessionEnv(t, map[string]string{"de_DE.lng": german})

	w := do(t, router, http.MethodPut, "/active/", jsonBody(SetActiveRequest{Codes: []string{"fr_FR"}}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	w = do(t, router, http.MethodPut, "/active/", jsonBody(SetActiveRequest{}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty codes = %d, want 400", w.Code)
	}
}

func TestActive_AvailableAndKnown(t *testing.T) {
	router := sessionEnv(t, map[string]string{"de_DE.lng": german, "xx.lng": german})

	w := do(t, router, http.MethodGet, "/active/available", nil)
	var entries []langs.Entry
	_ = json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != 2 || entries[0].Code != "de_DE" || entries[1].Name != "xx" {
		t.Errorf("available = %+v", entries)
	}

	w = do(t, router, http.MethodGet, "/active/known", nil)
	entries = nil
	_ = json.Unmarshal(w.Body.Bytes(), &entries)
	if len(entries) != len(langs.Known()) {
		t.Errorf("known = %d entries", len(entries))
	}
}
