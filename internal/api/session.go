package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/starford/lngkit/internal/apperr"
	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/parser"
	"github.com/starford/lngkit/internal/translator"
)

const maxSuggestions = 5

// ActiveLanguageResponse describes the language the server translates into.
type ActiveLanguageResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Keys int    `json:"keys"`
}

// SetActiveRequest selects a language. Codes are tried in order.
type SetActiveRequest struct {
	Codes []string `json:"codes"`
}

// ActiveTranslationResponse is the result of a lookup in the active language.
type ActiveTranslationResponse struct {
	Code        string   `json:"code"`
	Key         string   `json:"key"`
	Value       string   `json:"value"`
	Found       bool     `json:"found"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type sessionHandler struct {
	tr *translator.Translator
}

func (h *sessionHandler) active() ActiveLanguageResponse {
	return ActiveLanguageResponse{
		Code: h.tr.Language(),
		Name: h.tr.LanguageName(),
		Keys: len(h.tr.Keys()),
	}
}

// Get handles GET /api/active.
func (h *sessionHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.active())
}

// Set handles PUT /api/active.
func (h *sessionHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil || len(req.Codes) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("codes are required"))
		return
	}
	if _, err := h.tr.SetPreferred(req.Codes...); err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidCode):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid language code"))
		case errors.Is(err, parser.ErrFileNotFound), errors.Is(err, translator.ErrNoTranslations):
			writeJSON(w, http.StatusNotFound, errorBody("no loadable language among codes"))
		default:
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		}
		return
	}
	writeJSON(w, http.StatusOK, h.active())
}

// Available handles GET /api/active/available.
func (h *sessionHandler) Available(w http.ResponseWriter, _ *http.Request) {
	entries, err := h.tr.Available()
	if err != nil {
		writeServiceError(w, "available languages", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// Known handles GET /api/active/known.
func (h *sessionHandler) Known(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, langs.Known())
}

// Translate handles GET /api/active/keys/*. A missing key answers 200 with
// the default value so hosts can render it directly.
func (h *sessionHandler) Translate(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "*")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return
	}
	def := r.URL.Query().Get("default")
	resp := ActiveTranslationResponse{
		Code:  h.tr.Language(),
		Key:   key,
		Value: h.tr.Get(key, def),
	}
	resp.Found = h.tr.Has(key)
	if !resp.Found {
		resp.Suggestions = h.tr.Suggest(key, maxSuggestions)
	}
	writeJSON(w, http.StatusOK, resp)
}
