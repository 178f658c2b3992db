package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/lngkit/internal/langservice"
)

const maxContentBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *langservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *langservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pathParam returns a URL parameter with percent-encoding removed.
func pathParam(r *http.Request, name string) string {
	raw := strings.TrimPrefix(chi.URLParam(r, name), "/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// readContent reads language file content from a JSON {"content": ...}
// body or, for any other content type, from the raw body.
func readContent(w http.ResponseWriter, r *http.Request) ([]byte, string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContentBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "failed to read body"
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" {
		return body, ""
	}
	var req PutLanguageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, "invalid JSON body"
	}
	return []byte(req.Content), ""
}

// ListLanguages handles GET /api/languages.
//
//	@Summary		List indexed languages
//	@Tags			languages
//	@Produce		json
//	@Success		200		{object}	LanguageListResponse
//	@Security		BearerAuth
//	@Router			/languages [get]
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Languages(r.Context())
	if err != nil {
		writeServiceError(w, "list languages", err)
		return
	}
	writeJSON(w, http.StatusOK, LanguageListResponse{Languages: nonNil(items)})
}

// GetLanguage handles GET /api/languages/{code}.
//
//	@Summary		Get a language file with its resolved translations and diagnostics
//	@Tags			languages
//	@Produce		json
//	@Param			code	path		string	true	"Language code"
//	@Success		200		{object}	LanguageDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/languages/{code} [get]
func (h *Handler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	d, err := h.svc.Language(r.Context(), code)
	if err != nil {
		writeServiceError(w, "get language", err, slog.String("code", code))
		return
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, http.StatusOK, d)
}

// PutLanguage handles PUT /api/languages/{code}.
//
//	@Summary		Create or replace a language file with optimistic concurrency
//	@Tags			languages
//	@Accept			json,plain
//	@Produce		json
//	@Param			code		path	string				true	"Language code"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	PutLanguageRequest	true	"File content"
//	@Success		200		{object}	LanguageDetail
//	@Success		201		{object}	LanguageDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	InvalidContentResponse
//	@Security		BearerAuth
//	@Router			/languages/{code} [put]
func (h *Handler) PutLanguage(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	content, msg := readContent(w, r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody(msg))
		return
	}
	if len(content) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	d, created, err := h.svc.PutLanguage(r.Context(), code, content, r.Header.Get("If-Match"))
	if err != nil {
		writeServiceError(w, "put language", err, slog.String("code", code))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	w.Header().Set("ETag", `"`+d.Checksum+`"`)
	writeJSON(w, status, d)
}

// DeleteLanguage handles DELETE /api/languages/{code}.
//
//	@Summary		Delete a language file
//	@Tags			languages
//	@Param			code	path	string	true	"Language code"
//	@Success		204		"Language deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/languages/{code} [delete]
func (h *Handler) DeleteLanguage(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	if err := h.svc.DeleteLanguage(r.Context(), code); err != nil {
		writeServiceError(w, "delete language", err, slog.String("code", code))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListKeys handles GET /api/languages/{code}/keys.
//
//	@Summary		List the keys of a language
//	@Tags			translations
//	@Produce		json
//	@Param			code	path		string	true	"Language code"
//	@Success		200		{object}	KeysResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/languages/{code}/keys [get]
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	keys, err := h.svc.Keys(r.Context(), code)
	if err != nil {
		writeServiceError(w, "list keys", err, slog.String("code", code))
		return
	}
	writeJSON(w, http.StatusOK, KeysResponse{Code: code, Keys: keys})
}

// Translate handles GET /api/languages/{code}/keys/{key}.
//
//	@Summary		Resolve a single key
//	@Tags			translations
//	@Produce		json
//	@Param			code	path		string	true	"Language code"
//	@Param			key		path		string	true	"Translation key"
//	@Success		200		{object}	TranslationResponse
//	@Failure		404		{object}	KeyNotFoundResponse
//	@Security		BearerAuth
//	@Router			/languages/{code}/keys/{key} [get]
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	code := pathParam(r, "code")
	key := strings.TrimSpace(pathParam(r, "*"))
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("key is required"))
		return
	}
	v, err := h.svc.Translate(r.Context(), code, key)
	if err != nil {
		writeServiceError(w, "translate", err, slog.String("code", code), slog.String("key", key))
		return
	}
	writeJSON(w, http.StatusOK, TranslationResponse{Code: code, Key: key, Value: v})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across keys and translations
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Code: hit.Code, Key: hit.Key, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Check handles POST /api/check.
//
//	@Summary		Parse content without storing it and report diagnostics
//	@Tags			languages
//	@Accept			json,plain
//	@Produce		json
//	@Param			source	query		string				false	"Name used in diagnostics"
//	@Param			body	body		PutLanguageRequest	true	"File content"
//	@Success		200		{object}	CheckResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/check [post]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	content, msg := readContent(w, r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody(msg))
		return
	}
	res := h.svc.Check(r.Context(), r.URL.Query().Get("source"), content)
	writeJSON(w, http.StatusOK, CheckResponse{
		OK:           res.OK(),
		Warnings:     res.Warnings,
		Errors:       res.Errors,
		Translations: res.Translations,
		Diagnostics:  res.Diagnostics,
	})
}
