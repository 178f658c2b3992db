package api

import (
	"github.com/starford/lngkit/internal/langservice"
	"github.com/starford/lngkit/internal/parser"
)

// PutLanguageRequest is the JSON request body for writing a language file.
// Plain-text bodies are accepted as the raw content too.
type PutLanguageRequest struct {
	Content string `json:"content" example:"!!! === $ $ #\n=== hello\nHello" validate:"required"`
}

// LanguageItem is a lightweight item in a list response (aliased from the domain layer).
type LanguageItem = langservice.LanguageItem

// LanguageDetail is the full language response type (aliased from the domain layer).
type LanguageDetail = langservice.LanguageDetail

// LanguageListResponse wraps language listings.
type LanguageListResponse struct {
	Languages []LanguageItem `json:"languages" validate:"required"`
}

// TranslationResponse is a single resolved key.
type TranslationResponse struct {
	Code  string `json:"code" example:"de_DE" validate:"required"`
	Key   string `json:"key" example:"hello" validate:"required"`
	Value string `json:"value" example:"Hallo" validate:"required"`
}

// KeysResponse lists the keys of a language.
type KeysResponse struct {
	Code string   `json:"code" example:"de_DE" validate:"required"`
	Keys []string `json:"keys" validate:"required"`
}

// KeyNotFoundResponse is returned when a key is missing, with the closest
// existing keys.
type KeyNotFoundResponse struct {
	Error       string   `json:"error" validate:"required"`
	Code        string   `json:"code" example:"de_DE"`
	Key         string   `json:"key" example:"helo"`
	Suggestions []string `json:"suggestions" example:"hello"`
}

// InvalidContentResponse is returned when uploaded content has parse errors.
type InvalidContentResponse struct {
	Error       string              `json:"error" validate:"required"`
	Warnings    int                 `json:"warnings"`
	Errors      int                 `json:"errors"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Code    string `json:"code" example:"de_DE" validate:"required"`
	Key     string `json:"key" example:"hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// CheckResponse is the outcome of validating content without storing it.
type CheckResponse struct {
	OK           bool                `json:"ok"`
	Warnings     int                 `json:"warnings"`
	Errors       int                 `json:"errors"`
	Translations map[string]string   `json:"translations"`
	Diagnostics  []parser.Diagnostic `json:"diagnostics"`
}

// UploadResponse is returned after a successful language file upload.
type UploadResponse struct {
	Code     string `json:"code" example:"de_DE" validate:"required"`
	File     string `json:"file" example:"de_DE.lng" validate:"required"`
	Size     int64  `json:"size" example:"1234" validate:"required"`
	Created  bool   `json:"created"`
	Checksum string `json:"checksum" validate:"required"`
}
