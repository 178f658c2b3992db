// Package langservice coordinates the languages directory, the parser and
// the index for the API and MCP surfaces.
package langservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/lngkit/internal/apperr"
	"github.com/starford/lngkit/internal/checksum"
	"github.com/starford/lngkit/internal/index"
	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/parser"
	"github.com/starford/lngkit/internal/storage"
	"github.com/starford/lngkit/internal/translator"
)

// suggestionLimit caps "did you mean" lists on missing keys.
const suggestionLimit = 5

// LanguageItem is a lightweight item in a list response.
type LanguageItem struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	File      string    `json:"file"`
	Checksum  string    `json:"checksum"`
	Warnings  int       `json:"warnings"`
	Errors    int       `json:"errors"`
	Keys      int       `json:"keys"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LanguageDetail is the full representation of a language file: its raw
// content plus a fresh parse.
type LanguageDetail struct {
	LanguageItem
	Content      string              `json:"content"`
	Translations map[string]string   `json:"translations"`
	Diagnostics  []parser.Diagnostic `json:"diagnostics"`
}

// KeyNotFoundError reports a missing translation key together with the
// closest existing keys.
type KeyNotFoundError struct {
	Code        string
	Key         string
	Suggestions []string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in %s", e.Key, e.Code)
}

func (e *KeyNotFoundError) Unwrap() error { return apperr.ErrNotFound }

// InvalidContentError is returned when uploaded content has parse errors.
type InvalidContentError struct {
	Result *parser.Result
}

func (e *InvalidContentError) Error() string {
	return fmt.Sprintf("content has %d parse errors", e.Result.Errors)
}

func (e *InvalidContentError) Unwrap() error { return apperr.ErrInvalidContent }

// Service coordinates storage and index operations.
type Service struct {
	store      storage.Provider
	db         *index.DB
	logger     *slog.Logger
	parserOpts []parser.Option
}

// NewService creates a new language service. parserOpts are applied to every
// parse the service performs.
func NewService(store storage.Provider, db *index.DB, logger *slog.Logger, parserOpts ...parser.Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, db: db, logger: logger, parserOpts: parserOpts}
}

func (s *Service) fileFor(code string) (string, string, error) {
	code = langs.Normalize(code)
	file := langs.FileName(code, s.store.Ext())
	if code == "" {
		return "", "", apperr.ErrInvalidCode
	}
	if _, err := s.store.Path(file); err != nil {
		return "", "", fmt.Errorf("%w: %s", apperr.ErrInvalidCode, code)
	}
	return code, file, nil
}

func (s *Service) parse(file string, data []byte) *parser.Result {
	return parser.Parse(data, append([]parser.Option{parser.WithSource(file)}, s.parserOpts...)...)
}

// Languages returns every indexed language ordered by name.
func (s *Service) Languages(_ context.Context) ([]LanguageItem, error) {
	rows, err := s.db.Languages()
	if err != nil {
		return nil, err
	}
	items := make([]LanguageItem, len(rows))
	for i, r := range rows {
		items[i] = itemFromRow(r)
	}
	return items, nil
}

// Language reads a language file and returns it with a fresh parse.
func (s *Service) Language(_ context.Context, code string) (*LanguageDetail, error) {
	code, file, err := s.fileFor(code)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(code, file, data), nil
}

// Translate returns the resolved value of key in language code.
func (s *Service) Translate(_ context.Context, code, key string) (string, error) {
	code = langs.Normalize(code)
	row, err := s.db.GetLanguage(code)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", apperr.ErrNotFound
	}
	v, ok, err := s.db.Translate(code, key)
	if err != nil {
		return "", err
	}
	if !ok {
		keys, err := s.db.Keys(code)
		if err != nil {
			return "", err
		}
		return "", &KeyNotFoundError{Code: code, Key: key, Suggestions: translator.Suggest(key, keys, suggestionLimit)}
	}
	return v, nil
}

// Keys returns the sorted keys of an indexed language.
func (s *Service) Keys(_ context.Context, code string) ([]string, error) {
	code = langs.Normalize(code)
	row, err := s.db.GetLanguage(code)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperr.ErrNotFound
	}
	keys, err := s.db.Keys(code)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(keys), nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// PutLanguage writes a language file with optimistic concurrency and indexes
// it. Content with parse errors is rejected with an *InvalidContentError.
// created reports whether the file did not exist before.
func (s *Service) PutLanguage(_ context.Context, code string, content []byte, ifMatch string) (detail *LanguageDetail, created bool, err error) {
	code, file, err := s.fileFor(code)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.Read(file)
	switch {
	case err == nil:
		if !checksum.Matches(existing, ifMatch) {
			return nil, false, apperr.ErrConflict
		}
	case errors.Is(err, os.ErrNotExist):
		if ifMatch != "" {
			return nil, false, apperr.ErrConflict
		}
		created = true
	default:
		return nil, false, err
	}

	if res := s.parse(file, content); !res.OK() {
		return nil, false, &InvalidContentError{Result: res}
	}

	if err := s.store.Write(file, content); err != nil {
		return nil, false, err
	}
	if _, err := s.IndexFile(code, file, content); err != nil {
		return nil, false, err
	}
	s.logger.Info("language saved", slog.String("code", code), slog.Bool("created", created))
	return s.buildDetail(code, file, content), created, nil
}

// DeleteLanguage removes a language file from storage and index.
func (s *Service) DeleteLanguage(_ context.Context, code string) error {
	code, file, err := s.fileFor(code)
	if err != nil {
		return err
	}
	if err := s.store.Delete(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteLanguage(code)
}

// Check parses content without storing it.
func (s *Service) Check(_ context.Context, source string, content []byte) *parser.Result {
	if source == "" {
		source = "check"
	}
	return s.parse(source, content)
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(code, file string, data []byte) (*parser.Result, error) {
	return index.IndexFile(s.db, code, file, data, s.parserOpts...)
}

func (s *Service) buildDetail(code, file string, data []byte) *LanguageDetail {
	res := s.parse(file, data)
	item := LanguageItem{
		Code:      code,
		Name:      langs.DisplayName(code),
		File:      file,
		Checksum:  checksum.Sum(data),
		Warnings:  res.Warnings,
		Errors:    res.Errors,
		Keys:      len(res.Translations),
		UpdatedAt: time.Now().UTC(),
	}
	if row, err := s.db.GetLanguage(code); err == nil && row != nil && row.Checksum == item.Checksum {
		item.UpdatedAt = row.UpdatedAt
	}
	return &LanguageDetail{
		LanguageItem: item,
		Content:      string(data),
		Translations: res.Translations,
		Diagnostics:  nonNilSlice(res.Diagnostics),
	}
}

func itemFromRow(r index.LanguageRow) LanguageItem {
	return LanguageItem{
		Code:      r.Code,
		Name:      r.Name,
		File:      r.File,
		Checksum:  r.Checksum,
		Warnings:  r.Warnings,
		Errors:    r.Errors,
		Keys:      r.Keys,
		UpdatedAt: r.UpdatedAt,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Ext returns the language file extension of the underlying store.
func (s *Service) Ext() string {
	return s.store.Ext()
}
