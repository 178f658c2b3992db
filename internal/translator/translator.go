// Package translator owns the active translation set of a host session:
// it loads a language file by code, answers key lookups, and lists the
// languages available in the languages directory.
package translator

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/starford/lngkit/internal/apperr"
	"github.com/starford/lngkit/internal/langs"
	"github.com/starford/lngkit/internal/parser"
	"github.com/starford/lngkit/internal/storage"
)

// DefaultLanguage is the code reported before any language is loaded.
const DefaultLanguage = "en"

// ErrNoTranslations is returned when a language file parses cleanly but
// defines no blocks.
var ErrNoTranslations = errors.New("translator: language file has no translations")

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger for load events.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) { t.logger = l }
}

// WithParserOptions passes options to every parser.Load call.
func WithParserOptions(opts ...parser.Option) Option {
	return func(t *Translator) { t.parserOpts = append(t.parserOpts, opts...) }
}

// Translator is safe for concurrent use.
type Translator struct {
	store      storage.Provider
	logger     *slog.Logger
	parserOpts []parser.Option

	mu           sync.RWMutex
	code         string
	name         string
	loaded       bool
	translations map[string]string
	keys         []string
}

// New returns a Translator reading language files from store. No language
// is loaded; lookups return their defaults until SetLanguage succeeds.
func New(store storage.Provider, opts ...Option) *Translator {
	t := &Translator{
		store:        store,
		logger:       slog.New(slog.DiscardHandler),
		code:         DefaultLanguage,
		name:         langs.DisplayName(DefaultLanguage),
		translations: map[string]string{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetLanguage loads the file for code and makes it the active translation
// set. On any failure the previous state is kept.
func (t *Translator) SetLanguage(code string) error {
	code = langs.Normalize(code)
	if code == "" {
		return fmt.Errorf("translator: set language: %w", apperr.ErrInvalidCode)
	}
	file := langs.FileName(code, t.store.Ext())
	path, err := t.store.Path(file)
	if err != nil {
		return fmt.Errorf("translator: set language %s: %w", code, apperr.ErrInvalidCode)
	}

	opts := append([]parser.Option{parser.WithSource(file)}, t.parserOpts...)
	translations, err := parser.Load(path, opts...)
	if err != nil {
		return fmt.Errorf("translator: set language %s: %w", code, err)
	}
	if len(translations) == 0 {
		return fmt.Errorf("translator: set language %s: %w", code, ErrNoTranslations)
	}

	keys := make([]string, 0, len(translations))
	for k := range translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t.mu.Lock()
	t.code = code
	t.name = langs.DisplayName(code)
	t.loaded = true
	t.translations = translations
	t.keys = keys
	t.mu.Unlock()

	t.logger.Info("translator: language loaded", slog.String("code", code), slog.Int("keys", len(keys)))
	return nil
}

// SetPreferred tries each code in order, along with its legacy full form
// and its bare language prefix, and activates the first that loads. It
// returns the code that was activated.
func (t *Translator) SetPreferred(codes ...string) (string, error) {
	var errs []error
	seen := make(map[string]struct{})
	for _, code := range codes {
		for _, c := range candidates(code) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			err := t.SetLanguage(c)
			if err == nil {
				return c, nil
			}
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("translator: set preferred: %w", apperr.ErrInvalidCode)
	}
	return "", errors.Join(errs...)
}

func candidates(code string) []string {
	code = langs.Normalize(code)
	if code == "" {
		return nil
	}
	out := []string{code, langs.Canonical(code)}
	if prefix, _, ok := strings.Cut(code, "_"); ok {
		out = append(out, prefix, langs.Canonical(prefix))
	}
	return out
}

// Reload re-reads the active language file. It is a no-op when no language
// has been loaded.
func (t *Translator) Reload() error {
	t.mu.RLock()
	code, loaded := t.code, t.loaded
	t.mu.RUnlock()
	if !loaded {
		return nil
	}
	return t.SetLanguage(code)
}

// Get returns the translation of key. Surrounding whitespace in key is
// ignored; an empty def falls back to the key itself.
func (t *Translator) Get(key, def string) string {
	key = strings.TrimSpace(key)
	if def == "" {
		def = key
	}
	t.mu.RLock()
	v, ok := t.translations[key]
	t.mu.RUnlock()
	if !ok {
		return def
	}
	return v
}

// Has reports whether key is defined in the active translation set.
func (t *Translator) Has(key string) bool {
	t.mu.RLock()
	_, ok := t.translations[strings.TrimSpace(key)]
	t.mu.RUnlock()
	return ok
}

// Language returns the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.code
}

// LanguageName returns the display name of the active language.
func (t *Translator) LanguageName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.name
}

// Keys returns the sorted keys of the active translation set.
func (t *Translator) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.keys...)
}

// Suggest returns up to n active keys that fuzzily match key, best first.
func (t *Translator) Suggest(key string, n int) []string {
	t.mu.RLock()
	keys := t.keys
	t.mu.RUnlock()
	return Suggest(strings.TrimSpace(key), keys, n)
}

// Suggest returns up to n entries of candidates that fuzzily match key,
// best first.
func Suggest(key string, candidates []string, n int) []string {
	if key == "" || n <= 0 {
		return nil
	}
	matches := fuzzy.Find(key, candidates)
	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}

// Available lists the language files in the store as (name, code) entries
// sorted by name.
func (t *Translator) Available() ([]langs.Entry, error) {
	metas, err := t.store.List()
	if err != nil {
		return nil, fmt.Errorf("translator: available: %w", err)
	}
	out := make([]langs.Entry, 0, len(metas))
	for _, m := range metas {
		out = append(out, langs.Entry{Name: langs.DisplayName(m.Code), Code: m.Code})
	}
	langs.SortByName(out)
	return out, nil
}
