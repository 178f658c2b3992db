// Package parser reads the block-based language file format and resolves
// the references between its blocks into a flat key to text mapping.
//
// A file is processed in two passes. The first pass scans lines into named
// blocks, tracking settings lines that redefine the markers mid-file. The
// second pass substitutes reference tokens in every block, recursively and
// with each block's own markers, until a fixed point or the pass limit.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// DefaultMaxPasses bounds the substitution sweeps for a single block.
const DefaultMaxPasses = 10

var (
	// ErrFileNotFound is returned by Load when the file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrHasErrors is returned by Load when the parse recorded errors.
	ErrHasErrors = errors.New("language file has errors")
)

// Option configures a parse.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	maxPasses int
	source    string
}

// WithLogger sends the parse log feed to l. Without it nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMaxPasses overrides DefaultMaxPasses. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.maxPasses = n
		}
	}
}

// WithSource names the parsed input in log lines.
func WithSource(name string) Option {
	return func(o *options) {
		o.source = name
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:    slog.New(slog.DiscardHandler),
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Result is the outcome of a parse. Translations is best-effort: it is
// populated even when Errors is non-zero.
type Result struct {
	Translations map[string]string `json:"translations"`
	Blocks       []Block           `json:"blocks"`
	Warnings     int               `json:"warnings"`
	Errors       int               `json:"errors"`
	Diagnostics  []Diagnostic      `json:"diagnostics"`
}

// OK reports whether the parse recorded no errors.
func (r *Result) OK() bool {
	return r.Errors == 0
}

// Has reports whether a diagnostic of kind was recorded.
func (r *Result) Has(kind Kind) bool {
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// ParseFile reads and parses the file at path. A missing or unreadable file
// yields an empty result with one error.
func ParseFile(path string, opts ...Option) *Result {
	o := newOptions(opts)
	if o.source == "" {
		o.source = path
	}
	diag := newDiagnostics(o.logger, o.source)
	diag.log(slog.LevelInfo, false, "start parsing file")

	data, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("file not found: %s", path)
		if !errors.Is(err, os.ErrNotExist) {
			msg = fmt.Sprintf("cannot read file %s: %v", path, err)
		}
		diag.err(0, KindFileNotFound, "", msg)
		diag.summary()
		return diag.result(nil, nil)
	}

	return run(string(data), o, diag)
}

// Parse parses in-memory file content.
func Parse(data []byte, opts ...Option) *Result {
	o := newOptions(opts)
	diag := newDiagnostics(o.logger, o.source)
	diag.log(slog.LevelInfo, false, "start parsing file")
	return run(string(data), o, diag)
}

// ParseReader parses content read from r.
func ParseReader(r io.Reader, opts ...Option) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parser: read input: %w", err)
	}
	return Parse(data, opts...), nil
}

// Load parses the file at path and returns its translations. If the parse
// recorded any error the returned map is empty and the error wraps
// ErrFileNotFound or ErrHasErrors. Warnings never suppress the result.
func Load(path string, opts ...Option) (map[string]string, error) {
	res := ParseFile(path, opts...)
	if res.OK() {
		return res.Translations, nil
	}
	if res.Has(KindFileNotFound) {
		return map[string]string{}, fmt.Errorf("parser: load %s: %w", path, ErrFileNotFound)
	}
	return map[string]string{}, fmt.Errorf("parser: load %s: %w (errors: %d, warnings: %d)",
		path, ErrHasErrors, res.Errors, res.Warnings)
}

func run(data string, o options, diag *diagnostics) *Result {
	st := newStore()

	diag.log(slog.LevelDebug, true, "first pass: reading blocks")
	newScanner(st, diag).scan(splitLines(data))

	diag.log(slog.LevelDebug, true, "second pass: resolving references", slog.Int("blocks", st.len()))
	res := newResolver(st, diag, o.maxPasses)
	translations := make(map[string]string, st.len())
	blocks := make([]Block, 0, st.len())
	for _, name := range st.names() {
		b, _ := st.get(name)
		blocks = append(blocks, b)
		translations[name] = res.resolveBlock(b)
	}

	diag.log(slog.LevelInfo, false, "finished parsing file")
	diag.summary()
	return diag.result(translations, blocks)
}

func (d *diagnostics) result(translations map[string]string, blocks []Block) *Result {
	if translations == nil {
		translations = map[string]string{}
	}
	if blocks == nil {
		blocks = []Block{}
	}
	entries := d.entries
	if entries == nil {
		entries = []Diagnostic{}
	}
	return &Result{
		Translations: translations,
		Blocks:       blocks,
		Warnings:     d.warnings,
		Errors:       d.errors,
		Diagnostics:  entries,
	}
}
