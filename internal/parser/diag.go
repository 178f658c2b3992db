package parser

import (
	"context"
	"log/slog"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Severity) level() slog.Level {
	switch s {
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Kind identifies the condition a diagnostic reports.
type Kind string

const (
	KindFileNotFound        Kind = "file_not_found"
	KindSettingsChanged     Kind = "settings_changed"
	KindIncompleteSettings  Kind = "incomplete_settings"
	KindDuplicateNames      Kind = "duplicate_names"
	KindMultiBlock          Kind = "multi_block"
	KindOverwrittenBlock    Kind = "overwritten_block"
	KindUnresolvedReference Kind = "unresolved_reference"
	KindAliasOfAlias        Kind = "alias_of_alias"
	KindAliasRebind         Kind = "alias_rebind"
	KindReferenceCycle      Kind = "reference_cycle"
	KindPassLimit           Kind = "pass_limit"
)

// Diagnostic is one entry of the parse log feed.
// Line is 0 for diagnostics raised while resolving references.
type Diagnostic struct {
	Line     int      `json:"line,omitempty"`
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Block    string   `json:"block,omitempty"`
	Message  string   `json:"message"`
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("severity", d.Severity.String()),
		slog.String("kind", string(d.Kind)),
	}
	if d.Line > 0 {
		attrs = append(attrs, slog.Int("line", d.Line))
	}
	if d.Block != "" {
		attrs = append(attrs, slog.String("block", d.Block))
	}
	return slog.GroupValue(attrs...)
}

// logLimit is the combined warning+error count after which rate-limited
// log lines are dropped.
const logLimit = 20

// diagnostics collects counters and the diagnostic list for a single parse
// and forwards entries to a logger.
type diagnostics struct {
	logger   *slog.Logger
	source   string
	warnings int
	errors   int
	entries  []Diagnostic
}

func newDiagnostics(logger *slog.Logger, source string) *diagnostics {
	return &diagnostics{logger: logger, source: source}
}

func (d *diagnostics) info(line int, kind Kind, block, msg string) {
	d.add(Diagnostic{Line: line, Severity: SeverityInfo, Kind: kind, Block: block, Message: msg})
}

func (d *diagnostics) warn(line int, kind Kind, block, msg string) {
	d.add(Diagnostic{Line: line, Severity: SeverityWarning, Kind: kind, Block: block, Message: msg})
}

func (d *diagnostics) err(line int, kind Kind, block, msg string) {
	d.add(Diagnostic{Line: line, Severity: SeverityError, Kind: kind, Block: block, Message: msg})
}

// add records the entry, logs it subject to the rate limit, then bumps the
// counters. The limit is checked before counting, so the entry that crosses
// the threshold is still logged.
func (d *diagnostics) add(e Diagnostic) {
	d.entries = append(d.entries, e)
	d.log(e.Severity.level(), true, e.Message, slog.Any("diagnostic", e))

	switch e.Severity {
	case SeverityWarning:
		d.warnings++
	case SeverityError:
		d.errors++
	}
}

// log writes a line to the feed. Limited lines are dropped once more than
// logLimit warnings and errors were recorded.
func (d *diagnostics) log(level slog.Level, limited bool, msg string, attrs ...slog.Attr) {
	if d.logger == nil {
		return
	}
	if limited && d.warnings+d.errors > logLimit {
		return
	}
	if d.source != "" {
		attrs = append(attrs, slog.String("source", d.source))
	}
	d.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// summary logs the closing counters line, which is never rate limited.
func (d *diagnostics) summary() {
	level := slog.LevelInfo
	switch {
	case d.errors > 0:
		level = slog.LevelError
	case d.warnings > 0:
		level = slog.LevelWarn
	}
	d.log(level, false, "parse summary",
		slog.Int("errors", d.errors),
		slog.Int("warnings", d.warnings))
}
