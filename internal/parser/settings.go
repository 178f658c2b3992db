package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default delimiter configuration.
const (
	DefaultSettingsMarker = "!!!"
	DefaultBlockMarker    = "==="
	DefaultRefStart       = "$"
	DefaultRefEnd         = "$"
	DefaultCommentMarker  = ";"
)

// Delimiters is the marker configuration active for a block.
// Values are copied into each block at declaration time.
type Delimiters struct {
	Settings string `json:"settings"`
	Block    string `json:"block"`
	RefStart string `json:"ref_start"`
	RefEnd   string `json:"ref_end"`
	Comment  string `json:"comment"`
}

// DefaultDelimiters returns the configuration in effect before line 1.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Settings: DefaultSettingsMarker,
		Block:    DefaultBlockMarker,
		RefStart: DefaultRefStart,
		RefEnd:   DefaultRefEnd,
		Comment:  DefaultCommentMarker,
	}
}

// String renders d in settings-line form.
func (d Delimiters) String() string {
	return strings.Join([]string{d.Settings, d.Block, d.RefStart, d.RefEnd, d.Comment}, " ")
}

// hasMarker reports whether line starts with marker followed by whitespace
// or end of line.
func hasMarker(line, marker string) bool {
	if marker == "" || !strings.HasPrefix(line, marker) {
		return false
	}
	rest := line[len(marker):]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsSpace(r)
}

// applySettingsLine parses a settings line and returns the updated
// configuration. Changes are reported to the diagnostics sink.
func applySettingsLine(cur Delimiters, line string, lineNo int, diag *diagnostics) Delimiters {
	words := strings.Fields(line)
	if len(words) == 0 {
		return cur
	}

	if words[0] != cur.Settings {
		diag.info(lineNo, KindSettingsChanged, "",
			fmt.Sprintf("changing settings marker from '%s' to '%s'", cur.Settings, words[0]))
		cur.Settings = words[0]
	}

	switch {
	case len(words) >= 5:
		cur.Block = words[1]
		cur.RefStart = words[2]
		cur.RefEnd = words[3]
		cur.Comment = words[4]
		diag.info(lineNo, KindSettingsChanged, "",
			fmt.Sprintf("settings updated: block='%s' ref_start='%s' ref_end='%s' comment='%s'",
				cur.Block, cur.RefStart, cur.RefEnd, cur.Comment))
	case len(words) > 1:
		diag.warn(lineNo, KindIncompleteSettings, "",
			fmt.Sprintf("incomplete settings line, expected 5 words, got %d", len(words)))
	}

	return cur
}
