package parser

import (
	"slices"
	"strings"
)

// splitLines splits data into lines the way a line reader would: "\n" and
// "\r\n" terminate a line and a trailing terminator does not start a new one.
func splitLines(data string) []string {
	if data == "" {
		return nil
	}
	lines := strings.Split(data, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// scanner is the first pass: it walks lines once and accumulates named
// blocks into a store.
type scanner struct {
	live  Delimiters // redefined by settings lines
	next  Delimiters // snapshot handed to the next declared block
	store *store
	diag  *diagnostics

	// active block
	names    []string
	content  []string
	delims   Delimiters
	declLine int
}

func newScanner(st *store, diag *diagnostics) *scanner {
	d := DefaultDelimiters()
	return &scanner{live: d, next: d, delims: d, store: st, diag: diag}
}

func (s *scanner) scan(lines []string) {
	for i, line := range lines {
		n := i + 1

		if n == 1 || hasMarker(line, s.live.Settings) {
			s.flush(n)
			s.live = applySettingsLine(s.live, line, n, s.diag)
			s.next = s.live
			continue
		}

		if hasMarker(line, s.live.Block) {
			s.flush(n)
			s.delims = s.next
			s.declLine = n
			s.names = s.blockNames(line[len(s.live.Block):], n)
			continue
		}

		if len(s.names) > 0 {
			s.content = append(s.content, line)
		}
	}
	s.flush(len(lines))
}

// blockNames returns the unique names on a block-start line, stopping at
// the first comment marker token.
func (s *scanner) blockNames(rest string, n int) []string {
	var names []string
	for _, tok := range strings.Fields(rest) {
		if tok == s.live.Comment {
			break
		}
		names = append(names, tok)
	}

	unique := make([]string, 0, len(names))
	for _, name := range names {
		if !slices.Contains(unique, name) {
			unique = append(unique, name)
		}
	}
	if len(unique) != len(names) {
		s.diag.info(n, KindDuplicateNames, "", "removed duplicate names, keeping only unique")
	}
	return unique
}

func (s *scanner) flush(n int) {
	if len(s.names) > 0 {
		s.store.save(s.names, s.content, s.delims, s.declLine, n, s.diag)
	}
	s.names = nil
	s.content = nil
}
