package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// Block is a named unit of raw content together with the delimiters that
// were active when it was declared. References inside Content are always
// interpreted with Delimiters, never with the referrer's configuration.
type Block struct {
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	Delimiters Delimiters `json:"delimiters"`
	Line       int        `json:"line"`
}

// store maps block names to blocks and keeps declaration order so that
// resolution and logging are deterministic.
type store struct {
	blocks map[string]Block
	order  []string
}

func newStore() *store {
	return &store{blocks: make(map[string]Block)}
}

func (s *store) get(name string) (Block, bool) {
	b, ok := s.blocks[name]
	return b, ok
}

func (s *store) len() int {
	return len(s.order)
}

// names returns block names in first-declaration order.
func (s *store) names() []string {
	return s.order
}

// save stores one block per name, all sharing the same content and
// delimiters. Overwriting the first name of a declaration is a warning,
// overwriting any further name is informational.
func (s *store) save(names []string, lines []string, delims Delimiters, declLine, flushLine int, diag *diagnostics) {
	if len(names) == 0 {
		return
	}

	content := strings.TrimRightFunc(strings.Join(lines, "\n"), unicode.IsSpace)

	for i, name := range names {
		if _, exists := s.blocks[name]; exists {
			if i == 0 {
				diag.warn(flushLine, KindOverwrittenBlock, name,
					fmt.Sprintf("block '%s' is overwritten", name))
			} else {
				diag.info(flushLine, KindOverwrittenBlock, name,
					fmt.Sprintf("block '%s' overwritten (created from multi-block declaration)", name))
			}
		} else {
			s.order = append(s.order, name)
		}
		s.blocks[name] = Block{
			Name:       name,
			Content:    content,
			Delimiters: delims,
			Line:       declLine,
		}
	}

	if len(names) > 1 {
		diag.info(flushLine, KindMultiBlock, names[0],
			fmt.Sprintf("created %d blocks with same content: %s", len(names), strings.Join(names, ", ")))
	}
}
