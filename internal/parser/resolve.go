package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// resolver is the second pass: it substitutes reference tokens between
// blocks of a store.
type resolver struct {
	store     *store
	diag      *diagnostics
	maxPasses int
	patterns  map[[2]string]*regexp.Regexp
}

func newResolver(st *store, diag *diagnostics, maxPasses int) *resolver {
	return &resolver{
		store:     st,
		diag:      diag,
		maxPasses: maxPasses,
		patterns:  make(map[[2]string]*regexp.Regexp),
	}
}

// pattern returns the reference matcher for a delimiter pair. Delimiters are
// literal text; the inner span is non-empty, non-greedy and single-line.
func (r *resolver) pattern(d Delimiters) *regexp.Regexp {
	key := [2]string{d.RefStart, d.RefEnd}
	if re, ok := r.patterns[key]; ok {
		return re
	}
	re := regexp.MustCompile(regexp.QuoteMeta(d.RefStart) + `(.+?)` + regexp.QuoteMeta(d.RefEnd))
	r.patterns[key] = re
	return re
}

// resolveBlock fully resolves a stored block.
func (r *resolver) resolveBlock(b Block) string {
	return r.resolve(b.Content, b.Name, b.Delimiters, []string{b.Name})
}

// resolve substitutes references in content, which belongs to block name and
// is interpreted with d. chain holds the blocks currently being resolved,
// outermost first. Sweeps repeat until nothing changes or maxPasses is hit;
// in the latter case the last partial result is returned.
func (r *resolver) resolve(content, name string, d Delimiters, chain []string) string {
	re := r.pattern(d)
	aliases := make(map[string]string)

	result := content
	for range r.maxPasses {
		next := r.sweep(re, result, name, aliases, chain)
		if next == result {
			return result
		}
		result = next
	}

	r.diag.info(0, KindPassLimit, name,
		fmt.Sprintf("block '%s': stopped after %d substitution passes without reaching a fixed point", name, r.maxPasses))
	return result
}

// sweep performs one left-to-right substitution pass over content.
func (r *resolver) sweep(re *regexp.Regexp, content, name string, aliases map[string]string, chain []string) string {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		sb.WriteString(content[last:m[0]])
		sb.WriteString(r.substitute(content[m[0]:m[1]], content[m[2]:m[3]], name, aliases, chain))
		last = m[1]
	}
	sb.WriteString(content[last:])
	return sb.String()
}

// substitute returns the replacement for one reference token. Any token
// that cannot be resolved is returned unchanged.
func (r *resolver) substitute(token, inner, name string, aliases map[string]string, chain []string) string {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return token
	}

	parts := strings.Fields(inner)
	varName := parts[0]
	alias := ""
	if len(parts) > 1 {
		alias = parts[1]
	}

	if varName == name {
		return token
	}

	if b, ok := r.store.get(varName); ok {
		for _, c := range chain {
			if c == varName {
				r.diag.err(0, KindReferenceCycle, name,
					fmt.Sprintf("block '%s', substitution '%s' forms a reference cycle: %s -> %s",
						name, inner, strings.Join(chain, " -> "), varName))
				return token
			}
		}

		next := append(chain[:len(chain):len(chain)], varName)
		resolved := r.resolve(b.Content, varName, b.Delimiters, next)

		if alias != "" {
			if _, bound := aliases[alias]; bound {
				r.diag.warn(0, KindAliasRebind, name,
					fmt.Sprintf("block '%s': alias '%s' was overwritten. Is this really what you wanted?", name, alias))
			}
			aliases[alias] = resolved
		}
		return resolved
	}

	if cached, ok := aliases[varName]; ok {
		if alias != "" {
			r.diag.err(0, KindAliasOfAlias, name,
				fmt.Sprintf("block '%s', substitution '%s': it is not allowed to create an alias for an alias", name, inner))
		}
		return cached
	}

	r.diag.err(0, KindUnresolvedReference, name,
		fmt.Sprintf("block '%s', substitution '%s' was not found ('%s')", name, varName, inner))
	return token
}
