// Package translit converts product names between the phonetic Latin spelling
// customers type and the native script used by the storefront search index.
//
// The two directions are intentionally lossy. Several phonetic patterns share a
// native letter ("x" and "kh" both give "խ") and the reverse table keeps one
// canonical spelling per letter, so ToPhoneticSpelling(ToNativeScript(s)) is not
// guaranteed to return s.
package translit

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Engine is a stateless transliterator bound to one Table. It is safe for
// concurrent use.
type Engine struct {
	table *Table
}

// NewEngine binds an engine to table.
func NewEngine(table *Table) (*Engine, error) {
	if table == nil {
		return nil, eris.New("transliteration table is required")
	}
	return &Engine{table: table}, nil
}

// ToNativeScript lower-cases text and rewrites it left to right, preferring the
// longest pattern at each position. Characters with no rule pass through.
func (e *Engine) ToNativeScript(text string) string {
	if text == "" {
		return ""
	}

	runes := []rune(strings.ToLower(text))
	var out strings.Builder
	out.Grow(len(text) * 2)

	for i := 0; i < len(runes); {
		matched := false
		for size := e.table.Longest(); size > 0; size-- {
			if i+size > len(runes) {
				continue
			}
			if candidate, ok := e.table.Lookup(string(runes[i : i+size])); ok {
				out.WriteString(candidate)
				i += size
				matched = true
				break
			}
		}
		if !matched {
			out.WriteRune(runes[i])
			i++
		}
	}

	return out.String()
}

// ToPhoneticSpelling maps native text back to its canonical phonetic spelling.
// The table digraph is recognised before single-letter lookups; characters with
// no reverse entry pass through.
func (e *Engine) ToPhoneticSpelling(text string) string {
	if text == "" {
		return ""
	}

	digraph := []rune(e.table.Digraph().Native)
	runes := []rune(text)
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(runes); i++ {
		if len(digraph) == 2 && i+1 < len(runes) && runes[i] == digraph[0] && runes[i+1] == digraph[1] {
			out.WriteString(e.table.Digraph().Phonetic)
			i++
			continue
		}
		if phonetic, ok := e.table.Reverse(runes[i]); ok {
			out.WriteString(phonetic)
			continue
		}
		out.WriteRune(runes[i])
	}

	return out.String()
}
