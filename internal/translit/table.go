package translit

import (
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// MaxPatternLen is the longest source pattern a Table accepts.
const MaxPatternLen = 3

// Rule maps a short phonetic pattern to one or more native-script candidates.
// The first candidate is always the one emitted.
type Rule struct {
	Pattern    string
	Candidates []string
}

// Digraph is a two-character native sequence read back as one phonetic unit.
type Digraph struct {
	Native   string
	Phonetic string
}

// Table is an immutable rule set. Build it with NewTable.
type Table struct {
	forward map[string][]string
	reverse map[rune]string
	digraph Digraph
	longest int
}

// NewTable validates the rules and reverse entries and returns a Table that owns
// private copies of them.
func NewTable(rules []Rule, reverse map[rune]string, digraph Digraph) (*Table, error) {
	if len(rules) == 0 {
		return nil, eris.New("at least one rule is required")
	}

	forward := make(map[string][]string, len(rules))
	longest := 0
	for _, rule := range rules {
		length := utf8.RuneCountInString(rule.Pattern)
		if length == 0 || length > MaxPatternLen {
			return nil, eris.Errorf("rule pattern %q must be 1-%d characters", rule.Pattern, MaxPatternLen)
		}
		if len(rule.Candidates) == 0 {
			return nil, eris.Errorf("rule %q has no candidates", rule.Pattern)
		}
		for _, candidate := range rule.Candidates {
			if candidate == "" {
				return nil, eris.Errorf("rule %q has an empty candidate", rule.Pattern)
			}
		}
		if _, exists := forward[rule.Pattern]; exists {
			return nil, eris.Errorf("duplicate rule pattern %q", rule.Pattern)
		}
		forward[rule.Pattern] = append([]string(nil), rule.Candidates...)
		if length > longest {
			longest = length
		}
	}

	if digraph.Native != "" && utf8.RuneCountInString(digraph.Native) != 2 {
		return nil, eris.Errorf("digraph %q must be exactly two characters", digraph.Native)
	}

	reverseCopy := make(map[rune]string, len(reverse))
	for native, phonetic := range reverse {
		reverseCopy[native] = phonetic
	}

	return &Table{
		forward: forward,
		reverse: reverseCopy,
		digraph: digraph,
		longest: longest,
	}, nil
}

// Lookup returns the selected candidate for pattern, which is always the
// first one listed.
func (t *Table) Lookup(pattern string) (string, bool) {
	candidates, ok := t.forward[pattern]
	if !ok {
		return "", false
	}
	return candidates[0], true
}

// Candidates returns a copy of every candidate for pattern in rule order.
func (t *Table) Candidates(pattern string) []string {
	candidates, ok := t.forward[pattern]
	if !ok {
		return nil
	}
	return append([]string(nil), candidates...)
}

// Reverse returns the canonical phonetic spelling for a native character.
func (t *Table) Reverse(native rune) (string, bool) {
	phonetic, ok := t.reverse[native]
	return phonetic, ok
}

// Digraph returns the native sequence read back as a single phonetic unit.
func (t *Table) Digraph() Digraph {
	return t.digraph
}

// Longest reports the length of the longest pattern in the table.
func (t *Table) Longest() int {
	return t.longest
}
