package transliteration

import (
	"fmt"
	"strings"
)

// Rule identifies which scan step produced a token.
type Rule int

const (
	RuleDigraph Rule = iota + 1
	RulePair
	RuleSingle
	RulePassthrough
)

func (r Rule) String() string {
	switch r {
	case RuleDigraph:
		return "digraph"
	case RulePair:
		return "pair"
	case RuleSingle:
		return "single"
	case RulePassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rule) UnmarshalText(b []byte) error {
	for _, rule := range []Rule{RuleDigraph, RulePair, RuleSingle, RulePassthrough} {
		if rule.String() == string(b) {
			*r = rule
			return nil
		}
	}
	return fmt.Errorf("unknown scan rule %q", b)
}

// Token is one step of the grapheme scan.
type Token struct {
	Source string `json:"source"`
	Glyphs string `json:"glyphs"`
	Rule   Rule   `json:"rule"`
}

// A matcher inspects rs at cursor i and reports how many runes it consumes.
type matcher func(rs []rune, i int) (width int, glyphs string, ok bool)

// scanRules is the scanner's transition table in priority order. Passthrough
// always matches, so every cursor position advances.
var scanRules = []struct {
	rule  Rule
	match matcher
}{
	{RuleDigraph, matchDigraph},
	{RulePair, matchPair},
	{RuleSingle, matchSingle},
	{RulePassthrough, matchPassthrough},
}

func matchDigraph(rs []rune, i int) (int, string, bool) {
	if i+1 >= len(rs) {
		return 0, "", false
	}
	g, ok := graphemeMap[string(rs[i:i+2])]
	return 2, g, ok
}

// matchPair renders a grapheme followed by an explicit vowel as both glyphs.
func matchPair(rs []rune, i int) (int, string, bool) {
	if i+1 >= len(rs) {
		return 0, "", false
	}
	base, ok := graphemeMap[string(rs[i])]
	if !ok {
		return 0, "", false
	}
	next := string(rs[i+1])
	if !IsVowel(next) {
		return 0, "", false
	}
	return 2, base + graphemeMap[next], true
}

func matchSingle(rs []rune, i int) (int, string, bool) {
	g, ok := graphemeMap[string(rs[i])]
	return 1, g, ok
}

func matchPassthrough(rs []rune, i int) (int, string, bool) {
	return 1, string(rs[i]), true
}

func scan(text string, emit func(Token)) {
	rs := []rune(text)
	for i := 0; i < len(rs); {
		for _, sr := range scanRules {
			width, glyphs, ok := sr.match(rs, i)
			if !ok {
				continue
			}
			emit(Token{Source: string(rs[i : i+width]), Glyphs: glyphs, Rule: sr.rule})
			i += width
			break
		}
	}
}

// Scan tokenizes text left to right with maximal munch and returns every step.
func Scan(text string) []Token {
	var tokens []Token
	scan(text, func(t Token) {
		tokens = append(tokens, t)
	})
	return tokens
}

// MapGraphemes converts romanized graphemes to Ol Chiki and copies anything
// unrecognized through unchanged.
func MapGraphemes(text string) string {
	var b strings.Builder
	b.Grow(len(text) * 2)
	scan(text, func(t Token) {
		b.WriteString(t.Glyphs)
	})
	return b.String()
}
