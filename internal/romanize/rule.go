package romanize

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RuleRomanizer romanizes Brahmic text with fixed per-letter tables. It never
// leaves the process and is safe for concurrent use.
type RuleRomanizer struct{}

func NewRuleRomanizer() *RuleRomanizer {
	return &RuleRomanizer{}
}

func (*RuleRomanizer) Romanize(ctx context.Context, text string, script Script, scheme Scheme) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(text))

	// A consonant is written bare; its inherent "a" is added once we know
	// no vowel sign or virama follows.
	pending := false
	flush := func() {
		if pending {
			b.WriteByte('a')
			pending = false
		}
	}

	rs := []rune(norm.NFC.String(text))
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if d, ok := dandas[r]; ok {
			flush()
			b.WriteString(d.text(scheme))
			continue
		}
		if !script.Contains(r) {
			flush()
			b.WriteRune(r)
			continue
		}

		// NFC splits nukta letters such as ज़ back into base + nukta.
		if i+1 < len(rs) && rs[i+1] == script.Base+offNukta {
			if folded, ok := script.withNukta(r); ok {
				r = folded
				i++
			}
		}

		l, ok := script.letter(r)
		if !ok {
			return "", fmt.Errorf("%w: %U in %s text", ErrUnmappable, r, script.Name)
		}

		switch l.class {
		case classConsonant:
			flush()
			b.WriteString(l.text(scheme))
			pending = true
		case classVowelSign:
			pending = false
			b.WriteString(l.text(scheme))
		case classVirama:
			pending = false
		case classNukta:
		default:
			flush()
			b.WriteString(l.text(scheme))
		}
	}
	flush()

	return b.String(), nil
}
