package transliteration

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type rewrite struct {
	name string
	r    *strings.Replacer
}

// Applied in order; each one sees the output of the previous.
var rewrites = []rewrite{
	{"long a", strings.NewReplacer("aa", "ā")},
	{"long i", strings.NewReplacer("ii", "ī")},
	{"long u", strings.NewReplacer("uu", "ū")},
	{"palatal nasal", strings.NewReplacer("~n", "ñ")},
	// Only the n is rewritten; the k or g that follows stays.
	{"velar nasal", strings.NewReplacer("nk", "ṅk", "ng", "ṅg")},
	{"anusvara", strings.NewReplacer(".m", "ṃ")},
}

// Normalize lowercases and NFC-composes text, then rewrites long vowels,
// nasals, and anusvara into single graphemes.
func Normalize(text string) string {
	// cases.Caser keeps state, so one is built per call.
	text = norm.NFC.String(cases.Lower(language.Und).String(text))
	for _, rw := range rewrites {
		text = rw.r.Replace(text)
	}
	return text
}
