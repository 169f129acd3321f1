package romanize

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Script is one of the Brahmic Unicode blocks. All of them share the ISCII
// layout, so a letter sits at the same offset from Base in every block.
type Script struct {
	Name string
	Base rune

	// letters that exist only in this script, keyed by block offset
	extra map[rune]letter
	// nukta compositions that exist only in this script
	extraNukta map[rune]rune
}

func (s Script) Contains(r rune) bool {
	return r >= s.Base && r < s.Base+0x80
}

func (s Script) letter(r rune) (letter, bool) {
	off := r - s.Base
	if l, ok := s.extra[off]; ok {
		return l, true
	}
	l, ok := letters[off]
	return l, ok
}

// withNukta returns the precomposed nukta letter for consonant r, if the
// script has one.
func (s Script) withNukta(r rune) (rune, bool) {
	off, ok := s.extraNukta[r-s.Base]
	if !ok {
		off, ok = nuktaForms[r-s.Base]
	}
	if !ok {
		return 0, false
	}
	if _, ok := s.letter(s.Base + off); !ok {
		return 0, false
	}
	return s.Base + off, true
}

var (
	Devanagari = Script{Name: "Devanagari", Base: 0x0900}
	Bengali    = Script{Name: "Bengali", Base: 0x0980, extra: map[rune]letter{
		0x4E: {classOther, "t", "t"}, // khanda ta
		// Assamese ra and wa
		0x70: {classConsonant, "r", "r"},
		0x71: {classConsonant, "v", "v"},
	}}
	Gurmukhi = Script{Name: "Gurmukhi", Base: 0x0A00, extra: map[rune]letter{
		0x70: {classSign, ".m", "ṃ"}, // tippi
		0x71: {classNukta, "", ""},   // addak
	}, extraNukta: map[rune]rune{
		0x32: 0x33, // lla
		0x38: 0x36, // sha
	}}
	Gujarati = Script{Name: "Gujarati", Base: 0x0A80}
	Oriya    = Script{Name: "Oriya", Base: 0x0B00, extra: map[rune]letter{
		0x71: {classConsonant, "v", "v"},
	}}
	Tamil     = Script{Name: "Tamil", Base: 0x0B80}
	Telugu    = Script{Name: "Telugu", Base: 0x0C00}
	Kannada   = Script{Name: "Kannada", Base: 0x0C80}
	Malayalam = Script{Name: "Malayalam", Base: 0x0D00}
)

// Language is a user-facing language name and the script its text is read in.
type Language struct {
	Name   string `json:"name"`
	Script Script `json:"-"`
}

var languages = []Language{
	{"Assamese", Bengali},
	{"Bengali", Bengali},
	{"Bodo", Devanagari},
	{"Dogri", Devanagari},
	{"Gujarati", Gujarati},
	{"Hindi", Devanagari},
	{"Kannada", Kannada},
	{"Kashmiri", Devanagari},
	{"Konkani", Devanagari},
	{"Maithili", Devanagari},
	{"Malayalam", Malayalam},
	{"Manipuri", Bengali},
	{"Marathi", Devanagari},
	{"Nepali", Devanagari},
	{"Odia", Oriya},
	{"Punjabi", Gurmukhi},
	{"Sanskrit", Devanagari},
	{"Sindhi", Devanagari},
	{"Tamil", Tamil},
	{"Telugu", Telugu},
}

var languagesByName = lo.KeyBy(languages, func(l Language) string {
	return strings.ToLower(l.Name)
})

// Languages returns every supported source language in alphabetical order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

func LookupLanguage(name string) (Language, error) {
	l, ok := languagesByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	return l, nil
}
