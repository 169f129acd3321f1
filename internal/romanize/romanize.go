// Package romanize turns native Indic-script text into the romanized form the
// Ol Chiki engine consumes.
package romanize

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownScheme   = errors.New("unknown romanization scheme")
	ErrUnmappable      = errors.New("character cannot be romanized")
	ErrEmptyResponse   = errors.New("romanizer returned no text")
)

// Scheme selects the romanization convention.
type Scheme string

const (
	// ITRANS is ASCII-only; it is what the batch layer feeds the engine by default.
	ITRANS Scheme = "itrans"
	// ISO uses ISO-15919 / IAST diacritics (ā, ṭ, ś, ṃ, ...).
	ISO Scheme = "iso"
)

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", ITRANS:
		return ITRANS, nil
	case ISO, "iso15919", "iast":
		return ISO, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
}

func (s Scheme) label() string {
	if s == ISO {
		return "ISO-15919"
	}
	return "ITRANS"
}

// Romanizer converts text written in script to Latin letters.
type Romanizer interface {
	Romanize(ctx context.Context, text string, script Script, scheme Scheme) (string, error)
}
