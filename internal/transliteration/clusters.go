package transliteration

import "strings"

// ResolveClusters replaces every conjunct cluster with its Ol Chiki glyphs,
// longest keys first so a shorter prefix never splits a longer match.
// Matching ignores word boundaries.
func ResolveClusters(text string) string {
	for _, c := range clusterOrder {
		text = strings.ReplaceAll(text, c.Key, c.Glyphs)
	}
	return text
}
