package transliteration

import (
	"slices"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Ol Chiki rendering of every romanized grapheme. Aspirated consonants are the
// base letter followed by OL CHIKI LETTER OH (U+1C77).
var graphemeMap = map[string]string{
	// vowels
	"a": "ᱚ", "ā": "ᱟ", "i": "ᱤ", "ī": "ᱤ", "u": "ᱩ", "ū": "ᱩ",
	"e": "ᱮ", "o": "ᱳ",

	// velar
	"k": "ᱠ", "kh": "ᱠᱷ", "g": "ᱜ", "gh": "ᱜᱷ", "ṅ": "ᱝ",
	// palatal
	"c": "ᱪ", "ch": "ᱪᱷ", "j": "ᱡ", "jh": "ᱡᱷ", "ñ": "ᱧ",
	// retroflex
	"ṭ": "ᱴ", "ṭh": "ᱴᱷ", "ḍ": "ᱰ", "ḍh": "ᱰᱷ", "ṇ": "ᱬ",
	// dental
	"t": "ᱛ", "th": "ᱛᱷ", "d": "ᱫ", "dh": "ᱫᱷ", "n": "ᱱ",
	// labial
	"p": "ᱯ", "ph": "ᱯᱷ", "b": "ᱵ", "bh": "ᱵᱷ", "m": "ᱢ",
	// approximants, sibilants, aspirate
	"y": "ᱭ", "r": "ᱨ", "l": "ᱞ", "v": "ᱣ", "w": "ᱣ",
	"ś": "ᱥ", "ṣ": "ᱥ", "s": "ᱥ", "h": "ᱦ",
	"ṛ": "ᱨ", "ṝ": "ᱨᱷ",

	// anusvara, visarga, nasalization, length
	"ṃ":      "ᱹ",
	"ḥ":      "ᱺ",
	"\u0303": "ᱸ", // combining tilde
	"\u02d0": "ᱹ", // modifier letter triangular colon
}

var vowelGraphemes = []string{"a", "ā", "i", "ī", "u", "ū", "e", "o"}

// Cluster is a conjunct consonant sequence and the glyphs that replace it.
type Cluster struct {
	Key    string
	Glyphs string
}

// Declaration order breaks ties between keys of equal length.
var clusterTable = []Cluster{
	{"kṣ", "ᱠᱥ"}, {"kṣh", "ᱠᱥᱷ"}, {"gy", "ᱜᱭ"}, {"tr", "ᱛᱨ"}, {"dr", "ᱫᱨ"},
	{"śr", "ᱥᱨ"}, {"ṣṭ", "ᱥᱴ"}, {"ṣṭh", "ᱥᱴᱷ"}, {"ṇṭ", "ᱬᱴ"},
	{"ṇḍ", "ᱬᱰ"}, {"ṇḍh", "ᱬᱰᱷ"}, {"nt", "ᱱᱛ"}, {"nd", "ᱱᱫ"},
	{"mp", "ᱢᱯ"}, {"mb", "ᱢᱵ"}, {"ṅk", "ᱝᱠ"}, {"ṅg", "ᱝᱜ"},
	{"ñc", "ᱧᱪ"}, {"ñj", "ᱧᱡ"}, {"sk", "ᱥᱠ"}, {"st", "ᱥᱛ"}, {"sp", "ᱥᱯ"},
	{"hm", "ᱦᱢ"}, {"hn", "ᱦᱱ"}, {"hl", "ᱦᱞ"}, {"hr", "ᱦᱨ"},
}

var (
	vowelSet = lo.SliceToMap(vowelGraphemes, func(v string) (string, struct{}) {
		return v, struct{}{}
	})

	consonantSet = lo.MapValues(lo.OmitByKeys(graphemeMap, vowelGraphemes), func(string, string) struct{} {
		return struct{}{}
	})

	// clusterOrder is clusterTable sorted longest key first.
	clusterOrder = sortClusters(clusterTable)
)

func sortClusters(table []Cluster) []Cluster {
	sorted := slices.Clone(table)
	slices.SortStableFunc(sorted, func(a, b Cluster) int {
		return utf8.RuneCountInString(b.Key) - utf8.RuneCountInString(a.Key)
	})
	return sorted
}

// Glyphs returns the Ol Chiki sequence for a single romanized grapheme.
func Glyphs(grapheme string) (string, bool) {
	g, ok := graphemeMap[grapheme]
	return g, ok
}

func IsVowel(grapheme string) bool {
	_, ok := vowelSet[grapheme]
	return ok
}

func IsConsonant(grapheme string) bool {
	_, ok := consonantSet[grapheme]
	return ok
}

// Clusters returns the conjunct table in resolution order.
func Clusters() []Cluster {
	return slices.Clone(clusterOrder)
}
