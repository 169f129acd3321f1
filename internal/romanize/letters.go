package romanize

type class int

const (
	classSign      class = iota + 1 // candrabindu, anusvara, visarga
	classVowel                      // independent vowel
	classConsonant                  // carries an inherent "a"
	classVowelSign                  // dependent vowel, replaces the inherent "a"
	classVirama                     // suppresses the inherent "a"
	classNukta                      // modifies the preceding consonant, dropped
	classOther
)

type letter struct {
	class  class
	itrans string
	iso    string
}

func (l letter) text(s Scheme) string {
	if s == ISO {
		return l.iso
	}
	return l.itrans
}

// letters maps a block offset to its romanization.
var letters = map[rune]letter{
	0x01: {classSign, ".N", "m̐"},
	0x02: {classSign, ".m", "ṃ"},
	0x03: {classSign, "H", "ḥ"},

	0x05: {classVowel, "a", "a"},
	0x06: {classVowel, "aa", "ā"},
	0x07: {classVowel, "i", "i"},
	0x08: {classVowel, "ii", "ī"},
	0x09: {classVowel, "u", "u"},
	0x0A: {classVowel, "uu", "ū"},
	0x0B: {classVowel, "RRi", "ṛ"},
	0x0C: {classVowel, "LLi", "ḷ"},
	0x0D: {classVowel, "e", "e"},
	0x0E: {classVowel, "e", "e"},
	0x0F: {classVowel, "e", "e"},
	0x10: {classVowel, "ai", "ai"},
	0x11: {classVowel, "o", "o"},
	0x12: {classVowel, "o", "o"},
	0x13: {classVowel, "o", "o"},
	0x14: {classVowel, "au", "au"},

	0x15: {classConsonant, "k", "k"},
	0x16: {classConsonant, "kh", "kh"},
	0x17: {classConsonant, "g", "g"},
	0x18: {classConsonant, "gh", "gh"},
	0x19: {classConsonant, "~N", "ṅ"},
	0x1A: {classConsonant, "ch", "c"},
	0x1B: {classConsonant, "Ch", "ch"},
	0x1C: {classConsonant, "j", "j"},
	0x1D: {classConsonant, "jh", "jh"},
	0x1E: {classConsonant, "~n", "ñ"},
	0x1F: {classConsonant, "T", "ṭ"},
	0x20: {classConsonant, "Th", "ṭh"},
	0x21: {classConsonant, "D", "ḍ"},
	0x22: {classConsonant, "Dh", "ḍh"},
	0x23: {classConsonant, "N", "ṇ"},
	0x24: {classConsonant, "t", "t"},
	0x25: {classConsonant, "th", "th"},
	0x26: {classConsonant, "d", "d"},
	0x27: {classConsonant, "dh", "dh"},
	0x28: {classConsonant, "n", "n"},
	0x29: {classConsonant, "n", "n"},
	0x2A: {classConsonant, "p", "p"},
	0x2B: {classConsonant, "ph", "ph"},
	0x2C: {classConsonant, "b", "b"},
	0x2D: {classConsonant, "bh", "bh"},
	0x2E: {classConsonant, "m", "m"},
	0x2F: {classConsonant, "y", "y"},
	0x30: {classConsonant, "r", "r"},
	0x31: {classConsonant, "r", "r"},
	0x32: {classConsonant, "l", "l"},
	0x33: {classConsonant, "L", "ḷ"},
	0x34: {classConsonant, "zh", "ḻ"},
	0x35: {classConsonant, "v", "v"},
	0x36: {classConsonant, "sh", "ś"},
	0x37: {classConsonant, "Sh", "ṣ"},
	0x38: {classConsonant, "s", "s"},
	0x39: {classConsonant, "h", "h"},

	0x3C: {classNukta, "", ""},
	0x3D: {classOther, ".a", "'"},

	0x3E: {classVowelSign, "aa", "ā"},
	0x3F: {classVowelSign, "i", "i"},
	0x40: {classVowelSign, "ii", "ī"},
	0x41: {classVowelSign, "u", "u"},
	0x42: {classVowelSign, "uu", "ū"},
	0x43: {classVowelSign, "RRi", "ṛ"},
	0x44: {classVowelSign, "RRI", "ṝ"},
	0x45: {classVowelSign, "e", "e"},
	0x46: {classVowelSign, "e", "e"},
	0x47: {classVowelSign, "e", "e"},
	0x48: {classVowelSign, "ai", "ai"},
	0x49: {classVowelSign, "o", "o"},
	0x4A: {classVowelSign, "o", "o"},
	0x4B: {classVowelSign, "o", "o"},
	0x4C: {classVowelSign, "au", "au"},
	0x4D: {classVirama, "", ""},

	0x50: {classOther, "OM", "oṃ"},

	// length marks
	0x55: {classNukta, "", ""},
	0x56: {classNukta, "", ""},
	0x57: {classNukta, "", ""},

	// consonants with nukta
	0x58: {classConsonant, "q", "q"},
	0x59: {classConsonant, "K", "kh"},
	0x5A: {classConsonant, "G", "g"},
	0x5B: {classConsonant, "z", "z"},
	0x5C: {classConsonant, ".D", "ṛ"},
	0x5D: {classConsonant, ".Dh", "ṛh"},
	0x5E: {classConsonant, "f", "f"},
	0x5F: {classConsonant, "Y", "y"},

	0x66: {classOther, "0", "0"},
	0x67: {classOther, "1", "1"},
	0x68: {classOther, "2", "2"},
	0x69: {classOther, "3", "3"},
	0x6A: {classOther, "4", "4"},
	0x6B: {classOther, "5", "5"},
	0x6C: {classOther, "6", "6"},
	0x6D: {classOther, "7", "7"},
	0x6E: {classOther, "8", "8"},
	0x6F: {classOther, "9", "9"},
}

const offNukta = 0x3C

// nuktaForms maps a base consonant offset to the offset of the same
// consonant written with a nukta.
var nuktaForms = map[rune]rune{
	0x15: 0x58, // qa
	0x16: 0x59, // khha
	0x17: 0x5A, // ghha
	0x1C: 0x5B, // za
	0x21: 0x5C, // dddha
	0x22: 0x5D, // rha
	0x28: 0x29, // nnna
	0x2B: 0x5E, // fa
	0x2F: 0x5F, // yya
	0x30: 0x31, // rra
	0x33: 0x34, // llla
}

// The dandas live in the Devanagari block but every script uses them.
var dandas = map[rune]letter{
	'।': {classOther, "|", "."},
	'॥': {classOther, "||", ".."},
}
