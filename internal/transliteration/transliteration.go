// Package transliteration converts ITRANS / ISO-15919 romanized Indic text
// into the Ol Chiki script.
//
// Conversion runs three stages over package-level tables that are never
// mutated, so every function here is safe for concurrent use:
//
//	Normalize -> ResolveClusters -> MapGraphemes
//
// No input is rejected. Characters the tables do not know are copied through.
package transliteration

// Transliterate converts romanized text to Ol Chiki.
func Transliterate(romanized string) string {
	return MapGraphemes(ResolveClusters(Normalize(romanized)))
}

// Trace holds the output of every stage for one conversion.
type Trace struct {
	Input      string  `json:"input"`
	Normalized string  `json:"normalized"`
	Resolved   string  `json:"resolved"`
	Tokens     []Token `json:"tokens"`
	Output     string  `json:"output"`
}

// Explain runs the same pipeline as Transliterate and records each stage.
func Explain(romanized string) Trace {
	t := Trace{Input: romanized}
	t.Normalized = Normalize(romanized)
	t.Resolved = ResolveClusters(t.Normalized)
	t.Tokens = Scan(t.Resolved)
	t.Output = MapGraphemes(t.Resolved)
	return t
}
