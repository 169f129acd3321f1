package romanize

import (
	"context"
	"fmt"
	"strings"

	"github.com/jusunglee/olchiki/internal/llm"
)

// LLMRomanizer asks a language model to romanize text. It covers scripts and
// orthographic corner cases the rule tables do not.
type LLMRomanizer struct {
	llm llm.Client
}

func NewLLMRomanizer(client llm.Client) *LLMRomanizer {
	return &LLMRomanizer{llm: client}
}

const systemPromptTemplate = `You transliterate %s script text into %s romanization.

Rules:
- Transliterate only. Never translate or explain.
- Keep line breaks, spacing, punctuation, and digits exactly as they are.
- Use the %s conventions for vowel length, nasals, and aspiration.

Respond ONLY with the romanized text, no other text.`

func (l *LLMRomanizer) Romanize(ctx context.Context, text string, script Script, scheme Scheme) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	system := fmt.Sprintf(systemPromptTemplate, script.Name, scheme.label(), scheme.label())
	out, err := l.llm.Complete(ctx, system, text)
	if err != nil {
		return "", fmt.Errorf("romanizing %s text: %w", script.Name, err)
	}

	out = llm.StripMarkdownCodeBlocks(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
