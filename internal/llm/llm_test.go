package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkdownCodeBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "namaste", "namaste"},
		{"padded", "  namaste \n", "namaste"},
		{"fenced", "```\nnamaste\n```", "namaste"},
		{"fenced with language", "```text\nbhaarata\nvarSha\n```", "bhaarata\nvarSha"},
		{"unterminated fence", "```\nnamaste", "namaste"},
		{"bare fence", "```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkdownCodeBlocks(tt.input))
		})
	}
}
