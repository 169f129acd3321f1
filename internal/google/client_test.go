package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupportsSystemInstruction(t *testing.T) {
	assert.True(t, ModelGemini2Flash.supportsSystemInstruction())
	assert.True(t, ModelGemini2_5Pro.supportsSystemInstruction())
	assert.False(t, ModelGemma3_27B.supportsSystemInstruction())
}
