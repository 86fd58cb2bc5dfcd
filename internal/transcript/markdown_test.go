package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToText(t *testing.T) {
	in := "## Prepared Remarks\n\n**CEO:** We delivered [strong](https://example.com/ir) results & more."

	out := MarkdownToText(in)

	assert.Contains(t, out, "Prepared Remarks")
	assert.Contains(t, out, "CEO: We delivered strong results & more.")
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "https")
}

func TestRemoveLinks(t *testing.T) {
	assert.Equal(t, "see the deck at ", RemoveLinks("see the [deck](https://ir.example.com) at www.example.com"))
}
