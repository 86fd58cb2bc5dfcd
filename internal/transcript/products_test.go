package transcript

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProductMentions(t *testing.T) {
	text := "We advanced ABC-123 into the clinic. ABC-123 showed strong data. Our XYZ-45 program is on track."

	mentions := ExtractProductMentions(text)

	require.Len(t, mentions, 2)
	assert.Equal(t, "ABC-123", mentions[0].Name)
	assert.Equal(t, 2, mentions[0].Mentions)
	assert.Len(t, mentions[0].Contexts, 2)
	assert.Equal(t, "XYZ-45", mentions[1].Name)
	assert.Equal(t, 1, mentions[1].Mentions)
}

func TestExtractProductMentionsFilters(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"stop word", "We remain focused on our this therapy going forward."},
		{"fiscal token", "Results for FY2024 were in line."},
		{"too short", "our AB product"},
		{"nothing", "The weather was mild."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ExtractProductMentions(tt.text))
		})
	}
}

func TestExtractProductMentionsTopTen(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "Update on ABC-%d. ", 101+i)
	}

	assert.Len(t, ExtractProductMentions(b.String()), 10)
}
