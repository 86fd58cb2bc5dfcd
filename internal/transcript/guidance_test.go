package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractGuidance(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "numeric outlook widened to its sentence",
			text: "Revenue was strong. We expect full-year revenue of $120 million in 2025. Thank you.",
			want: []string{"We expect full-year revenue of $120 million in 2025"},
		},
		{
			name: "duplicates collapse",
			text: "We are reaffirming our guidance. We are reaffirming our guidance.",
			want: []string{"We are reaffirming our guidance"},
		},
		{
			name: "raised guidance without trailing period",
			text: "Given the launch we are raising our 2025 guidance",
			want: []string{"Given the launch we are raising our 2025 guidance"},
		},
		{
			name: "no guidance",
			text: "The weather was mild.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractGuidance(tt.text))
		})
	}
}

func TestExtractGuidanceDropsLongSentences(t *testing.T) {
	text := "We are reaffirming our guidance " + strings.Repeat("and more words ", 40) + "today."

	assert.Empty(t, ExtractGuidance(text))
}

func TestExtractGuidanceItems(t *testing.T) {
	text := "We expect 2025 revenue of $150 million."

	items := ExtractGuidanceItems(text)

	require.NotEmpty(t, items)
	assert.Equal(t, "revenue", items[0].Metric)
	assert.Equal(t, "$150 million", items[0].Value)
	assert.Equal(t, "2025", items[0].Timeframe)
	assert.Equal(t, "medium", items[0].Confidence)
}
