package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEnhancerParsesJSON(t *testing.T) {
	chat := &fakeChat{reply: "```json\n{\"tone_shifts\": [\"more cautious on enrollment\"], \"concerns\": [\"cash runway\"]}\n```"}
	e := NewOpenAIEnhancer(chat)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	got, err := e.Enhance(context.Background(), "excerpt", models.AnalysisSummary{
		OverallSentiment: 0.62,
		SectionSentiment: map[string]float64{"qa_section": -0.2, "prepared_remarks": 0.7},
		Products:         []string{"ABC-123"},
		GuidanceCount:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"more cautious on enrollment"}, got.ToneShifts)
	assert.Equal(t, []string{"cash runway"}, got.Concerns)
	assert.Empty(t, got.Analysis)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, now, got.Timestamp)

	assert.Contains(t, chat.prompt, "Overall sentiment: 0.62")
	assert.Contains(t, chat.prompt, "prepared_remarks=0.70, qa_section=-0.20")
	assert.Contains(t, chat.prompt, "Key products mentioned: 1 (ABC-123)")
}

func TestOpenAIEnhancerKeepsUnparsedReply(t *testing.T) {
	chat := &fakeChat{reply: "  Management sounded more cautious than last quarter.  "}
	got, err := NewOpenAIEnhancer(chat).Enhance(context.Background(), "excerpt", models.AnalysisSummary{})
	require.NoError(t, err)

	assert.Equal(t, "Management sounded more cautious than last quarter.", got.Analysis)
	assert.Empty(t, got.Concerns)
	assert.Equal(t, "gpt-test", got.Model)
	assert.False(t, got.Timestamp.IsZero())
}

func TestOpenAIEnhancerTruncatesExcerpt(t *testing.T) {
	chat := &fakeChat{reply: "{}"}
	excerpt := strings.Repeat("a", MaxEnhancementExcerpt) + "ZZZ"

	_, err := NewOpenAIEnhancer(chat).Enhance(context.Background(), excerpt, models.AnalysisSummary{})
	require.NoError(t, err)
	assert.Contains(t, chat.prompt, strings.Repeat("a", MaxEnhancementExcerpt))
	assert.NotContains(t, chat.prompt, "ZZZ")
}

func TestOpenAIEnhancerError(t *testing.T) {
	chat := &fakeChat{err: errors.New("rate limited")}
	got, err := NewOpenAIEnhancer(chat).Enhance(context.Background(), "excerpt", models.AnalysisSummary{})

	assert.Nil(t, got)
	assert.ErrorContains(t, err, "rate limited")
}

func TestCleanModelResponse(t *testing.T) {
	assert.Equal(t, `{"a": "b"}`, cleanModelResponse("```json\n{“a”: “b”}\n```"))
	assert.Equal(t, `{}`, cleanModelResponse("  {}  "))
}
