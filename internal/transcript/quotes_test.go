package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractQuoteCandidates(t *testing.T) {
	text := "We expect the pivotal trial to read out in the second half. Our guidance remains unchanged for the year. We expect it."

	quotes := ExtractQuoteCandidates(text)

	require.Len(t, quotes, 2)
	assert.Equal(t, "We expect the pivotal trial to read out in the second half.", quotes[0].Text)
	assert.Equal(t, "clinical", quotes[0].Context)
	assert.Equal(t, "clinical_development", quotes[0].Topic)
	assert.Equal(t, "Our guidance remains unchanged for the year.", quotes[1].Text)
	assert.Equal(t, "general", quotes[1].Context)
	assert.Equal(t, "other", quotes[1].Topic)
	assert.Zero(t, quotes[0].SentimentScore)
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		quote   string
		context string
		topic   string
	}{
		{"revenue from the trial sites", "financial", "financial_performance"},
		{"the FDA submission is on file", "regulatory", "regulatory_affairs"},
		{"our research pipeline keeps growing", "pipeline", "pipeline_progress"},
		{"market expansion continues", "general", "business_strategy"},
	}

	for _, tt := range tests {
		t.Run(tt.quote, func(t *testing.T) {
			assert.Equal(t, tt.context, classify(tt.quote, quoteContexts, "general"))
			assert.Equal(t, tt.topic, classify(tt.quote, quoteTopics, "other"))
		})
	}
}
