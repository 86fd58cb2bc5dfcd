package sentiment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analyzedAt = time.Date(2025, 8, 7, 21, 0, 0, 0, time.UTC)

func positiveClassifier() Classifier {
	return fixedClassifier(models.ClassifierOutput{
		Label:         models.LabelPositive,
		Probabilities: models.Probabilities{Positive: 0.9, Neutral: 0.05, Negative: 0.05},
	})
}

func sampleTranscript() *models.ProcessedTranscript {
	text := "We are pleased to report FDA approval for our lead program. Revenue growth continued."
	return &models.ProcessedTranscript{
		Metadata: models.TranscriptMetadata{
			Ticker:        "ACME",
			FiscalYear:    2025,
			FiscalQuarter: 2,
			CallDate:      time.Date(2025, 8, 7, 0, 0, 0, 0, time.UTC),
		},
		CleanedText: text,
		Sections: map[string]string{
			models.SectionFull:            text,
			models.SectionPreparedRemarks: text,
			models.SectionQA:              "",
			models.SectionCEO:             "",
			models.SectionCFO:             "",
		},
		WordCount:            13,
		ConfidenceIndicators: models.ConfidenceIndicators{PositiveCount: 1, TotalCount: 1, Score: 1},
		ProductMentions:      []models.ProductMention{{Name: "ABC-123", Mentions: 1}},
		GuidanceStatements:   []string{"We expect revenue to increase next year"},
		QuoteCandidates:      []models.QuoteCandidate{{Text: "We are confident in our launch", Context: "general", Topic: "commercial"}},
	}
}

func newTestAnalyzer(c Classifier, opts ...AnalyzerOption) *Analyzer {
	opts = append([]AnalyzerOption{WithClock(func() time.Time { return analyzedAt })}, opts...)
	return NewAnalyzer(NewScorer(c), config.DefaultThresholds(), opts...)
}

func TestAnalyze(t *testing.T) {
	got := newTestAnalyzer(positiveClassifier()).Analyze(context.Background(), sampleTranscript())

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "ACME", got.CompanyID)
	assert.Equal(t, "2025#Q2", got.Period)
	assert.Equal(t, analyzedAt, got.AnalyzedAt)

	assert.InDelta(t, 0.9, got.RawSentiment, 1e-9)
	assert.InDelta(t, 0.04, got.BiotechAdjustment, 1e-9)
	assert.InDelta(t, 0.94, got.OverallSentiment, 1e-9)
	assert.Equal(t, models.LabelPositive, got.SentimentLabel)
	assert.InDelta(t, 0.9, got.SentimentConfidence, 1e-9)
	assert.InDelta(t, 1.0, got.ManagementConfidence, 1e-9)
	assert.InDelta(t, 0.9, got.GuidanceSentiment, 1e-9)
	assert.Equal(t, "raised", got.GuidanceChanges.RevenueGuidance)

	require.Len(t, got.SectionSentiment, 1)
	assert.InDelta(t, 0.9, got.SectionSentiment[models.SectionPreparedRemarks].Score, 1e-9)

	require.Len(t, got.KeyQuotes, 1)
	assert.Equal(t, "Management", got.KeyQuotes[0].Speaker)
	assert.InDelta(t, 0.9, got.KeyQuotes[0].SentimentScore, 1e-9)

	assert.Equal(t, 13, got.WordCount)
	assert.Nil(t, got.Enhancement)
}

func TestAnalyzeDegradedClassifier(t *testing.T) {
	got := newTestAnalyzer(failingClassifier()).Analyze(context.Background(), sampleTranscript())

	assert.Zero(t, got.RawSentiment)
	assert.Zero(t, got.SentimentConfidence)
	assert.InDelta(t, 0.04, got.OverallSentiment, 1e-9)
	assert.Equal(t, models.LabelNeutral, got.SentimentLabel)
	assert.Zero(t, got.GuidanceSentiment)
}

func TestAnalyzeEnhancement(t *testing.T) {
	t.Run("escalated result is enhanced", func(t *testing.T) {
		enh := &fakeEnhancer{result: &models.Enhancement{Concerns: []string{"launch execution"}, Model: "gpt-test"}}
		got := newTestAnalyzer(positiveClassifier(), WithEnhancer(enh)).Analyze(context.Background(), sampleTranscript())

		require.NotNil(t, got.Enhancement)
		assert.Equal(t, []string{"launch execution"}, got.Enhancement.Concerns)
		assert.Equal(t, 1, enh.calls)
		assert.Equal(t, []string{"ABC-123"}, enh.summary.Products)
		assert.Equal(t, 1, enh.summary.GuidanceCount)
		assert.InDelta(t, 0.9, enh.summary.SectionSentiment[models.SectionPreparedRemarks], 1e-9)
	})

	t.Run("enhancer failure is ignored", func(t *testing.T) {
		enh := &fakeEnhancer{err: errors.New("timeout")}
		got := newTestAnalyzer(positiveClassifier(), WithEnhancer(enh)).Analyze(context.Background(), sampleTranscript())

		assert.Equal(t, 1, enh.calls)
		assert.Nil(t, got.Enhancement)
		assert.InDelta(t, 0.94, got.OverallSentiment, 1e-9)
	})

	t.Run("calm result is not escalated", func(t *testing.T) {
		pt := sampleTranscript()
		pt.ConfidenceIndicators = models.ConfidenceIndicators{PositiveCount: 1, NegativeCount: 1, TotalCount: 2}
		enh := &fakeEnhancer{result: &models.Enhancement{}}
		neutral := fixedClassifier(models.ClassifierOutput{
			Label:         models.LabelNeutral,
			Probabilities: models.Probabilities{Neutral: 1},
		})

		got := newTestAnalyzer(neutral, WithEnhancer(enh)).Analyze(context.Background(), pt)

		assert.Zero(t, enh.calls)
		assert.Nil(t, got.Enhancement)
	})
}

func TestAnalyzeProcessedText(t *testing.T) {
	raw := "Operator: Welcome. CEO: We are excited about our progress with ABC-123. " +
		"We expect revenue to grow next year. Question-and-answer session. Analyst: Any delays? CFO: None."
	pt := transcript.ProcessAt(raw, models.TranscriptMetadata{Ticker: "ACME"}, analyzedAt)

	got := newTestAnalyzer(positiveClassifier()).Analyze(context.Background(), pt)

	assert.Equal(t, "2025#Q3", got.Period)
	assert.NotContains(t, got.SectionSentiment, models.SectionFull)
	assert.NotEmpty(t, got.ProductMentions)
	assert.GreaterOrEqual(t, got.OverallSentiment, -1.0)
	assert.LessOrEqual(t, got.OverallSentiment, 1.0)
}
