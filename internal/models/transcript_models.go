package models

import "time"

const (
	SectionFull            = "full"
	SectionPreparedRemarks = "prepared_remarks"
	SectionQA              = "qa_section"
	SectionCEO             = "ceo_remarks"
	SectionCFO             = "cfo_remarks"
)

const (
	PolarityPositive = "positive"
	PolarityNegative = "negative"
	PolarityNeutral  = "neutral"
)

type ProcessedTranscript struct {
	Metadata             TranscriptMetadata   `json:"metadata"`
	CleanedText          string               `json:"cleaned_text"`
	Sections             map[string]string    `json:"sections"`
	WordCount            int                  `json:"word_count"`
	ConfidenceIndicators ConfidenceIndicators `json:"confidence_indicators"`
	ProductMentions      []ProductMention     `json:"product_mentions"`
	GuidanceStatements   []string             `json:"guidance_statements"`
	KeyMetrics           KeyMetrics           `json:"key_metrics"`
	QuoteCandidates      []QuoteCandidate     `json:"quote_candidates"`
	ExtractedGuidance    []GuidanceItem       `json:"extracted_guidance"`
	ProcessedAt          time.Time            `json:"processed_at"`
}

type PhraseMatch struct {
	Phrase   string `json:"phrase" dynamodbav:"phrase"`
	Context  string `json:"context" dynamodbav:"context"`
	Polarity string `json:"polarity" dynamodbav:"polarity"`
}

type ConfidenceIndicators struct {
	PositiveCount   int           `json:"positive_count" dynamodbav:"positive_count"`
	NegativeCount   int           `json:"negative_count" dynamodbav:"negative_count"`
	NeutralCount    int           `json:"neutral_count" dynamodbav:"neutral_count"`
	TotalCount      int           `json:"total_count" dynamodbav:"total_count"`
	Score           float64       `json:"score" dynamodbav:"score"`
	PositivePhrases []PhraseMatch `json:"positive_phrases,omitempty" dynamodbav:"positive_phrases,omitempty"`
	NegativePhrases []PhraseMatch `json:"negative_phrases,omitempty" dynamodbav:"negative_phrases,omitempty"`
}

type ProductMention struct {
	Name     string   `json:"name" dynamodbav:"name"`
	Mentions int      `json:"mentions" dynamodbav:"mentions"`
	Contexts []string `json:"contexts,omitempty" dynamodbav:"contexts,omitempty"`
}

type KeyMetrics struct {
	RevenueMentions    []string `json:"revenue_mentions,omitempty" dynamodbav:"revenue_mentions,omitempty"`
	ClinicalMilestones []string `json:"clinical_milestones,omitempty" dynamodbav:"clinical_milestones,omitempty"`
	PercentageChanges  []string `json:"percentage_changes,omitempty" dynamodbav:"percentage_changes,omitempty"`
	DollarAmounts      []string `json:"dollar_amounts,omitempty" dynamodbav:"dollar_amounts,omitempty"`
}

// QuoteCandidate is a declarative management statement. Speaker and
// SentimentScore are set once the quote has been scored.
type QuoteCandidate struct {
	Text           string  `json:"text" dynamodbav:"text"`
	Context        string  `json:"context" dynamodbav:"context"`
	Topic          string  `json:"topic" dynamodbav:"topic"`
	Speaker        string  `json:"speaker,omitempty" dynamodbav:"speaker,omitempty"`
	SentimentScore float64 `json:"sentiment_score" dynamodbav:"sentiment_score"`
}

type GuidanceItem struct {
	Metric     string `json:"metric" dynamodbav:"metric"`
	Value      string `json:"value" dynamodbav:"value"`
	Timeframe  string `json:"timeframe" dynamodbav:"timeframe"`
	Confidence string `json:"confidence" dynamodbav:"confidence"`
	Statement  string `json:"statement" dynamodbav:"statement"`
}
