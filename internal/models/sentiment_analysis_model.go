package models

import "time"

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// ClassifierOutput is what a sentiment classifier returns for one chunk of text.
type ClassifierOutput struct {
	Label         string        `json:"label"`
	Probabilities Probabilities `json:"probabilities"`
}

type Probabilities struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

// Top returns the probability assigned to the output's own label.
func (o ClassifierOutput) Top() float64 {
	switch o.Label {
	case LabelPositive:
		return o.Probabilities.Positive
	case LabelNegative:
		return o.Probabilities.Negative
	default:
		return o.Probabilities.Neutral
	}
}

type DocumentScore struct {
	Score      float64 `json:"score" dynamodbav:"score"`
	Label      string  `json:"label" dynamodbav:"label"`
	Confidence float64 `json:"confidence" dynamodbav:"confidence"`
}

type GuidanceChanges struct {
	RevenueGuidance  string   `json:"revenue_guidance,omitempty" dynamodbav:"revenue_guidance,omitempty"`
	TimelineUpdates  []string `json:"timeline_updates,omitempty" dynamodbav:"timeline_updates,omitempty"`
	EnrollmentTarget []string `json:"enrollment_targets,omitempty" dynamodbav:"enrollment_targets,omitempty"`
	MilestoneUpdates []string `json:"milestone_updates,omitempty" dynamodbav:"milestone_updates,omitempty"`
}

type StatusSentence struct {
	Text   string `json:"text" dynamodbav:"text"`
	Status string `json:"status,omitempty" dynamodbav:"status,omitempty"`
}

type BiotechInsights struct {
	ClinicalTrialStatus  []StatusSentence `json:"clinical_trial_status,omitempty" dynamodbav:"clinical_trial_status,omitempty"`
	RegulatoryUpdates    []string         `json:"regulatory_updates,omitempty" dynamodbav:"regulatory_updates,omitempty"`
	PipelineDevelopments []string         `json:"pipeline_developments,omitempty" dynamodbav:"pipeline_developments,omitempty"`
	FundingStatus        string           `json:"funding_status,omitempty" dynamodbav:"funding_status,omitempty"`
}

type SentimentResult struct {
	ID                   string                   `json:"id" dynamodbav:"id"`
	CompanyID            string                   `json:"company_id" dynamodbav:"company_id"`
	Period               string                   `json:"period" dynamodbav:"period"`
	FiscalYear           int                      `json:"fiscal_year" dynamodbav:"fiscal_year"`
	FiscalQuarter        int                      `json:"fiscal_quarter" dynamodbav:"fiscal_quarter"`
	CallDate             time.Time                `json:"call_date" dynamodbav:"call_date"`
	OverallSentiment     float64                  `json:"overall_sentiment" dynamodbav:"overall_sentiment"`
	RawSentiment         float64                  `json:"raw_sentiment" dynamodbav:"raw_sentiment"`
	BiotechAdjustment    float64                  `json:"biotech_adjustment" dynamodbav:"biotech_adjustment"`
	SentimentLabel       string                   `json:"sentiment_label" dynamodbav:"sentiment_label"`
	SentimentConfidence  float64                  `json:"sentiment_confidence" dynamodbav:"sentiment_confidence"`
	ManagementConfidence float64                  `json:"management_confidence" dynamodbav:"management_confidence"`
	GuidanceSentiment    float64                  `json:"guidance_sentiment" dynamodbav:"guidance_sentiment"`
	GuidanceChanges      GuidanceChanges          `json:"guidance_changes" dynamodbav:"guidance_changes"`
	SectionSentiment     map[string]DocumentScore `json:"section_sentiment,omitempty" dynamodbav:"section_sentiment,omitempty"`
	KeyTopics            map[string][]string      `json:"key_topics,omitempty" dynamodbav:"key_topics,omitempty"`
	BiotechInsights      BiotechInsights          `json:"biotech_insights" dynamodbav:"biotech_insights"`
	ConfidenceIndicators ConfidenceIndicators     `json:"confidence_indicators" dynamodbav:"confidence_indicators"`
	ProductMentions      []ProductMention         `json:"product_mentions,omitempty" dynamodbav:"product_mentions,omitempty"`
	GuidanceStatements   []string                 `json:"guidance_statements,omitempty" dynamodbav:"guidance_statements,omitempty"`
	KeyQuotes            []QuoteCandidate         `json:"key_quotes,omitempty" dynamodbav:"key_quotes,omitempty"`
	ExtractedGuidance    []GuidanceItem           `json:"extracted_guidance,omitempty" dynamodbav:"extracted_guidance,omitempty"`
	WordCount            int                      `json:"word_count" dynamodbav:"word_count"`
	Enhancement          *Enhancement             `json:"enhancement,omitempty" dynamodbav:"enhancement,omitempty"`
	AnalyzedAt           time.Time                `json:"analyzed_at" dynamodbav:"analyzed_at"`
}

// IsUnscored reports whether the result carries no signal at all, which is
// what a degraded classifier on a transcript without indicator matches produces.
// Such a result must not be read as genuinely neutral.
func (r SentimentResult) IsUnscored() bool {
	return r.RawSentiment == 0 &&
		r.OverallSentiment == 0 &&
		r.SentimentConfidence == 0 &&
		r.ConfidenceIndicators.TotalCount == 0
}
