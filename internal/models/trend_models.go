package models

import "time"

const (
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendDeclining        = "declining"
	TrendInsufficientData = "insufficient_data"
)

const (
	ChangePositiveLanguage = "positive_language_increase"
	ChangeNegativeLanguage = "negative_language_increase"
	ChangeNewProducts      = "new_product_mentions"
	ChangeGuidance         = "guidance_sentiment_change"
)

const (
	MagnitudeMedium = "medium"
	MagnitudeHigh   = "high"
)

type SeriesTrend struct {
	Direction         string  `json:"direction" dynamodbav:"direction"`
	Slope             float64 `json:"slope" dynamodbav:"slope"`
	Change            float64 `json:"change" dynamodbav:"change"`
	Latest            float64 `json:"latest" dynamodbav:"latest"`
	HistoricalAverage float64 `json:"historical_average" dynamodbav:"historical_average"`
	StdDev            float64 `json:"std_dev" dynamodbav:"std_dev"`
	Strength          float64 `json:"strength" dynamodbav:"strength"`
}

type NotableChange struct {
	Type        string         `json:"type" dynamodbav:"type"`
	Description string         `json:"description" dynamodbav:"description"`
	Magnitude   string         `json:"magnitude" dynamodbav:"magnitude"`
	Details     map[string]any `json:"details,omitempty" dynamodbav:"details,omitempty"`
}

type TrendResult struct {
	ID               string          `json:"id" dynamodbav:"id"`
	CompanyID        string          `json:"company_id" dynamodbav:"company_id"`
	AnalysisDate     time.Time       `json:"analysis_date" dynamodbav:"analysis_date"`
	Category         string          `json:"category" dynamodbav:"category"`
	SentimentChange  float64         `json:"sentiment_change" dynamodbav:"sentiment_change"`
	ConfidenceChange float64         `json:"confidence_change" dynamodbav:"confidence_change"`
	ComparisonWindow int             `json:"comparison_window" dynamodbav:"comparison_window"`
	QuartersAnalyzed int             `json:"quarters_analyzed" dynamodbav:"quarters_analyzed"`
	SentimentTrend   SeriesTrend     `json:"sentiment_trend" dynamodbav:"sentiment_trend"`
	ConfidenceTrend  SeriesTrend     `json:"confidence_trend" dynamodbav:"confidence_trend"`
	NotableChanges   []NotableChange `json:"notable_changes,omitempty" dynamodbav:"notable_changes,omitempty"`
	SupportingQuotes []string        `json:"supporting_quotes,omitempty" dynamodbav:"supporting_quotes,omitempty"`
}
