package models

import "time"

// Enhancement is the optional qualitative annotation attached to a SentimentResult.
type Enhancement struct {
	ToneShifts           []string  `json:"tone_shifts,omitempty" dynamodbav:"tone_shifts,omitempty"`
	ConfidenceIndicators []string  `json:"confidence_indicators,omitempty" dynamodbav:"confidence_indicators,omitempty"`
	ProductUpdates       []string  `json:"product_updates,omitempty" dynamodbav:"product_updates,omitempty"`
	Concerns             []string  `json:"concerns,omitempty" dynamodbav:"concerns,omitempty"`
	Analysis             string    `json:"analysis,omitempty" dynamodbav:"analysis,omitempty"`
	Model                string    `json:"model" dynamodbav:"model"`
	Timestamp            time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// AnalysisSummary is the compact view of a result handed to the enhancement service.
type AnalysisSummary struct {
	OverallSentiment     float64            `json:"overall_sentiment"`
	ManagementConfidence float64            `json:"management_confidence"`
	SectionSentiment     map[string]float64 `json:"section_sentiment"`
	Products             []string           `json:"products"`
	GuidanceCount        int                `json:"guidance_count"`
}
