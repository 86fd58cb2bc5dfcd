package models

import "time"

const (
	AlertSentimentChange      = "sentiment_change"
	AlertConfidenceChange     = "confidence_change"
	AlertSignificantSentiment = "significant_sentiment_change"
	AlertGuidanceUpdate       = "guidance_update"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type Alert struct {
	ID        string         `json:"id" dynamodbav:"id"`
	CompanyID string         `json:"company_id" dynamodbav:"company_id"`
	Type      string         `json:"type" dynamodbav:"type"`
	Severity  string         `json:"severity" dynamodbav:"severity"`
	Message   string         `json:"message" dynamodbav:"message"`
	Data      map[string]any `json:"data,omitempty" dynamodbav:"data,omitempty"`
	Resolved  bool           `json:"resolved" dynamodbav:"resolved"`
	CreatedAt time.Time      `json:"created_at" dynamodbav:"created_at"`
}
