// Package alerts turns sentiment and trend signals into typed alert records.
package alerts

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
)

const maxAlertQuotes = 2

// Levels is a quarter's sentiment and management confidence.
type Levels struct {
	Sentiment  float64
	Confidence float64
}

func LevelsOf(r models.SentimentResult) Levels {
	return Levels{Sentiment: r.OverallSentiment, Confidence: r.ManagementConfidence}
}

type Engine struct {
	thresholds config.AlertThresholds
	now        func() time.Time
	newID      func() string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(thresholds config.AlertThresholds, opts ...Option) *Engine {
	e := &Engine{
		thresholds: thresholds,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ChangeAlerts reports quarter-over-quarter moves in sentiment and
// confidence larger than the significance threshold.
func (e *Engine) ChangeAlerts(companyID string, sentimentChange, confidenceChange float64, previous, current Levels) []models.Alert {
	var alerts []models.Alert

	if math.Abs(sentimentChange) > e.thresholds.Significance {
		direction := "improved"
		if sentimentChange < 0 {
			direction = "declined"
		}
		alerts = append(alerts, e.newAlert(companyID, models.AlertSentimentChange,
			e.severity(sentimentChange),
			fmt.Sprintf("Sentiment %s by %.2f points", direction, math.Abs(sentimentChange)),
			map[string]any{
				"change":    sentimentChange,
				"previous":  previous.Sentiment,
				"current":   current.Sentiment,
				"direction": direction,
			}))
	}

	if math.Abs(confidenceChange) > e.thresholds.Significance {
		direction := "increased"
		if confidenceChange < 0 {
			direction = "decreased"
		}
		alerts = append(alerts, e.newAlert(companyID, models.AlertConfidenceChange,
			e.severity(confidenceChange),
			fmt.Sprintf("Management confidence %s by %.2f points", direction, math.Abs(confidenceChange)),
			map[string]any{
				"change":    confidenceChange,
				"previous":  previous.Confidence,
				"current":   current.Confidence,
				"direction": direction,
			}))
	}

	return alerts
}

// SignificantSentiment flags a single transcript whose overall sentiment is
// strong in either direction, independent of any history.
func (e *Engine) SignificantSentiment(companyID string, r *models.SentimentResult) *models.Alert {
	if r == nil || math.Abs(r.OverallSentiment) <= e.thresholds.SignificantSentiment {
		return nil
	}

	polarity := models.PolarityPositive
	if r.OverallSentiment < 0 {
		polarity = models.PolarityNegative
	}

	quotes := make([]string, 0, maxAlertQuotes)
	for _, q := range r.KeyQuotes {
		if len(quotes) == maxAlertQuotes {
			break
		}
		quotes = append(quotes, q.Text)
	}

	alert := e.newAlert(companyID, models.AlertSignificantSentiment,
		e.severity(r.OverallSentiment),
		fmt.Sprintf("Significant %s sentiment detected (score: %.2f)", polarity, r.OverallSentiment),
		map[string]any{
			"sentiment_score":  r.OverallSentiment,
			"confidence_score": r.ManagementConfidence,
			"key_quotes":       quotes,
		})
	return &alert
}

// GuidanceUpdate notes that a transcript carried structured guidance.
func (e *Engine) GuidanceUpdate(companyID string, items []models.GuidanceItem) *models.Alert {
	if len(items) == 0 {
		return nil
	}

	metrics := make([]string, 0, len(items))
	for _, item := range items {
		metrics = append(metrics, item.Metric)
	}

	alert := e.newAlert(companyID, models.AlertGuidanceUpdate, models.SeverityMedium,
		fmt.Sprintf("New guidance provided: %d items", len(items)),
		map[string]any{
			"count":   len(items),
			"metrics": metrics,
		})
	return &alert
}

// TranscriptAlerts collects the per-transcript alerts for a freshly scored result.
func (e *Engine) TranscriptAlerts(r *models.SentimentResult) []models.Alert {
	var alerts []models.Alert
	if a := e.SignificantSentiment(r.CompanyID, r); a != nil {
		alerts = append(alerts, *a)
	}
	if a := e.GuidanceUpdate(r.CompanyID, r.ExtractedGuidance); a != nil {
		alerts = append(alerts, *a)
	}
	return alerts
}

func (e *Engine) severity(change float64) string {
	if math.Abs(change) > e.thresholds.HighSeverity {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

func (e *Engine) newAlert(companyID, alertType, severity, message string, data map[string]any) models.Alert {
	return models.Alert{
		ID:        e.newID(),
		CompanyID: companyID,
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		Data:      data,
		CreatedAt: e.now().UTC(),
	}
}
