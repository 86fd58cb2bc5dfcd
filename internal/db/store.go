package db

import (
	"context"
	"errors"

	"github.com/spacesedan/earningsflow/internal/models"
)

var ErrNotFound = errors.New("[Store] not found")

// Store persists sentiment results, trends and alerts. History returns a
// company's results newest first by fiscal period. SaveSentimentWithAlerts
// and SaveTrendWithAlerts are atomic: either all rows are stored or none are.
type Store interface {
	SaveSentiment(ctx context.Context, result *models.SentimentResult) error
	SaveSentimentWithAlerts(ctx context.Context, result *models.SentimentResult, alerts []models.Alert) error
	History(ctx context.Context, companyID string, limit int) ([]models.SentimentResult, error)
	HasTranscript(ctx context.Context, companyID string, fiscalYear, fiscalQuarter int) (bool, error)
	SaveTrendWithAlerts(ctx context.Context, trend *models.TrendResult, alerts []models.Alert) error
	SaveAlerts(ctx context.Context, alerts []models.Alert) error
	LatestTrend(ctx context.Context, companyID string) (*models.TrendResult, error)
	Alerts(ctx context.Context, companyID string) ([]models.Alert, error)
	Close() error
}

func validateSentiment(r *models.SentimentResult) error {
	if r == nil || r.CompanyID == "" {
		return errors.New("[Store] sentiment result needs a company id")
	}
	return nil
}

func validateSentimentWithAlerts(r *models.SentimentResult, alerts []models.Alert) error {
	if err := validateSentiment(r); err != nil {
		return err
	}
	return validateAlerts(alerts)
}

func validateTrend(trend *models.TrendResult, alerts []models.Alert) error {
	if trend == nil || trend.CompanyID == "" || trend.ID == "" {
		return errors.New("[Store] trend needs an id and a company id")
	}
	return validateAlerts(alerts)
}

func validateAlerts(alerts []models.Alert) error {
	for _, a := range alerts {
		if a.ID == "" || a.CompanyID == "" {
			return errors.New("[Store] alert needs an id and a company id")
		}
	}
	return nil
}
