// Package trend compares a company's latest quarter against its recent
// history and classifies the direction of travel.
package trend

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/alerts"
	"github.com/spacesedan/earningsflow/internal/models"
)

const (
	maxSupportingQuotes  = 3
	maxDescribedProducts = 3
)

type Analyzer struct {
	thresholds config.TrendThresholds
	alerts     *alerts.Engine
	now        func() time.Time
}

type Option func(*Analyzer)

func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(thresholds config.TrendThresholds, engine *alerts.Engine, opts ...Option) *Analyzer {
	a := &Analyzer{
		thresholds: thresholds,
		alerts:     engine,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Window() int {
	return a.thresholds.ComparisonWindow
}

// Analyze builds the trend for one company from its scored quarters. History
// is re-sorted newest first and trimmed to the comparison window plus the
// latest quarter. Fewer than two quarters yield insufficient_data and no alerts.
func (a *Analyzer) Analyze(companyID string, history []models.SentimentResult) (*models.TrendResult, []models.Alert) {
	history = newestFirst(history)
	if limit := a.thresholds.ComparisonWindow + 1; len(history) > limit {
		history = history[:limit]
	}

	result := &models.TrendResult{
		ID:               uuid.NewString(),
		CompanyID:        companyID,
		AnalysisDate:     a.now().UTC(),
		ComparisonWindow: a.thresholds.ComparisonWindow,
		QuartersAnalyzed: len(history),
	}

	if len(history) < 2 {
		result.Category = models.TrendInsufficientData
		result.SentimentTrend = models.SeriesTrend{Direction: models.TrendInsufficientData}
		result.ConfidenceTrend = models.SeriesTrend{Direction: models.TrendInsufficientData}
		slog.Info("[TrendAnalyzer] Insufficient data for trend analysis",
			slog.String("company_id", companyID),
			slog.Int("quarters", len(history)))
		return result, nil
	}

	latest, previous := history[0], history[1]

	sentiments := make([]float64, len(history))
	confidences := make([]float64, len(history))
	for i, r := range history {
		sentiments[i] = r.OverallSentiment
		confidences[i] = r.ManagementConfidence
	}

	result.SentimentTrend = Series(sentiments, a.thresholds)
	result.ConfidenceTrend = Series(confidences, a.thresholds)
	result.SentimentChange = result.SentimentTrend.Change
	result.ConfidenceChange = result.ConfidenceTrend.Change
	result.Category = Categorize(result.SentimentTrend, result.ConfidenceTrend,
		latest.OverallSentiment, latest.ManagementConfidence, a.thresholds)
	result.NotableChanges = a.NotableChanges(latest, history[1:])
	result.SupportingQuotes = supportingQuotes(latest)

	var raised []models.Alert
	if a.alerts != nil {
		raised = a.alerts.ChangeAlerts(companyID, result.SentimentChange, result.ConfidenceChange,
			alerts.LevelsOf(previous), alerts.LevelsOf(latest))
	}

	slog.Info("[TrendAnalyzer] Trend analyzed",
		slog.String("company_id", companyID),
		slog.String("category", result.Category),
		slog.Int("quarters", len(history)),
		slog.Float64("sentiment_change", result.SentimentChange),
		slog.Float64("confidence_change", result.ConfidenceChange),
		slog.Int("alerts", len(raised)))

	return result, raised
}

// NotableChanges compares the latest quarter's language, products and
// guidance tone against the historical quarters.
func (a *Analyzer) NotableChanges(latest models.SentimentResult, historical []models.SentimentResult) []models.NotableChange {
	var changes []models.NotableChange

	positives := make([]float64, len(historical))
	negatives := make([]float64, len(historical))
	guidance := make([]float64, len(historical))
	for i, h := range historical {
		positives[i] = float64(h.ConfidenceIndicators.PositiveCount)
		negatives[i] = float64(h.ConfidenceIndicators.NegativeCount)
		guidance[i] = h.GuidanceSentiment
	}

	if c, ok := a.languageIncrease(models.ChangePositiveLanguage, "Significant increase in positive language",
		latest.ConfidenceIndicators.PositiveCount, mean(positives)); ok {
		changes = append(changes, c)
	}
	if c, ok := a.languageIncrease(models.ChangeNegativeLanguage, "Notable increase in cautionary language",
		latest.ConfidenceIndicators.NegativeCount, mean(negatives)); ok {
		changes = append(changes, c)
	}

	if newProducts := newProducts(latest, historical); len(newProducts) > 0 {
		changes = append(changes, models.NotableChange{
			Type:        models.ChangeNewProducts,
			Description: "New product mentions: " + strings.Join(firstN(newProducts, maxDescribedProducts), ", "),
			Magnitude:   models.MagnitudeMedium,
			Details: map[string]any{
				"new_products": newProducts,
				"count":        len(newProducts),
			},
		})
	}

	histGuidance := mean(guidance)
	if change := latest.GuidanceSentiment - histGuidance; math.Abs(change) > a.thresholds.GuidanceChangeCutoff {
		direction := "improved"
		if change < 0 {
			direction = "declined"
		}
		changes = append(changes, models.NotableChange{
			Type:        models.ChangeGuidance,
			Description: fmt.Sprintf("Guidance sentiment %s significantly", direction),
			Magnitude:   models.MagnitudeHigh,
			Details: map[string]any{
				"current":        latest.GuidanceSentiment,
				"historical_avg": histGuidance,
				"change":         change,
			},
		})
	}

	return changes
}

func (a *Analyzer) languageIncrease(changeType, description string, current int, histAvg float64) (models.NotableChange, bool) {
	if float64(current) <= histAvg*a.thresholds.LanguageMultiplier {
		return models.NotableChange{}, false
	}
	return models.NotableChange{
		Type:        changeType,
		Description: description,
		Magnitude:   models.MagnitudeHigh,
		Details: map[string]any{
			"current":         current,
			"historical_avg":  histAvg,
			"increase_factor": float64(current) / (histAvg + 1),
		},
	}, true
}

// newProducts lists products named in the latest quarter and in none of the
// historical ones, compared by upper-cased name.
func newProducts(latest models.SentimentResult, historical []models.SentimentResult) []string {
	seen := make(map[string]struct{})
	for _, h := range historical {
		for _, p := range h.ProductMentions {
			seen[strings.ToUpper(p.Name)] = struct{}{}
		}
	}

	var fresh []string
	for _, p := range latest.ProductMentions {
		key := strings.ToUpper(p.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, key)
	}
	slices.Sort(fresh)
	return fresh
}

func supportingQuotes(latest models.SentimentResult) []string {
	var quotes []string
	for _, q := range firstN(latest.KeyQuotes, maxSupportingQuotes) {
		quotes = append(quotes, q.Text)
	}
	return quotes
}

func newestFirst(history []models.SentimentResult) []models.SentimentResult {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b models.SentimentResult) int {
		if c := cmp.Compare(b.FiscalYear, a.FiscalYear); c != 0 {
			return c
		}
		return cmp.Compare(b.FiscalQuarter, a.FiscalQuarter)
	})
	return sorted
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
