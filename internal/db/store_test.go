package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func result(company string, year, quarter int, sentiment float64) *models.SentimentResult {
	return &models.SentimentResult{
		ID:               company + models.PeriodKey(year, quarter),
		CompanyID:        company,
		Period:           models.PeriodKey(year, quarter),
		FiscalYear:       year,
		FiscalQuarter:    quarter,
		OverallSentiment: sentiment,
		SentimentLabel:   models.LabelNeutral,
		AnalyzedAt:       baseTime,
		ProductMentions:  []models.ProductMention{{Name: "ABC-123", Mentions: 2}},
	}
}

func alert(id, company string, offset time.Duration) models.Alert {
	return models.Alert{
		ID:        id,
		CompanyID: company,
		Type:      models.AlertSentimentChange,
		Severity:  models.SeverityMedium,
		Message:   "Sentiment improved by 0.35 points",
		Data:      map[string]any{"direction": "improved"},
		CreatedAt: baseTime.Add(offset),
	}
}

func trendFor(id, company string, offset time.Duration) *models.TrendResult {
	return &models.TrendResult{
		ID:           id,
		CompanyID:    company,
		AnalysisDate: baseTime.Add(offset),
		Category:     models.TrendImproving,
	}
}

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "earningsflow.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStoreHistory(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.SaveSentiment(ctx, result("ACME", 2024, 4, 0.1)))
			require.NoError(t, s.SaveSentiment(ctx, result("ACME", 2025, 2, 0.3)))
			require.NoError(t, s.SaveSentiment(ctx, result("ACME", 2025, 1, 0.2)))
			require.NoError(t, s.SaveSentiment(ctx, result("OTHR", 2025, 3, 0.9)))

			history, err := s.History(ctx, "ACME", 0)
			require.NoError(t, err)
			require.Len(t, history, 3)
			assert.Equal(t, []string{"2025#Q2", "2025#Q1", "2024#Q4"},
				[]string{history[0].Period, history[1].Period, history[2].Period})
			assert.Equal(t, "ABC-123", history[0].ProductMentions[0].Name)
			assert.True(t, history[0].AnalyzedAt.Equal(baseTime))

			limited, err := s.History(ctx, "ACME", 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)
			assert.Equal(t, 0.3, limited[0].OverallSentiment)

			empty, err := s.History(ctx, "NONE", 4)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestStoreReplacesSamePeriod(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.SaveSentiment(ctx, result("ACME", 2025, 1, 0.2)))
			require.NoError(t, s.SaveSentiment(ctx, result("ACME", 2025, 1, -0.4)))

			history, err := s.History(ctx, "ACME", 0)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, -0.4, history[0].OverallSentiment)

			ok, err := s.HasTranscript(ctx, "ACME", 2025, 1)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.HasTranscript(ctx, "ACME", 2025, 2)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreTrendWithAlerts(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.LatestTrend(ctx, "ACME")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.SaveTrendWithAlerts(ctx, trendFor("t1", "ACME", 0), nil))
			require.NoError(t, s.SaveTrendWithAlerts(ctx, trendFor("t2", "ACME", time.Hour), []models.Alert{
				alert("a1", "ACME", time.Hour),
				alert("a2", "ACME", time.Hour+time.Second),
			}))

			latest, err := s.LatestTrend(ctx, "ACME")
			require.NoError(t, err)
			assert.Equal(t, "t2", latest.ID)
			assert.Equal(t, models.TrendImproving, latest.Category)

			alerts, err := s.Alerts(ctx, "ACME")
			require.NoError(t, err)
			require.Len(t, alerts, 2)
			assert.Equal(t, "a1", alerts[0].ID)
			assert.Equal(t, "improved", alerts[0].Data["direction"])
		})
	}
}

func TestStoreRejectsPartialTrend(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			err := s.SaveTrendWithAlerts(ctx, trendFor("t1", "ACME", 0), []models.Alert{
				alert("a1", "ACME", 0),
				alert("", "ACME", 0),
			})
			require.Error(t, err)

			_, err = s.LatestTrend(ctx, "ACME")
			assert.ErrorIs(t, err, ErrNotFound)
			alerts, err := s.Alerts(ctx, "ACME")
			require.NoError(t, err)
			assert.Empty(t, alerts)
		})
	}
}

func TestStoreSaveAlerts(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.SaveAlerts(ctx, nil))
			require.NoError(t, s.SaveAlerts(ctx, []models.Alert{alert("a1", "ACME", 0), alert("b1", "OTHR", 0)}))

			alerts, err := s.Alerts(ctx, "ACME")
			require.NoError(t, err)
			require.Len(t, alerts, 1)
			assert.Equal(t, "a1", alerts[0].ID)

			assert.Error(t, s.SaveSentiment(ctx, &models.SentimentResult{}))
		})
	}
}

func TestSQLiteTrendRollsBack(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rollback.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveAlerts(ctx, []models.Alert{alert("dup", "ACME", 0)}))

	err = s.SaveTrendWithAlerts(ctx, trendFor("t1", "ACME", 0), []models.Alert{
		alert("fresh", "ACME", time.Second),
		alert("dup", "ACME", 2*time.Second),
	})
	require.Error(t, err)

	_, err = s.LatestTrend(ctx, "ACME")
	assert.ErrorIs(t, err, ErrNotFound)

	alerts, err := s.Alerts(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "dup", alerts[0].ID)
}

func TestStoreSentimentWithAlerts(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.SaveSentimentWithAlerts(ctx, result("ACME", 2025, 2, 0.62), []models.Alert{alert("sig", "ACME", 0)}))

			ok, err := s.HasTranscript(ctx, "ACME", 2025, 2)
			require.NoError(t, err)
			assert.True(t, ok)

			alerts, err := s.Alerts(ctx, "ACME")
			require.NoError(t, err)
			require.Len(t, alerts, 1)
			assert.Equal(t, "sig", alerts[0].ID)

			assert.Error(t, s.SaveSentimentWithAlerts(ctx, result("ACME", 2025, 3, 0.1), []models.Alert{{ID: "", CompanyID: "ACME"}}))
			ok, err = s.HasTranscript(ctx, "ACME", 2025, 3)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLiteSentimentRollsBack(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sentiment-rollback.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveAlerts(ctx, []models.Alert{alert("dup", "ACME", 0)}))

	err = s.SaveSentimentWithAlerts(ctx, result("ACME", 2025, 1, 0.7), []models.Alert{alert("dup", "ACME", time.Second)})
	require.Error(t, err)

	ok, err := s.HasTranscript(ctx, "ACME", 2025, 1)
	require.NoError(t, err)
	assert.False(t, ok, "a failed alert write must leave the period unscored so it is retried")
}
