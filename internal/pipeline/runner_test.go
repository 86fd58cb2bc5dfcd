package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/alerts"
	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
	"github.com/spacesedan/earningsflow/internal/db"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/sentiment"
	"github.com/spacesedan/earningsflow/internal/trend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runTime = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

type published struct {
	topic string
	key   string
	value any
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic, key string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{topic: topic, key: key, value: value})
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var topics []string
	for _, m := range p.messages {
		topics = append(topics, m.topic)
	}
	return topics
}

// markerClassifier scores a chunk positive at the level named by its marker word.
func markerClassifier() sentiment.Classifier {
	return sentiment.ClassifierFunc(func(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
		level := 0.10
		switch {
		case strings.Contains(chunk, "glowing"):
			level = 0.62
		case strings.Contains(chunk, "upbeat"):
			level = 0.45
		}
		return models.ClassifierOutput{
			Label:         models.LabelPositive,
			Probabilities: models.Probabilities{Positive: level, Neutral: 1 - level},
		}, nil
	})
}

type failingStore struct {
	*db.MemoryStore
	failTicker string
}

func (s *failingStore) SaveSentimentWithAlerts(ctx context.Context, r *models.SentimentResult, alerts []models.Alert) error {
	if r.CompanyID == s.failTicker {
		return errors.New("disk full")
	}
	return s.MemoryStore.SaveSentimentWithAlerts(ctx, r, alerts)
}

func newTestRunner(store db.Store, opts ...Option) *Runner {
	th := config.DefaultThresholds()
	clock := func() time.Time { return runTime }

	scorer := sentiment.NewScorer(markerClassifier())
	analyzer := sentiment.NewAnalyzer(scorer, th, sentiment.WithClock(clock))
	engine := alerts.NewEngine(th.Alerts, alerts.WithClock(clock))
	trends := trend.NewAnalyzer(th.Trend, engine, trend.WithClock(clock))

	return NewRunner(analyzer, trends, engine, store, append([]Option{WithClock(clock)}, opts...)...)
}

func meta(ticker string, year, quarter int) models.TranscriptMetadata {
	return models.TranscriptMetadata{
		Ticker:        ticker,
		FiscalYear:    year,
		FiscalQuarter: quarter,
		CallDate:      time.Date(year, time.Month(quarter*3), 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestProcessAndScoreSignificantSentiment(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	pub := &recordingPublisher{}
	r := newTestRunner(store, WithPublisher(pub))

	result, err := r.ProcessAndScore(ctx, "The company reviewed the period in detail. Reviewers were glowing.", meta("BIOX", 2025, 2))
	require.NoError(t, err)

	assert.InDelta(t, 0.62, result.OverallSentiment, 1e-9)
	assert.Equal(t, "2025#Q2", result.Period)

	stored, err := store.History(ctx, "BIOX", 5)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, result.ID, stored[0].ID)

	raised, err := store.Alerts(ctx, "BIOX")
	require.NoError(t, err)
	require.Len(t, raised, 1)
	assert.Equal(t, models.AlertSignificantSentiment, raised[0].Type)
	assert.Equal(t, models.SeverityHigh, raised[0].Severity)
	assert.Equal(t, "Significant positive sentiment detected (score: 0.62)", raised[0].Message)

	assert.Equal(t, []string{
		kafka_client.KAFKA_TOPIC_TRANSCRIPT_SCORES,
		kafka_client.KAFKA_TOPIC_TRANSCRIPT_ALERTS,
	}, pub.topics())
}

func TestProcessAndScorePublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	r := newTestRunner(db.NewMemoryStore(), WithPublisher(pub))

	_, err := r.ProcessAndScore(context.Background(), "Plain remarks.", meta("BIOX", 2025, 1))

	assert.NoError(t, err)
}

func TestProcessAndScorePersistenceFailure(t *testing.T) {
	store := &failingStore{MemoryStore: db.NewMemoryStore(), failTicker: "BIOX"}
	r := newTestRunner(store)

	_, err := r.ProcessAndScore(context.Background(), "Plain remarks.", meta("BIOX", 2025, 1))

	assert.ErrorContains(t, err, "disk full")
}

func TestAnalyzeTrendNoHistory(t *testing.T) {
	got, raised, err := newTestRunner(db.NewMemoryStore()).AnalyzeTrend(context.Background(), "NONE")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, raised)
}

func TestIngestBuildsTrendAcrossQuarters(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	pub := &recordingPublisher{}
	r := newTestRunner(store, WithPublisher(pub))

	first, err := r.Ingest(ctx, models.RawTranscript{
		Text:     "The company reviewed the period in detail. Results were steady.",
		Metadata: meta("ACME", 2025, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TrendInsufficientData, first.Category)

	_, err = store.LatestTrend(ctx, "ACME")
	assert.ErrorIs(t, err, db.ErrNotFound)

	second, err := r.Ingest(ctx, models.RawTranscript{
		Text:     "The company reviewed the period in detail. Results were upbeat.",
		Metadata: meta("ACME", 2025, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, models.TrendImproving, second.Category)
	assert.InDelta(t, 0.35, second.SentimentChange, 1e-9)

	latest, err := store.LatestTrend(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	raised, err := store.Alerts(ctx, "ACME")
	require.NoError(t, err)
	types := make([]string, 0, len(raised))
	for _, a := range raised {
		types = append(types, a.Type)
	}
	assert.ElementsMatch(t, []string{models.AlertSignificantSentiment, models.AlertSentimentChange}, types)

	assert.Equal(t, []string{
		kafka_client.KAFKA_TOPIC_TRANSCRIPT_SCORES,
		kafka_client.KAFKA_TOPIC_TRANSCRIPT_SCORES,
		kafka_client.KAFKA_TOPIC_TRANSCRIPT_ALERTS,
		kafka_client.KAFKA_TOPIC_TRANSCRIPT_ALERTS,
	}, pub.topics())
}

func TestIngestWithoutTrend(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	r := newTestRunner(store, WithTrendOnIngest(false))

	for q := 1; q <= 2; q++ {
		got, err := r.Ingest(ctx, models.RawTranscript{Text: "Results were steady.", Metadata: meta("ACME", 2025, q)})
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	_, err := store.LatestTrend(ctx, "ACME")
	assert.ErrorIs(t, err, db.ErrNotFound)

	refreshed, _, err := r.AnalyzeTrend(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed.QuartersAnalyzed)
}
