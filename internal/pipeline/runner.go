// Package pipeline is the composition root for one transcript's trip through
// normalization, scoring, trend analysis and alerting.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/earningsflow/internal/alerts"
	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
	"github.com/spacesedan/earningsflow/internal/db"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/sentiment"
	"github.com/spacesedan/earningsflow/internal/transcript"
	"github.com/spacesedan/earningsflow/internal/trend"
)

// Publisher fans results out to downstream consumers. kafka_client.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type Runner struct {
	analyzer      *sentiment.Analyzer
	trends        *trend.Analyzer
	alerts        *alerts.Engine
	store         db.Store
	publisher     Publisher
	workers       int
	reprocess     bool
	trendOnIngest bool
	locks         *companyLocks
	now           func() time.Time
}

type Option func(*Runner)

func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithWorkers bounds how many transcripts RunBatch handles at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithReprocess makes RunBatch score transcripts whose period is already stored.
func WithReprocess(reprocess bool) Option {
	return func(r *Runner) { r.reprocess = reprocess }
}

// WithTrendOnIngest controls whether Ingest re-runs the company trend. It is
// turned off when a stream handler refreshes trends instead.
func WithTrendOnIngest(enabled bool) Option {
	return func(r *Runner) { r.trendOnIngest = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(analyzer *sentiment.Analyzer, trends *trend.Analyzer, engine *alerts.Engine, store db.Store, opts ...Option) *Runner {
	r := &Runner{
		analyzer:      analyzer,
		trends:        trends,
		alerts:        engine,
		store:         store,
		workers:       1,
		locks:         newCompanyLocks(),
		trendOnIngest: true,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessAndScore turns one raw transcript into a stored SentimentResult,
// written atomically with the per-transcript alerts it raises. Scoring itself never fails; the
// only error returned is a persistence error.
func (r *Runner) ProcessAndScore(ctx context.Context, raw string, meta models.TranscriptMetadata) (*models.SentimentResult, error) {
	pt := transcript.ProcessAt(raw, meta, r.now())
	result := r.analyzer.Analyze(ctx, pt)

	raised := r.alerts.TranscriptAlerts(result)
	if err := r.store.SaveSentimentWithAlerts(ctx, result, raised); err != nil {
		return nil, fmt.Errorf("[Pipeline] save sentiment for %s %s: %w", result.CompanyID, result.Period, err)
	}

	r.publish(ctx, kafka_client.KAFKA_TOPIC_TRANSCRIPT_SCORES, result.CompanyID, result)
	r.publishAlerts(ctx, raised)

	slog.Info("[Pipeline] Transcript scored",
		slog.String("company_id", result.CompanyID),
		slog.String("period", result.Period),
		slog.Float64("overall_sentiment", result.OverallSentiment),
		slog.Float64("management_confidence", result.ManagementConfidence),
		slog.Int("alerts", len(raised)))

	return result, nil
}

// AnalyzeTrend reads the company's stored history and classifies it. No
// history yields nil. A single quarter yields insufficient_data and nothing
// is persisted. Otherwise the trend and its alerts are saved atomically.
func (r *Runner) AnalyzeTrend(ctx context.Context, companyID string) (*models.TrendResult, []models.Alert, error) {
	history, err := r.store.History(ctx, companyID, r.trends.Window()+1)
	if err != nil {
		return nil, nil, fmt.Errorf("[Pipeline] load history for %s: %w", companyID, err)
	}
	if len(history) == 0 {
		return nil, nil, nil
	}

	result, raised := r.trends.Analyze(companyID, history)
	if result.Category == models.TrendInsufficientData {
		return result, nil, nil
	}

	if err := r.store.SaveTrendWithAlerts(ctx, result, raised); err != nil {
		return nil, nil, fmt.Errorf("[Pipeline] save trend for %s: %w", companyID, err)
	}
	r.publishAlerts(ctx, raised)

	return result, raised, nil
}

// Ingest scores one transcript and re-runs the company's trend. Calls for the
// same company are serialized so history reads never race a trend write.
func (r *Runner) Ingest(ctx context.Context, rt models.RawTranscript) (*models.TrendResult, error) {
	unlock := r.locks.lock(rt.Metadata.Ticker)
	defer unlock()

	result, err := r.ProcessAndScore(ctx, rt.Text, rt.Metadata)
	if err != nil {
		return nil, err
	}
	if !r.trendOnIngest {
		return nil, nil
	}

	t, _, err := r.AnalyzeTrend(ctx, result.CompanyID)
	return t, err
}

func (r *Runner) publish(ctx context.Context, topic, key string, value any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, topic, key, value); err != nil {
		slog.Warn("[Pipeline] Failed to publish",
			slog.String("topic", topic),
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func (r *Runner) publishAlerts(ctx context.Context, raised []models.Alert) {
	for _, a := range raised {
		r.publish(ctx, kafka_client.KAFKA_TOPIC_TRANSCRIPT_ALERTS, a.CompanyID, a)
	}
}

type companyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCompanyLocks() *companyLocks {
	return &companyLocks{locks: make(map[string]*sync.Mutex)}
}

func (c *companyLocks) lock(companyID string) func() {
	c.mu.Lock()
	l, ok := c.locks[companyID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[companyID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
