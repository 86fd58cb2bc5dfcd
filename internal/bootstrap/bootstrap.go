// Package bootstrap wires configured backends into a ready pipeline. It is
// shared by the scorer and backfill binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/alerts"
	"github.com/spacesedan/earningsflow/internal/clients"
	"github.com/spacesedan/earningsflow/internal/db"
	"github.com/spacesedan/earningsflow/internal/monitoring"
	"github.com/spacesedan/earningsflow/internal/pipeline"
	"github.com/spacesedan/earningsflow/internal/sentiment"
	"github.com/spacesedan/earningsflow/internal/trend"
)

type Pipeline struct {
	Runner *pipeline.Runner
	Store  db.Store
	// Health is set only for classifiers that live behind the network.
	Health  monitoring.HealthChecker
	closers []func()
}

func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// NewPipeline builds the store, classifier, scorer and analyzers described
// by the settings. cache may be nil, in which case chunk results are not cached.
func NewPipeline(ctx context.Context, s config.Settings, th config.Thresholds, cache sentiment.Cache, opts ...pipeline.Option) (*Pipeline, error) {
	p := &Pipeline{}

	store, err := NewStore(ctx, s)
	if err != nil {
		return nil, err
	}
	p.Store = store
	p.closers = append(p.closers, func() {
		if err := store.Close(); err != nil {
			slog.Warn("[Bootstrap] Failed to close store", slog.String("error", err.Error()))
		}
	})

	classifier, health, closeClassifier, err := NewClassifier(s, cache)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Health = health
	p.closers = append(p.closers, closeClassifier)

	scorer := sentiment.NewScorer(classifier,
		sentiment.WithChunkSize(s.ChunkSize),
		sentiment.WithClassifierTimeout(s.ClassifierTimeout),
		sentiment.WithLabelCutoff(th.Sentiment.LabelCutoff))

	var analyzerOpts []sentiment.AnalyzerOption
	if s.UseLLMEnhancement {
		chat, err := clients.NewOpenAIClient(s.OpenAIAPIKey, s.OpenAIModel)
		if err != nil {
			slog.Warn("[Bootstrap] LLM enhancement disabled",
				slog.String("error", err.Error()))
		} else {
			analyzerOpts = append(analyzerOpts, sentiment.WithEnhancer(sentiment.NewOpenAIEnhancer(chat)))
		}
	}

	engine := alerts.NewEngine(th.Alerts)
	p.Runner = pipeline.NewRunner(
		sentiment.NewAnalyzer(scorer, th, analyzerOpts...),
		trend.NewAnalyzer(th.Trend, engine),
		engine,
		store,
		append([]pipeline.Option{
			pipeline.WithWorkers(s.WorkerCount),
			pipeline.WithTrendOnIngest(s.TrendOnIngest),
		}, opts...)...,
	)

	slog.Info("[Bootstrap] Pipeline ready",
		slog.String("store", s.StoreBackend),
		slog.String("classifier", s.ClassifierBackend),
		slog.Bool("llm_enhancement", len(analyzerOpts) > 0),
		slog.Int("workers", s.WorkerCount),
		slog.Int("lookback_quarters", th.Trend.ComparisonWindow))

	return p, nil
}

func NewStore(ctx context.Context, s config.Settings) (db.Store, error) {
	switch s.StoreBackend {
	case config.StoreMemory:
		return db.NewMemoryStore(), nil
	case config.StoreSQLite:
		return db.NewSQLiteStore(s.SQLitePath)
	case config.StoreDynamoDB:
		client, err := clients.NewDynamoDBClient(ctx, clients.AWSOptions{
			Region:   s.AWSRegion,
			Endpoint: s.AWSEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return db.NewDynamoStore(client), nil
	default:
		return nil, fmt.Errorf("[Bootstrap] unknown store backend %q", s.StoreBackend)
	}
}

// NewClassifier returns the configured classifier, its health checker when it
// is remote, and a function releasing its resources.
func NewClassifier(s config.Settings, cache sentiment.Cache) (sentiment.Classifier, monitoring.HealthChecker, func(), error) {
	var (
		classifier sentiment.Classifier
		health     monitoring.HealthChecker
		closer     = func() {}
		namespace  = s.ClassifierBackend
	)

	switch s.ClassifierBackend {
	case config.ClassifierVader:
		classifier = sentiment.NewVaderClassifier()
	case config.ClassifierHugot:
		h, err := sentiment.NewHugotClassifier(s.FinBERTModel, s.ModelDir)
		if err != nil {
			return nil, nil, nil, err
		}
		classifier = h
		namespace = s.ClassifierBackend + ":" + s.FinBERTModel
		closer = func() {
			if err := h.Close(); err != nil {
				slog.Warn("[Bootstrap] Failed to close hugot session", slog.String("error", err.Error()))
			}
		}
	case config.ClassifierRemote:
		if s.RemoteClassifierURL == "" {
			return nil, nil, nil, fmt.Errorf("[Bootstrap] REMOTE_CLASSIFIER_URL is required for the remote classifier")
		}
		hf := clients.NewHuggingFaceClient(s.RemoteClassifierURL, s.ClassifierTimeout)
		classifier = hf
		health = hf
	default:
		return nil, nil, nil, fmt.Errorf("[Bootstrap] unknown classifier backend %q", s.ClassifierBackend)
	}

	if cache != nil {
		classifier = sentiment.NewCachedClassifier(classifier, cache, namespace, s.CacheTTL)
	}
	return classifier, health, closer, nil
}
