package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/bootstrap"
	"github.com/spacesedan/earningsflow/internal/clients"
	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
	"github.com/spacesedan/earningsflow/internal/consumers"
	"github.com/spacesedan/earningsflow/internal/logging"
	"github.com/spacesedan/earningsflow/internal/monitoring"
	"github.com/spacesedan/earningsflow/internal/pipeline"
	"github.com/spacesedan/earningsflow/internal/sentiment"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := config.LoadSettings()
	thresholds, err := config.LoadThresholds(settings.ThresholdsFile)
	if err != nil {
		slog.Error("[Main] Invalid thresholds", slog.String("error", err.Error()))
		os.Exit(1)
	}
	thresholds = thresholds.WithLookback(settings.LookbackQuarters)

	var cache sentiment.Cache
	if settings.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(ctx, clients.ValkeyOptions{
			Address:  settings.ValkeyAddress,
			Password: settings.ValkeyPassword,
			UseTLS:   settings.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, classifying without cache",
				slog.String("error", err.Error()))
		} else {
			defer vc.Close()
			cache = vc
		}
	}

	cfg := kafka_client.GetKafkaConfig("scorer")

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(ctx, cfg)
		if err == nil {
			break
		}
		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	alertBuffer := consumers.NewAlertBuffer(producer)

	p, err := bootstrap.NewPipeline(ctx, settings, thresholds, cache, pipeline.WithPublisher(alertBuffer))
	if err != nil {
		slog.Error("[Main] Failed to build pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer p.Close()

	classifierHealthy := &atomic.Bool{}
	classifierHealthy.Store(true)
	if p.Health != nil {
		go monitoring.MonitorClassifierHealth(ctx, p.Health, classifierHealthy)
	}

	transcriptConsumer := consumers.NewTranscriptConsumer(p.Runner, alertBuffer)

	registry := kafka_client.NewConsumerRegistry()
	registry.RegisterConsumer(kafka_client.KAFKA_TOPIC_RAW_TRANSCRIPTS,
		consumers.WrapConsumer(transcriptConsumer.Start).WithHealthCheck(classifierHealthy).Handler())

	if err := registry.StartConsumer(ctx, cfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
