package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/clients"
	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
	"github.com/spacesedan/earningsflow/internal/collector"
	"github.com/spacesedan/earningsflow/internal/logging"
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

	var producer *kafka_client.Producer
	var err error
	for {
		producer, err = kafka_client.NewProducer(ctx, kafka_client.GetKafkaConfig("collector"))
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

	var dedupe collector.Deduper
	if settings.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(ctx, clients.ValkeyOptions{
			Address:  settings.ValkeyAddress,
			Password: settings.ValkeyPassword,
			UseTLS:   settings.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, collecting without dedupe",
				slog.String("error", err.Error()))
		} else {
			defer vc.Close()
			dedupe = vc
		}
	}

	scheduler := collector.NewScheduler(ctx, collector.NewCollector(settings.InboxDir, dedupe, producer))
	if err := scheduler.Register(settings.CollectCron); err != nil {
		slog.Error("[Main] Failed to register schedule", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if settings.RunOnStart {
		scheduler.RunNow()
	}

	scheduler.Start()
	<-ctx.Done()
	slog.Info("[Main] Shutting down collector...")
	scheduler.Stop()
}
