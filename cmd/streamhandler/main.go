package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/bootstrap"
	"github.com/spacesedan/earningsflow/internal/clients"
	"github.com/spacesedan/earningsflow/internal/logging"
	"github.com/spacesedan/earningsflow/internal/streams"
)

const (
	ProcessingModeLambda = "lambda"
	ProcessingModePoll   = "poll"
)

// streamhandler refreshes company trends whenever a sentiment row lands in
// DynamoDB. Pair it with TREND_ON_INGEST=false on the scorer.
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
	settings.StoreBackend = config.StoreDynamoDB

	thresholds, err := config.LoadThresholds(settings.ThresholdsFile)
	if err != nil {
		slog.Error("[Main] Invalid thresholds", slog.String("error", err.Error()))
		os.Exit(1)
	}
	thresholds = thresholds.WithLookback(settings.LookbackQuarters)

	p, err := bootstrap.NewPipeline(ctx, settings, thresholds, nil)
	if err != nil {
		slog.Error("[Main] Failed to build pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer p.Close()

	stream := streams.NewSentimentStream(p.Runner)

	mode := os.Getenv("PROCESSING_MODE")
	switch mode {
	case ProcessingModeLambda:
		slog.Info("[Main] Handling sentiment stream as a Lambda")
		lambda.StartWithOptions(stream.HandleEvent, lambda.WithContext(ctx))
	case ProcessingModePoll, "":
		client, err := clients.NewDynamoDBStreamClient(ctx, clients.AWSOptions{
			Region:   settings.AWSRegion,
			Endpoint: settings.AWSEndpoint,
		})
		if err != nil {
			slog.Error("[Main] Failed to create stream client", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := stream.Poll(ctx, client); err != nil {
			slog.Error("[Main] Stream polling stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	default:
		slog.Error("[Main] PROCESSING_MODE must be 'lambda' or 'poll'", slog.String("mode", mode))
		os.Exit(1)
	}
}
