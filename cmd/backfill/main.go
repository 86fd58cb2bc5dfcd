package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/bootstrap"
	"github.com/spacesedan/earningsflow/internal/collector"
	"github.com/spacesedan/earningsflow/internal/logging"
	"github.com/spacesedan/earningsflow/internal/pipeline"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	settings := config.LoadSettings()

	dir := flag.String("dir", settings.InboxDir, "directory of transcripts to score")
	reprocess := flag.Bool("reprocess", false, "rescore periods that are already stored")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	thresholds, err := config.LoadThresholds(settings.ThresholdsFile)
	if err != nil {
		slog.Error("[Main] Invalid thresholds", slog.String("error", err.Error()))
		os.Exit(1)
	}
	thresholds = thresholds.WithLookback(settings.LookbackQuarters)

	transcripts, err := collector.LoadInbox(*dir, time.Now().UTC())
	if err != nil {
		slog.Error("[Main] Failed to load transcripts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	p, err := bootstrap.NewPipeline(ctx, settings, thresholds, nil, pipeline.WithReprocess(*reprocess))
	if err != nil {
		slog.Error("[Main] Failed to build pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer p.Close()

	report := p.Runner.RunBatch(ctx, transcripts)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		slog.Error("[Main] Failed to write report", slog.String("error", err.Error()))
	}

	if len(report.Failures) > 0 {
		p.Close()
		os.Exit(1)
	}
}
