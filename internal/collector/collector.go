package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
)

// Deduper remembers which transcripts were already handed off. ValkeyClient
// satisfies it.
type Deduper interface {
	IsProcessed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type Report struct {
	Found     int
	Published int
	Duplicate int
	Failed    int
}

type Collector struct {
	inbox     string
	dedupe    Deduper
	publisher Publisher
	now       func() time.Time
}

func NewCollector(inbox string, dedupe Deduper, publisher Publisher) *Collector {
	return &Collector{
		inbox:     inbox,
		dedupe:    dedupe,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Collect publishes every inbox transcript that has not been published before.
// A transcript is marked processed only after Kafka accepted it.
func (c *Collector) Collect(ctx context.Context) (Report, error) {
	transcripts, err := LoadInbox(c.inbox, c.now())
	if err != nil {
		return Report{}, err
	}

	report := Report{Found: len(transcripts)}
	for _, rt := range transcripts {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		key := rt.Metadata.ProcessedKey()
		if c.dedupe != nil {
			seen, err := c.dedupe.IsProcessed(ctx, key)
			if err != nil {
				slog.Warn("[Collector] Dedupe lookup failed, publishing anyway",
					slog.String("key", key),
					slog.String("error", err.Error()))
			}
			if seen {
				report.Duplicate++
				continue
			}
		}

		if err := c.publisher.Publish(ctx, kafka_client.KAFKA_TOPIC_RAW_TRANSCRIPTS, rt.Metadata.Ticker, rt); err != nil {
			report.Failed++
			slog.Error("[Collector] Failed to publish transcript",
				slog.String("content_id", rt.ContentID),
				slog.String("error", err.Error()))
			continue
		}
		report.Published++

		if c.dedupe != nil {
			if err := c.dedupe.MarkProcessed(ctx, key); err != nil {
				slog.Warn("[Collector] Failed to mark transcript processed",
					slog.String("key", key),
					slog.String("error", err.Error()))
			}
		}
	}

	slog.Info("[Collector] Inbox collected",
		slog.String("inbox", c.inbox),
		slog.Int("found", report.Found),
		slog.Int("published", report.Published),
		slog.Int("duplicate", report.Duplicate),
		slog.Int("failed", report.Failed))

	if report.Failed > 0 {
		return report, fmt.Errorf("[Collector] %d transcripts failed to publish", report.Failed)
	}
	return report, nil
}
