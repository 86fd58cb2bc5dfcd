package consumers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/utils"
)

const (
	UNHEALTHY_BACKOFF = 5 * time.Second
	INGEST_ATTEMPTS   = 3
)

// DeadTranscript is published to the dead-letter topic when a transcript
// could not be persisted after INGEST_ATTEMPTS.
type DeadTranscript struct {
	Transcript models.RawTranscript `json:"transcript"`
	Error      string               `json:"error"`
	Attempts   int                  `json:"attempts"`
	FailedAt   time.Time            `json:"failed_at"`
}

type Ingester interface {
	Ingest(ctx context.Context, rt models.RawTranscript) (*models.TrendResult, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
	Rewind(msg *kafka.Message) error
}

// TranscriptConsumer scores raw transcripts from Kafka. Offsets are committed
// only after the alerts raised by those transcripts have been flushed.
type TranscriptConsumer struct {
	ingester Ingester
	alerts   *AlertBuffer
	pending  *utils.BatchBuffer[*kafka.Message]
	backoff  time.Duration
	retry    time.Duration
}

func NewTranscriptConsumer(ingester Ingester, alerts *AlertBuffer) *TranscriptConsumer {
	return &TranscriptConsumer{
		ingester: ingester,
		alerts:   alerts,
		pending:  utils.NewBatchBuffer[*kafka.Message](utils.BATCH_SIZE),
		backoff:  UNHEALTHY_BACKOFF,
		retry:    kafka_client.RETRY_DELAY,
	}
}

func (c *TranscriptConsumer) Start(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(ctx, consumer)

	slog.Info("[TranscriptConsumer] Listening for messages...")

	ticker := time.NewTicker(utils.BATCH_TIMEOUT)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[TranscriptConsumer] Stopping consumer...")
			c.flush(context.WithoutCancel(ctx), committer)
			return
		case <-ticker.C:
			c.flush(ctx, committer)
		default:
			if !healthy(health) {
				slog.Warn("[TranscriptConsumer] Classifier unhealthy, pausing",
					slog.Duration("backoff", c.backoff))
				sleep(ctx, c.backoff)
				continue
			}

			msg, err := iterator.Next()
			if errors.Is(err, kafka_client.ErrNoMessage) {
				continue
			}
			if err != nil {
				utils.HandleConsumerError(err)
				continue
			}

			c.handle(ctx, msg, committer)
		}
	}
}

func (c *TranscriptConsumer) handle(ctx context.Context, msg *kafka.Message, committer Committer) {
	var rt models.RawTranscript
	if err := utils.DeserializeFromJSON(msg.Value, &rt); err != nil || rt.Metadata.Ticker == "" {
		slog.Warn("[TranscriptConsumer] Skipping malformed message",
			slog.String("key", string(msg.Key)))
		c.pending.Add(msg)
		return
	}

	if !c.ingest(ctx, rt) {
		// Commit what came before, then seek back so this transcript is
		// redelivered instead of being committed by a later offset.
		c.flush(ctx, committer)
		if err := committer.Rewind(msg); err != nil {
			slog.Error("[TranscriptConsumer] Failed to rewind",
				slog.String("content_id", rt.ContentID),
				slog.String("error", err.Error()))
		}
		return
	}

	if c.pending.Add(msg) || c.alerts.Full() {
		c.flush(ctx, committer)
	}
}

// ingest persists one transcript, retrying persistence failures. When every
// attempt fails the transcript goes to the dead-letter topic instead. It
// reports whether the message is safe to commit.
func (c *TranscriptConsumer) ingest(ctx context.Context, rt models.RawTranscript) bool {
	var err error
	for attempt := 1; attempt <= INGEST_ATTEMPTS; attempt++ {
		var trendResult *models.TrendResult
		trendResult, err = c.ingester.Ingest(ctx, rt)
		if err == nil {
			if trendResult != nil {
				slog.Info("[TranscriptConsumer] Transcript ingested",
					slog.String("company_id", rt.Metadata.Ticker),
					slog.String("category", trendResult.Category))
			}
			return true
		}

		slog.Error("[TranscriptConsumer] Failed to ingest transcript",
			slog.String("content_id", rt.ContentID),
			slog.String("company_id", rt.Metadata.Ticker),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt < INGEST_ATTEMPTS && !sleep(ctx, c.retry) {
			return false
		}
	}

	dead := DeadTranscript{
		Transcript: rt,
		Error:      err.Error(),
		Attempts:   INGEST_ATTEMPTS,
		FailedAt:   time.Now().UTC(),
	}
	if err := c.alerts.Publish(ctx, kafka_client.KAFKA_TOPIC_DEAD_TRANSCRIPTS, rt.Metadata.Ticker, dead); err != nil {
		slog.Error("[TranscriptConsumer] Failed to dead-letter transcript",
			slog.String("content_id", rt.ContentID),
			slog.String("error", err.Error()))
		return false
	}

	slog.Warn("[TranscriptConsumer] Transcript dead-lettered",
		slog.String("content_id", rt.ContentID),
		slog.String("company_id", rt.Metadata.Ticker))
	return true
}

func (c *TranscriptConsumer) flush(ctx context.Context, committer Committer) {
	if !c.pending.HasData() && !c.alerts.buffer.HasData() {
		return
	}
	c.pending.LogBatchProcessing("transcript offsets")

	if err := c.alerts.Flush(ctx); err != nil {
		slog.Error("[TranscriptConsumer] Failed to publish alerts",
			slog.String("error", err.Error()))
	}

	for _, msg := range c.pending.GetAndClear() {
		if err := committer.Commit(msg); err != nil {
			slog.Warn("[TranscriptConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
