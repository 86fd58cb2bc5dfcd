package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
	"github.com/spacesedan/earningsflow/internal/utils"
)

const PUBLISH_ATTEMPTS = 3

type BatchPublisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
	PublishBatch(ctx context.Context, topic string, batch []kafka_client.Message) error
}

// AlertBuffer holds alerts back so they go out as one transaction per batch.
// Anything published to another topic passes straight through.
type AlertBuffer struct {
	producer   BatchPublisher
	buffer     *utils.BatchBuffer[kafka_client.Message]
	retryDelay time.Duration
}

func NewAlertBuffer(producer BatchPublisher) *AlertBuffer {
	return &AlertBuffer{
		producer:   producer,
		buffer:     utils.NewBatchBuffer[kafka_client.Message](utils.BATCH_SIZE),
		retryDelay: 2 * time.Second,
	}
}

func (b *AlertBuffer) Publish(ctx context.Context, topic, key string, value any) error {
	if topic != kafka_client.KAFKA_TOPIC_TRANSCRIPT_ALERTS {
		return b.producer.Publish(ctx, topic, key, value)
	}
	b.buffer.Add(kafka_client.Message{Key: key, Value: value})
	return nil
}

func (b *AlertBuffer) Full() bool {
	return b.buffer.Size() >= utils.BATCH_SIZE
}

// Flush publishes everything buffered. A batch that still fails after
// PUBLISH_ATTEMPTS is dropped; the alerts remain in the store.
func (b *AlertBuffer) Flush(ctx context.Context) error {
	batch := b.buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	var err error
	for i := 0; i < PUBLISH_ATTEMPTS; i++ {
		err = b.producer.PublishBatch(ctx, kafka_client.KAFKA_TOPIC_TRANSCRIPT_ALERTS, batch)
		if err == nil {
			return nil
		}
		slog.Warn("[AlertBuffer] Batch publishing failed",
			slog.Int("attempt", i+1),
			slog.Int("alerts", len(batch)),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.retryDelay):
		}
	}
	return fmt.Errorf("[AlertBuffer] dropped %d alerts after %d attempts: %w", len(batch), PUBLISH_ATTEMPTS, err)
}
