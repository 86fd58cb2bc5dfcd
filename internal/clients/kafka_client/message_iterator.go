package kafka_client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// ErrNoMessage is returned by Next when the poll window passed without a
// message, so callers can check their context and tickers.
var ErrNoMessage = errors.New("[KafkaIterator] no message within poll timeout")

type KafkaMessageIterator struct {
	consumer *kafka.Consumer
	ctx      context.Context
}

func NewKafkaMessageIterator(ctx context.Context, consumer *kafka.Consumer) *KafkaMessageIterator {
	return &KafkaMessageIterator{
		consumer: consumer,
		ctx:      ctx,
	}
}

func (it *KafkaMessageIterator) Next() (*kafka.Message, error) {
	if it.consumer == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	for i := 0; i < MAX_RETRIES; i++ {
		select {
		case <-it.ctx.Done():
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, it.ctx.Err()
		default:
			msg, err := it.consumer.ReadMessage(POLL_TIMEOUT)
			if err == nil {
				return msg, nil
			}

			var kafkaErr kafka.Error
			if errors.As(err, &kafkaErr) {
				switch kafkaErr.Code() {
				case kafka.ErrTimedOut:
					return nil, ErrNoMessage
				case kafka.ErrAllBrokersDown:
					slog.Error("[KafkaIterator] All Kafka brokers are down. Aborting")
					return nil, err
				}
			}

			slog.Warn("[KafkaIterator] Failed to read message, retrying...",
				slog.Int("attempt", i+1),
				slog.Int("max_retries", MAX_RETRIES),
				slog.String("error", err.Error()))

			if !sleepCtx(it.ctx, RETRY_DELAY) {
				return nil, it.ctx.Err()
			}
		}
	}
	return nil, errors.New("[KafkaIterator] Failed to read message after retries")
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
