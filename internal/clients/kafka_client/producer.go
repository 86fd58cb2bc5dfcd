package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// Message is one keyed record of a transactional batch.
type Message struct {
	Key   string
	Value any
}

// Producer publishes JSON records inside Kafka transactions, so a batch is
// visible to read_committed consumers either entirely or not at all.
type Producer struct {
	producer *kafka.Producer
	done     chan struct{}
}

func NewProducer(ctx context.Context, cfg KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("transactional_id", cfg.TransactionalID))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.TransactionalID,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	producer := &Producer{producer: p, done: make(chan struct{})}
	go producer.watchDeliveries()

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return producer, nil
}

func (p *Producer) watchDeliveries() {
	defer close(p.done)
	for ev := range p.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				slog.Warn("[KafkaClient] Delivery failed",
					slog.String("topic", *e.TopicPartition.Topic),
					slog.String("error", e.TopicPartition.Error.Error()))
			}
		case kafka.Error:
			slog.Warn("[KafkaClient] Producer error", slog.String("error", e.Error()))
		}
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, value any) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishBatch writes every message in one transaction and aborts it when
// any message cannot be encoded or produced.
func (p *Producer) PublishBatch(ctx context.Context, topic string, batch []Message) error {
	if len(batch) == 0 {
		return nil
	}

	records, err := encodeMessages(topic, batch)
	if err != nil {
		return err
	}

	if err := p.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, record := range records {
		if err := p.produce(record); err != nil {
			return p.abort(ctx, err)
		}
	}

	var commitErr error
	for i := 0; i < 3; i++ {
		commitErr = p.producer.CommitTransaction(ctx)
		if commitErr == nil {
			break
		}
		if kafkaErr, ok := commitErr.(kafka.Error); ok && kafkaErr.TxnRequiresAbort() {
			return p.abort(ctx, commitErr)
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", commitErr.Error()))
	}
	if commitErr != nil {
		return fmt.Errorf("[KafkaClient] failed to commit transaction after 3 retries: %w", commitErr)
	}

	slog.Info("[KafkaClient] Published batch to Kafka transactionally",
		slog.String("topic", topic),
		slog.Int("messages", len(records)))

	return nil
}

func (p *Producer) produce(msg *kafka.Message) error {
	var err error
	for i := 0; i < 3; i++ {
		err = p.producer.Produce(msg, nil)
		if err == nil {
			return nil
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	return err
}

func (p *Producer) abort(ctx context.Context, cause error) error {
	if abortErr := p.producer.AbortTransaction(ctx); abortErr != nil {
		return fmt.Errorf("[KafkaClient] failed to abort transaction after %v: %w", cause, abortErr)
	}
	return fmt.Errorf("[KafkaClient] transaction aborted: %w", cause)
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if p == nil || p.producer == nil {
		return
	}
	if remaining := p.producer.Flush(FLUSH_TIMEOUT); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	<-p.done
	slog.Info("[KafkaClient] Kafka producer shut down")
}

func encodeMessages(topic string, batch []Message) ([]*kafka.Message, error) {
	records := make([]*kafka.Message, 0, len(batch))
	for _, m := range batch {
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("[KafkaClient] failed to marshal message %q: %w", m.Key, err)
		}
		records = append(records, &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
			Key:            []byte(m.Key),
			Value:          value,
		})
	}
	return records, nil
}
