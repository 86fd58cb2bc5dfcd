package consumers

import (
	"context"
	"sync/atomic"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/earningsflow/internal/clients/kafka_client"
)

type ConsumerWrapper struct {
	fn     func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool)
	health []*atomic.Bool
}

func WrapConsumer(fn func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool), health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		fn:     fn,
		health: health,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(cw.health, health)
	return cw
}

func (cw ConsumerWrapper) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		cw.fn(ctx, consumer, cw.health...)
	}
}

func healthy(health []*atomic.Bool) bool {
	for _, h := range health {
		if h != nil && !h.Load() {
			return false
		}
	}
	return true
}
