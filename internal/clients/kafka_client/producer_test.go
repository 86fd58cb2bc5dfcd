package kafka_client

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessages(t *testing.T) {
	records, err := encodeMessages(KAFKA_TOPIC_TRANSCRIPT_ALERTS, []Message{
		{Key: "MRNA", Value: map[string]any{"type": "guidance_update"}},
		{Key: "VRTX", Value: []int{1, 2}},
	})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, KAFKA_TOPIC_TRANSCRIPT_ALERTS, *records[0].TopicPartition.Topic)
	assert.Equal(t, []byte("MRNA"), records[0].Key)
	assert.JSONEq(t, `{"type":"guidance_update"}`, string(records[0].Value))
	assert.JSONEq(t, `[1,2]`, string(records[1].Value))
}

func TestEncodeMessagesRejectsUnencodable(t *testing.T) {
	_, err := encodeMessages(KAFKA_TOPIC_TRANSCRIPT_SCORES, []Message{{Key: "bad", Value: math.Inf(1)}})

	assert.ErrorContains(t, err, `"bad"`)
}

func TestGetKafkaConfig(t *testing.T) {
	t.Setenv("KAFKA_BROKER", "broker:9092")

	cfg := GetKafkaConfig("scorer")

	assert.Equal(t, "broker:9092", cfg.Broker)
	assert.Equal(t, "earningsflow-scorer", cfg.GroupID)
	assert.Equal(t, KAFKA_TOPIC_RAW_TRANSCRIPTS, cfg.Topic)
	assert.Equal(t, "earningsflow-scorer-producer-1", cfg.TransactionalID)
}
