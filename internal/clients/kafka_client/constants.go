package kafka_client

import "time"

const (
	KAFKA_TOPIC_RAW_TRANSCRIPTS   = "raw-transcripts"     // collected transcripts waiting to be scored
	KAFKA_TOPIC_TRANSCRIPT_SCORES = "transcript-scores"   // one sentiment result per transcript
	KAFKA_TOPIC_TRANSCRIPT_ALERTS = "transcript-alerts"   // batched alerts from scoring and trend analysis
	KAFKA_TOPIC_DEAD_TRANSCRIPTS  = "raw-transcripts-dlq" // transcripts that could not be persisted
)

const (
	MAX_RETRIES   = 5
	RETRY_DELAY   = 2 * time.Second
	POLL_TIMEOUT  = 500 * time.Millisecond
	FLUSH_TIMEOUT = 5000 // ms
)
