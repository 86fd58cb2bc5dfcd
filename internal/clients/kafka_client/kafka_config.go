package kafka_client

import "os"

type KafkaConfig struct {
	Broker          string
	GroupID         string
	Topic           string
	TransactionalID string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetKafkaConfig reads the broker settings for one binary. The client name
// seeds the default transactional id so two binaries never fence each other.
func GetKafkaConfig(client string) KafkaConfig {
	return KafkaConfig{
		Broker:          getEnv("KAFKA_BROKER", "localhost:29092"),
		GroupID:         getEnv("KAFKA_CONSUMER_GROUP_ID", "earningsflow-"+client),
		Topic:           getEnv("KAFKA_CONSUMER_TOPIC", KAFKA_TOPIC_RAW_TRANSCRIPTS),
		TransactionalID: getEnv("KAFKA_TRANSACTIONAL_ID", "earningsflow-"+client+"-producer-1"),
	}
}
