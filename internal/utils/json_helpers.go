package utils

import (
	"encoding/json"
	"log/slog"
)

func DeserializeFromJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err != nil {
		slog.Warn("[Utils] Failed to deserialize JSON",
			slog.String("error", err.Error()))
	}
	return err
}

func HandleConsumerError(err error) {
	if err == nil {
		return
	}
	slog.Error("[Utils] Kafka Consumer Error",
		slog.String("error", err.Error()))
}
