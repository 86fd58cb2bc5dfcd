package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	ClassifierVader  = "vader"
	ClassifierHugot  = "hugot"
	ClassifierRemote = "remote"

	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Settings struct {
	Env string

	ChunkSize           int
	ClassifierBackend   string
	ClassifierTimeout   time.Duration
	FinBERTModel        string
	ModelDir            string
	RemoteClassifierURL string
	CacheTTL            time.Duration

	UseLLMEnhancement bool
	OpenAIModel       string

	LookbackQuarters int
	WorkerCount      int
	TrendOnIngest    bool

	StoreBackend string
	SQLitePath   string

	InboxDir    string
	CollectCron string
	RunOnStart  bool

	ThresholdsFile string

	AWSRegion   string
	AWSEndpoint string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	OpenAIAPIKey string
}

func LoadSettings() Settings {
	return Settings{
		Env:                 getEnv("APP_ENV", "dev"),
		ChunkSize:           getEnvInt("CHUNK_SIZE", 500),
		ClassifierBackend:   getEnv("CLASSIFIER_BACKEND", ClassifierVader),
		ClassifierTimeout:   getEnvDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
		FinBERTModel:        getEnv("FINBERT_MODEL", "ProsusAI/finbert"),
		ModelDir:            getEnv("MODEL_DIR", "./models"),
		RemoteClassifierURL: getEnv("REMOTE_CLASSIFIER_URL", ""),
		CacheTTL:            getEnvDuration("CACHE_TTL", 24*time.Hour),
		UseLLMEnhancement:   getEnvBool("USE_LLM_ENHANCEMENT", false),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LookbackQuarters:    getEnvInt("LOOKBACK_QUARTERS", 4),
		WorkerCount:         getEnvInt("WORKER_COUNT", 1),
		TrendOnIngest:       getEnvBool("TREND_ON_INGEST", true),
		StoreBackend:        getEnv("STORE_BACKEND", StoreDynamoDB),
		SQLitePath:          getEnv("SQLITE_PATH", "data/earningsflow.db"),
		InboxDir:            getEnv("INBOX_DIR", "data/inbox"),
		CollectCron:         getEnv("COLLECT_CRON", "0 0 6 * * 1"),
		RunOnStart:          getEnvBool("RUN_ON_START", false),
		ThresholdsFile:      getEnv("THRESHOLDS_FILE", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:         getEnv("AWS_ENDPOINT", ""),
		ValkeyAddress:       getEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword:      getEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:           getEnvBool("VALKEY_TLS", false),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("[Config] Invalid float, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("[Config] Invalid boolean, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("[Config] Invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return v
}
