package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedClassifier memoizes chunk classifications by content hash. Cache
// errors are logged and never fail a classification.
type CachedClassifier struct {
	next      Classifier
	cache     Cache
	ttl       time.Duration
	namespace string
}

func NewCachedClassifier(next Classifier, cache Cache, namespace string, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{next: next, cache: cache, namespace: namespace, ttl: ttl}
}

func (c *CachedClassifier) Classify(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
	key := c.key(chunk)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		slog.Warn("[CachedClassifier] Cache read failed", slog.String("error", err.Error()))
	} else if ok {
		var out models.ClassifierOutput
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	}

	out, err := c.next.Classify(ctx, chunk)
	if err != nil {
		return out, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			slog.Warn("[CachedClassifier] Cache write failed", slog.String("error", err.Error()))
		}
	}
	return out, nil
}

func (c *CachedClassifier) key(chunk string) string {
	sum := sha256.Sum256([]byte(chunk))
	return "sentiment:chunk:" + c.namespace + ":" + hex.EncodeToString(sum[:])
}
