package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PROCESSED_TRANSCRIPTS_KEY = "earningsflow:processed_transcripts"

	valkeyRetries    = 3
	valkeyRetryDelay = 250 * time.Millisecond
)

type ValkeyOptions struct {
	Address  string
	Password string
	UseTLS   bool
}

type ValkeyClient struct {
	Client valkey.Client
	opts   ValkeyOptions
	mu     sync.Mutex
}

func NewValkeyClient(ctx context.Context, opts ValkeyOptions) (*ValkeyClient, error) {
	client, err := dialValkey(ctx, opts)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", opts.Address))
	return &ValkeyClient{Client: client, opts: opts}, nil
}

func dialValkey(ctx context.Context, opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress:      []string{opts.Address},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if opts.UseTLS {
		clientOpts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func (vc *ValkeyClient) recreateClient(ctx context.Context) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := dialValkey(ctx, vc.opts)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

func (vc *ValkeyClient) Close() {
	vc.client().Close()
}

// Get returns the cached bytes for key; a missing key is not an error.
func (vc *ValkeyClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c := vc.client()
	res := vc.DoWithRetry(ctx, c.B().Get().Key(key).Build().Pin(), valkeyRetries)

	value, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("[ValkeyClient] get %s: %w", key, err)
	}
	return value, true, nil
}

func (vc *ValkeyClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c := vc.client()
	var cmd valkey.Completed
	if ttl > 0 {
		cmd = c.B().Set().Key(key).Value(valkey.BinaryString(value)).ExSeconds(int64(ttl.Seconds())).Build().Pin()
	} else {
		cmd = c.B().Set().Key(key).Value(valkey.BinaryString(value)).Build().Pin()
	}

	if err := vc.DoWithRetry(ctx, cmd, valkeyRetries).Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] set %s: %w", key, err)
	}
	return nil
}

// MarkProcessed records a transcript key in the processed set.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, key string) error {
	c := vc.client()
	completed := []valkey.Completed{
		c.B().Sadd().Key(VALKEY_PROCESSED_TRANSCRIPTS_KEY).Member(key).Build().Pin(),
	}

	for _, res := range vc.DoMultiWithRetry(ctx, completed, valkeyRetries) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] mark processed: %w", err)
		}
	}

	slog.Debug("[ValkeyClient] Marked transcript as processed", slog.String("key", key))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, key string) (bool, error) {
	c := vc.client()
	res := vc.DoWithRetry(ctx, c.B().Sismember().Key(VALKEY_PROCESSED_TRANSCRIPTS_KEY).Member(key).Build().Pin(), valkeyRetries)

	ok, err := res.AsBool()
	if err != nil {
		return false, fmt.Errorf("[ValkeyClient] check processed: %w", err)
	}
	return ok, nil
}

// DoMultiWithRetry and DoWithRetry expect pinned commands so they can be
// sent more than once.
func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.client().DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient(ctx)
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(valkeyRetryDelay)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.client().Do(ctx, completed)
		if result.Error() == nil || valkey.IsValkeyNil(result.Error()) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		if isConnectionError(result.Error()) {
			vc.recreateClient(ctx)
		}

		time.Sleep(valkeyRetryDelay)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
