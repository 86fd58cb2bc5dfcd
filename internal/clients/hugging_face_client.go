package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/sentiment"
)

const healthCheckTimeout = 5 * time.Second

// HuggingFaceClient classifies text against a hosted FinBERT inference
// endpoint. It satisfies sentiment.Classifier.
type HuggingFaceClient struct {
	Client   *http.Client
	endpoint string
	backoff  time.Duration
}

func NewHuggingFaceClient(endpoint string, timeout time.Duration) *HuggingFaceClient {
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", timeout))

	return &HuggingFaceClient{
		Client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(endpoint, "/"),
		backoff:  INITIAL_BACKOFF,
	}
}

func (h *HuggingFaceClient) Classify(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
	var resp models.ClassifyResponse
	if err := h.postJSON(ctx, h.endpoint+"/classify", models.ClassifyRequest{Text: chunk}, &resp); err != nil {
		return models.ClassifierOutput{}, err
	}

	scores := make(map[string]float64, len(resp.Scores))
	for _, s := range resp.Scores {
		scores[s.Label] = s.Score
	}
	if len(scores) == 0 {
		return models.ClassifierOutput{}, fmt.Errorf("[HuggingFaceClient] response carried no label scores")
	}
	return sentiment.OutputFromProbabilities(sentiment.ProbabilitiesFromScores(scores)), nil
}

// HealthCheck reports whether the inference endpoint answers its health route.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint+"/health", nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.Client.Do(req)
	if err != nil {
		slog.Warn("[HuggingFaceClient] Health check failed", slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// DoWithRetry retries transport errors and 5xx responses with exponential
// backoff. newReq is called per attempt so the body can be re-read.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.backoff

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		var req *http.Request
		req, err = newReq()
		if err != nil {
			return nil, err
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if resp != nil {
			resp.Body.Close()
			if err == nil {
				err = fmt.Errorf("status code %d", resp.StatusCode)
			}
			resp = nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	return resp, err
}

func (h *HuggingFaceClient) postJSON(ctx context.Context, endpoint string, input any, output any) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("[HuggingFaceClient] failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	})
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("[HuggingFaceClient] request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("[HuggingFaceClient] failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("[HuggingFaceClient] unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("[HuggingFaceClient] failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
