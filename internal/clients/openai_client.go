package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	openAIMaxAttempts    = 3
	openAIRetryDelay     = 2 * time.Second
	openAITemperature    = 0.3
	openAIMaxTokens      = 500
)

type OpenAIClient struct {
	Client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	)
	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", openAIRequestTimeout),
		slog.String("model", model))

	return &OpenAIClient{Client: client, model: model}, nil
}

func (c *OpenAIClient) ModelName() string {
	return c.model
}

// Complete sends a system and user message and returns the first choice's
// content, retrying failed calls and empty replies.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= openAIMaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(openAIRetryDelay):
			}
		}

		completion, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system),
				openai.UserMessage(prompt),
			}),
			Model:       openai.F(openai.ChatModel(c.model)),
			Temperature: openai.Float(openAITemperature),
			MaxTokens:   openai.Int(openAIMaxTokens),
		})
		if err != nil {
			lastErr = err
			slog.Warn("[OpenAIClient] OpenAI API call failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			continue
		}

		if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
			lastErr = errors.New("empty response")
			slog.Warn("[OpenAIClient] OpenAI returned empty response, retrying",
				slog.Int("attempt", attempt))
			continue
		}

		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("[OpenAIClient] OpenAI failed after %d attempts: %w", openAIMaxAttempts, lastErr)
}
