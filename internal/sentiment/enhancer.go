package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
)

const MaxEnhancementExcerpt = 4000

const enhancementSystemPrompt = "You are a financial analyst specializing in biotech/medtech earnings calls."

// Enhancer attaches qualitative insight to a scored transcript. It is never
// needed for a correct result.
type Enhancer interface {
	Enhance(ctx context.Context, excerpt string, summary models.AnalysisSummary) (*models.Enhancement, error)
}

// ChatClient sends one system+user exchange to a chat model and returns the reply text.
type ChatClient interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	ModelName() string
}

// OpenAIEnhancer asks a chat model for tone shifts, confidence cues, product
// updates and concerns. The ChatClient is normally clients.OpenAIClient.
type OpenAIEnhancer struct {
	chat ChatClient
	now  func() time.Time
}

func NewOpenAIEnhancer(chat ChatClient) *OpenAIEnhancer {
	return &OpenAIEnhancer{chat: chat, now: time.Now}
}

func (e *OpenAIEnhancer) Enhance(ctx context.Context, excerpt string, summary models.AnalysisSummary) (*models.Enhancement, error) {
	if r := []rune(excerpt); len(r) > MaxEnhancementExcerpt {
		excerpt = string(r[:MaxEnhancementExcerpt])
	}

	reply, err := e.chat.Complete(ctx, enhancementSystemPrompt, buildEnhancementPrompt(excerpt, summary))
	if err != nil {
		return nil, fmt.Errorf("[Enhancer] chat completion failed: %w", err)
	}

	enhancement := parseEnhancement(reply)
	enhancement.Model = e.chat.ModelName()
	enhancement.Timestamp = e.now().UTC()
	return enhancement, nil
}

func buildEnhancementPrompt(excerpt string, summary models.AnalysisSummary) string {
	sections := make([]string, 0, len(summary.SectionSentiment))
	for name, score := range summary.SectionSentiment {
		sections = append(sections, fmt.Sprintf("%s=%.2f", name, score))
	}
	sort.Strings(sections)

	var b strings.Builder
	b.WriteString("As a financial analyst, analyze this earnings call transcript excerpt and provide insights on:\n")
	b.WriteString("1. Key tone shifts or unusual language compared to typical earnings calls\n")
	b.WriteString("2. Specific phrases indicating management confidence or concern\n")
	b.WriteString("3. Notable product/strategy updates for this biotech/medtech company\n")
	b.WriteString("4. Any discrepancies between stated optimism and underlying concerns\n\n")
	b.WriteString("Current analysis shows:\n")
	fmt.Fprintf(&b, "- Overall sentiment: %.2f\n", summary.OverallSentiment)
	fmt.Fprintf(&b, "- Management confidence: %.2f\n", summary.ManagementConfidence)
	fmt.Fprintf(&b, "- Section sentiment: %s\n", strings.Join(sections, ", "))
	fmt.Fprintf(&b, "- Key products mentioned: %d (%s)\n", len(summary.Products), strings.Join(summary.Products, ", "))
	fmt.Fprintf(&b, "- Guidance statements: %d\n\n", summary.GuidanceCount)
	b.WriteString("Transcript excerpt:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nProvide a brief, structured analysis (max 300 words) focusing on actionable insights.\n")
	b.WriteString("Return only valid JSON with the keys: tone_shifts, confidence_indicators, product_updates, concerns. ")
	b.WriteString("Each key holds an array of short strings. No markdown formatting.")
	return b.String()
}

// parseEnhancement reads the model reply as JSON and keeps the raw text as
// free-form analysis when it does not parse.
func parseEnhancement(reply string) *models.Enhancement {
	cleaned := cleanModelResponse(reply)

	var enhancement models.Enhancement
	if err := json.Unmarshal([]byte(cleaned), &enhancement); err != nil {
		return &models.Enhancement{Analysis: strings.TrimSpace(reply)}
	}
	return &enhancement
}

func cleanModelResponse(response string) string {
	response = strings.TrimSpace(response)

	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)

	return strings.TrimSpace(response)
}
