package transcript

import (
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
)

const (
	minQuoteLength = 20
	maxQuoteLength = 300
	maxQuotes      = 10
)

type keywordBucket struct {
	name     string
	keywords []string
}

// buckets are checked in order and the first hit wins
var (
	quoteContexts = []keywordBucket{
		{"financial", []string{"revenue", "sales", "earnings", "financial"}},
		{"clinical", []string{"clinical", "trial", "patient", "study"}},
		{"regulatory", []string{"fda", "regulatory", "approval", "submission"}},
		{"pipeline", []string{"pipeline", "development", "research"}},
	}
	quoteTopics = []keywordBucket{
		{"financial_performance", []string{"revenue", "earnings", "profit", "cash", "expenses"}},
		{"clinical_development", []string{"clinical", "trial", "patient", "efficacy", "safety"}},
		{"regulatory_affairs", []string{"fda", "approval", "submission", "regulatory", "compliance"}},
		{"business_strategy", []string{"partnership", "acquisition", "expansion", "market", "competition"}},
		{"pipeline_progress", []string{"pipeline", "development", "research", "discovery", "candidate"}},
	}
)

// ExtractQuoteCandidates pulls declarative management statements. The
// candidates are unscored; sentiment is attached later by the scorer.
func ExtractQuoteCandidates(text string) []models.QuoteCandidate {
	var quotes []models.QuoteCandidate
	seen := make(map[string]struct{})

	for _, p := range quoteRegistry.Patterns() {
		for _, match := range p.Re.FindAllString(text, -1) {
			quote := strings.TrimSpace(match)
			if len(quote) < minQuoteLength || len(quote) > maxQuoteLength {
				continue
			}
			if _, dup := seen[quote]; dup {
				continue
			}
			seen[quote] = struct{}{}

			quotes = append(quotes, models.QuoteCandidate{
				Text:    quote,
				Context: classify(quote, quoteContexts, "general"),
				Topic:   classify(quote, quoteTopics, "other"),
			})
			if len(quotes) == maxQuotes {
				return quotes
			}
		}
	}
	return quotes
}

func classify(s string, buckets []keywordBucket, fallback string) string {
	lower := strings.ToLower(s)
	for _, b := range buckets {
		if ContainsAny(lower, b.keywords...) {
			return b.name
		}
	}
	return fallback
}
