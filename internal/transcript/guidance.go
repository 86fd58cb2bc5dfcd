package transcript

import (
	"regexp"
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
)

const (
	maxGuidanceStatements = 10
	maxGuidanceLength     = 500
	maxGuidanceItems      = 5
	notSpecified          = "Not specified"
)

var guidanceItemRegistry = newRegistry().
	add("financial", `(?i)(?:revenue|sales|earnings).*?(?:expect|guidance|target|project).*?(\$[\d.,]+\s*(?:million|billion|M|B))`).
	add("financial", `(?i)(?:expect|guidance|target|project).*?(?:revenue|sales|earnings).*?(\$[\d.,]+\s*(?:million|billion|M|B))`).
	add("clinical", `(?i)(?:patient enrollment|trial completion|data readout).*?(Q[1-4]|quarter|month).*?(\d{4})`).
	add("regulatory", `(?i)(?:fda|regulatory).*?(?:filing|submission|approval).*?(Q[1-4]|quarter|month).*?(\d{4})`)

var (
	moneyPattern     = regexp.MustCompile(`(?i)\$[\d.,]+\s*(?:million|billion|M|B)`)
	numberPattern    = regexp.MustCompile(`\d+(?:,\d+)*(?:\.\d+)?`)
	timeframePattern = regexp.MustCompile(`(?i)(?:Q[1-4]\s*\d{4}|quarter\s*\d+|month\s*\d+|\d{4})`)
)

// ExtractGuidance returns forward-looking statements, each widened to the
// sentence that contains the match.
func ExtractGuidance(text string) []string {
	var statements []string
	seen := make(map[string]struct{})

	for _, p := range guidanceRegistry.Patterns() {
		for _, loc := range p.Re.FindAllStringIndex(text, -1) {
			start := strings.LastIndex(text[:loc[0]], ".") + 1
			end := len(text)
			if i := strings.Index(text[loc[1]:], "."); i >= 0 {
				end = loc[1] + i
			}

			statement := strings.TrimSpace(text[start:end])
			if statement == "" || len(statement) > maxGuidanceLength {
				continue
			}
			if _, dup := seen[statement]; dup {
				continue
			}
			seen[statement] = struct{}{}
			statements = append(statements, statement)
		}
	}

	if len(statements) > maxGuidanceStatements {
		statements = statements[:maxGuidanceStatements]
	}
	return statements
}

// ExtractGuidanceItems breaks guidance into metric, value, timeframe and
// confidence fields.
func ExtractGuidanceItems(text string) []models.GuidanceItem {
	var items []models.GuidanceItem
	for _, p := range guidanceItemRegistry.Patterns() {
		for _, match := range p.Re.FindAllString(text, -1) {
			items = append(items, models.GuidanceItem{
				Metric:     guidanceMetric(match),
				Value:      guidanceValue(match),
				Timeframe:  guidanceTimeframe(match),
				Confidence: guidanceConfidence(match),
				Statement:  match,
			})
			if len(items) == maxGuidanceItems {
				return items
			}
		}
	}
	return items
}

func guidanceMetric(s string) string {
	lower := strings.ToLower(s)
	switch {
	case ContainsAny(lower, "revenue", "sales"):
		return "revenue"
	case ContainsAny(lower, "earnings", "eps"):
		return "earnings"
	case strings.Contains(lower, "enrollment"):
		return "patient_enrollment"
	case ContainsAny(lower, "approval", "filing"):
		return "regulatory_milestone"
	default:
		return "unknown"
	}
}

func guidanceValue(s string) string {
	if m := moneyPattern.FindString(s); m != "" {
		return m
	}
	if m := numberPattern.FindString(s); m != "" {
		return m
	}
	return notSpecified
}

func guidanceTimeframe(s string) string {
	if m := timeframePattern.FindString(s); m != "" {
		return m
	}
	return notSpecified
}

func guidanceConfidence(s string) string {
	lower := strings.ToLower(s)
	switch {
	case ContainsAny(lower, "confident", "certain", "definitive"):
		return "high"
	case ContainsAny(lower, "expect", "believe", "anticipate"):
		return "medium"
	case ContainsAny(lower, "may", "could", "potential", "possible"):
		return "low"
	default:
		return "medium"
	}
}
