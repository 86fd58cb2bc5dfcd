package sentiment

import (
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/transcript"
)

const (
	maxTopicSentences   = 5
	minTopicSentenceLen = 20
	maxTopicSentenceLen = 300
	maxInsightEntries   = 3
)

type topicRule struct {
	name     string
	gate     []string
	keywords []string
}

var topicRules = []topicRule{
	{"clinical_trials", []string{"phase", "trial", "study"}, []string{"phase", "trial", "study", "enrollment", "data", "results"}},
	{"financial_performance", []string{"revenue", "earnings"}, []string{"revenue", "earnings", "margin", "growth", "expenses", "cash"}},
	{"regulatory", []string{"fda", "regulatory"}, []string{"fda", "regulatory", "approval", "submission", "clearance"}},
	{"competitive_landscape", []string{"competit", "market"}, []string{"competitive", "market", "competitor", "differentiate"}},
	{"partnerships", []string{"partner", "collaborat"}, []string{"partnership", "collaboration", "alliance", "agreement"}},
}

// KeyTopics buckets sentences by topic. A topic is only considered when its
// gate words occur somewhere in the text; empty topics are omitted.
func KeyTopics(text string) map[string][]string {
	lower := strings.ToLower(text)
	sentences := transcript.Sentences(text)
	topics := make(map[string][]string)

	for _, rule := range topicRules {
		if !transcript.ContainsAny(lower, rule.gate...) {
			continue
		}

		var matched []string
		for _, s := range sentences {
			if len(s) <= minTopicSentenceLen || len(s) >= maxTopicSentenceLen {
				continue
			}
			if transcript.ContainsAny(strings.ToLower(s), rule.keywords...) {
				matched = append(matched, s)
				if len(matched) == maxTopicSentences {
					break
				}
			}
		}
		if len(matched) > 0 {
			topics[rule.name] = matched
		}
	}
	return topics
}

// ExtractBiotechInsights collects clinical, regulatory, pipeline and funding
// signals sentence by sentence.
func ExtractBiotechInsights(text string) models.BiotechInsights {
	var insights models.BiotechInsights

	for _, s := range transcript.Sentences(text) {
		lower := strings.ToLower(s)

		if transcript.ContainsAny(lower, "phase", "trial", "study", "endpoint") {
			switch {
			case transcript.ContainsAny(lower, "complete", "met", "positive", "successful"):
				insights.ClinicalTrialStatus = append(insights.ClinicalTrialStatus, models.StatusSentence{Text: s, Status: "positive"})
			case transcript.ContainsAny(lower, "fail", "miss", "delay", "halt"):
				insights.ClinicalTrialStatus = append(insights.ClinicalTrialStatus, models.StatusSentence{Text: s, Status: "negative"})
			}
		}

		if transcript.ContainsAny(lower, "fda", "regulatory", "approval", "clearance") {
			insights.RegulatoryUpdates = append(insights.RegulatoryUpdates, s)
		}

		if transcript.ContainsAny(lower, "pipeline", "candidate", "development", "discovery") {
			insights.PipelineDevelopments = append(insights.PipelineDevelopments, s)
		}

		if transcript.ContainsAny(lower, "cash runway", "funding", "capital", "burn rate") {
			switch {
			case transcript.ContainsAny(lower, "sufficient", "strong"):
				insights.FundingStatus = "strong"
			case transcript.ContainsAny(lower, "concern", "need"):
				insights.FundingStatus = "concerning"
			}
		}
	}

	insights.ClinicalTrialStatus = firstN(insights.ClinicalTrialStatus, maxInsightEntries)
	insights.RegulatoryUpdates = firstN(insights.RegulatoryUpdates, maxInsightEntries)
	insights.PipelineDevelopments = firstN(insights.PipelineDevelopments, maxInsightEntries)
	return insights
}

// ExtractGuidanceChanges classifies guidance statements into revenue
// direction and timeline, enrollment and milestone updates.
func ExtractGuidanceChanges(statements []string) models.GuidanceChanges {
	var changes models.GuidanceChanges

	for _, statement := range statements {
		lower := strings.ToLower(statement)

		if transcript.ContainsAny(lower, "revenue", "sales", "income") {
			switch {
			case transcript.ContainsAny(lower, "increase", "raise"):
				changes.RevenueGuidance = "raised"
			case transcript.ContainsAny(lower, "decrease", "lower"):
				changes.RevenueGuidance = "lowered"
			case transcript.ContainsAny(lower, "maintain", "reaffirm"):
				changes.RevenueGuidance = "maintained"
			}
		}
		if transcript.ContainsAny(lower, "timeline", "schedule") {
			changes.TimelineUpdates = append(changes.TimelineUpdates, statement)
		}
		if strings.Contains(lower, "enrollment") {
			changes.EnrollmentTarget = append(changes.EnrollmentTarget, statement)
		}
		if strings.Contains(lower, "milestone") {
			changes.MilestoneUpdates = append(changes.MilestoneUpdates, statement)
		}
	}
	return changes
}

func firstN[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
