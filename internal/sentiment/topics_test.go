package sentiment

import (
	"testing"

	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestKeyTopics(t *testing.T) {
	text := "Our Phase 2 trial completed enrollment ahead of plan. Revenue grew strongly this quarter for us. Hi."
	got := KeyTopics(text)

	assert.Equal(t, map[string][]string{
		"clinical_trials":       {"Our Phase 2 trial completed enrollment ahead of plan"},
		"financial_performance": {"Revenue grew strongly this quarter for us"},
	}, got)
}

func TestKeyTopicsCapped(t *testing.T) {
	text := ""
	for range 8 {
		text += "The pivotal trial continues to enroll patients. "
	}
	assert.Len(t, KeyTopics(text)["clinical_trials"], 5)
	assert.Empty(t, KeyTopics("Nothing to see here today."))
}

func TestExtractBiotechInsights(t *testing.T) {
	text := "The Phase 3 trial met its primary endpoint. The FDA accepted our submission. Our cash runway is sufficient into 2027."
	got := ExtractBiotechInsights(text)

	assert.Equal(t, []models.StatusSentence{{Text: "The Phase 3 trial met its primary endpoint", Status: "positive"}}, got.ClinicalTrialStatus)
	assert.Equal(t, []string{"The FDA accepted our submission"}, got.RegulatoryUpdates)
	assert.Empty(t, got.PipelineDevelopments)
	assert.Equal(t, "strong", got.FundingStatus)
}

func TestExtractBiotechInsightsFundingLastWins(t *testing.T) {
	got := ExtractBiotechInsights("We need more capital. Our funding position is strong.")
	assert.Equal(t, "strong", got.FundingStatus)

	got = ExtractBiotechInsights("Our funding position is strong. We need more capital.")
	assert.Equal(t, "concerning", got.FundingStatus)
}

func TestExtractGuidanceChanges(t *testing.T) {
	got := ExtractGuidanceChanges([]string{
		"We raise our revenue guidance to $200 million",
		"Enrollment timeline remains on schedule",
		"We reaffirm our milestone plans",
	})

	assert.Equal(t, "raised", got.RevenueGuidance)
	assert.Equal(t, []string{"Enrollment timeline remains on schedule"}, got.TimelineUpdates)
	assert.Equal(t, []string{"Enrollment timeline remains on schedule"}, got.EnrollmentTarget)
	assert.Equal(t, []string{"We reaffirm our milestone plans"}, got.MilestoneUpdates)

	assert.Equal(t, models.GuidanceChanges{}, ExtractGuidanceChanges(nil))
}
