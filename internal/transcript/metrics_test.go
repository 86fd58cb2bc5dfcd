package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeyMetrics(t *testing.T) {
	text := "Revenue increased 15% to $200 million. Enrollment in the Phase 3 study completed."

	km := ExtractKeyMetrics(text)

	assert.Equal(t, []string{"Revenue increased 15%"}, km.RevenueMentions)
	assert.Equal(t, []string{"15"}, km.PercentageChanges)
	assert.Equal(t, []string{"$200 million"}, km.DollarAmounts)
	assert.Equal(t, []string{"Phase 3 study complet"}, km.ClinicalMilestones)
}

func TestExtractKeyMetricsEmpty(t *testing.T) {
	km := ExtractKeyMetrics("The weather was mild.")

	assert.Empty(t, km.RevenueMentions)
	assert.Empty(t, km.ClinicalMilestones)
	assert.Empty(t, km.PercentageChanges)
	assert.Empty(t, km.DollarAmounts)
}
