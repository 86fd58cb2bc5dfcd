package sentiment

import (
	"testing"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestShouldEnhance(t *testing.T) {
	th := config.DefaultThresholds().Escalation
	sections := func(scores ...float64) map[string]models.DocumentScore {
		m := make(map[string]models.DocumentScore, len(scores))
		names := []string{models.SectionPreparedRemarks, models.SectionQA, models.SectionCEO}
		for i, s := range scores {
			m[names[i]] = models.DocumentScore{Score: s}
		}
		return m
	}

	tests := []struct {
		name       string
		sentiment  float64
		confidence float64
		sections   map[string]models.DocumentScore
		want       bool
	}{
		{"calm", 0.1, 0.2, sections(0.1, 0.2), false},
		{"no sections", 0.05, -0.1, nil, false},
		{"confident but negative", -0.2, 0.4, nil, true},
		{"unconfident but positive", 0.2, -0.4, nil, true},
		{"opposing at the boundary", -0.2, 0.3, nil, false},
		{"extreme sentiment", 0.6, 0, nil, true},
		{"extreme confidence", 0, -0.55, nil, true},
		{"sections diverge", 0.05, 0.05, sections(0.3, -0.3), true},
		{"sections close", 0.05, 0.05, sections(0.3, -0.1, 0.2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.SentimentResult{
				OverallSentiment:     tt.sentiment,
				ManagementConfidence: tt.confidence,
				SectionSentiment:     tt.sections,
			}
			assert.Equal(t, tt.want, ShouldEnhance(r, th))
		})
	}
}
