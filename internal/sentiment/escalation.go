package sentiment

import (
	"math"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
)

// ShouldEnhance decides whether a result is worth the LLM enhancement pass:
// tone and confidence disagree, either is extreme, or the sections diverge.
func ShouldEnhance(r *models.SentimentResult, th config.EscalationThresholds) bool {
	conf, sent := r.ManagementConfidence, r.OverallSentiment

	if (conf > th.OpposingConfidence && sent < -th.OpposingSentiment) ||
		(conf < -th.OpposingConfidence && sent > th.OpposingSentiment) {
		return true
	}

	if math.Abs(conf) > th.Extreme || math.Abs(sent) > th.Extreme {
		return true
	}

	if len(r.SectionSentiment) == 0 {
		return false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range r.SectionSentiment {
		lo = math.Min(lo, s.Score)
		hi = math.Max(hi, s.Score)
	}
	return hi-lo > th.SectionSpread
}
