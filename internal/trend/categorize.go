package trend

import (
	"math"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
)

// scoreEpsilon absorbs float rounding when weights are summed, so 0.6+0.3
// and 0.4+0.5 count as a tie.
const scoreEpsilon = 1e-9

// Categorize combines the two series into one trend category. It is a pure
// function of its inputs. A category has to beat both others outright,
// otherwise the result is stable.
func Categorize(sent, conf models.SeriesTrend, latestSentiment, latestConfidence float64, th config.TrendThresholds) string {
	scores := map[string]float64{
		models.TrendImproving: 0,
		models.TrendStable:    0,
		models.TrendDeclining: 0,
	}
	scores[directionBucket(sent.Direction)] += th.SentimentWeight
	scores[directionBucket(conf.Direction)] += th.ConfidenceWeight

	switch {
	case latestSentiment < -th.LevelCutoff && latestConfidence < -th.LevelCutoff:
		scores[models.TrendDeclining] += th.LevelBonus
	case latestSentiment > th.LevelCutoff && latestConfidence > th.LevelCutoff:
		scores[models.TrendImproving] += th.LevelBonus
	}

	if math.Abs(sent.Change) > th.LargeChangeCutoff || math.Abs(conf.Change) > th.LargeChangeCutoff {
		dominant := sent.Change
		if math.Abs(conf.Change) > math.Abs(sent.Change) {
			dominant = conf.Change
		}
		if dominant > 0 {
			scores[models.TrendImproving] += th.LargeChangeBonus
		} else {
			scores[models.TrendDeclining] += th.LargeChangeBonus
		}
	}

	for _, category := range []string{models.TrendImproving, models.TrendDeclining} {
		beatsAll := true
		for other, score := range scores {
			if other != category && scores[category]-score <= scoreEpsilon {
				beatsAll = false
			}
		}
		if beatsAll {
			return category
		}
	}
	return models.TrendStable
}

func directionBucket(direction string) string {
	switch direction {
	case models.TrendImproving, models.TrendDeclining:
		return direction
	default:
		return models.TrendStable
	}
}
