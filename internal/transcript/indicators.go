package transcript

import (
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
)

const (
	maxSnippetsPerPattern = 5
	confidenceContextPad  = 50
)

// ExtractConfidenceIndicators counts confidence-language matches in the text.
// Neutral matches only widen the denominator of the score.
func ExtractConfidenceIndicators(text string) models.ConfidenceIndicators {
	var ind models.ConfidenceIndicators
	lower := strings.ToLower(text)

	for _, p := range confidenceRegistry.Patterns() {
		locs := p.Re.FindAllStringIndex(lower, -1)
		if len(locs) == 0 {
			continue
		}

		switch p.Category {
		case models.PolarityPositive:
			ind.PositiveCount += len(locs)
		case models.PolarityNegative:
			ind.NegativeCount += len(locs)
		default:
			ind.NeutralCount += len(locs)
			continue
		}

		for i, loc := range locs {
			if i == maxSnippetsPerPattern {
				break
			}
			match := models.PhraseMatch{
				Phrase:   lower[loc[0]:loc[1]],
				Context:  window(lower, loc[0], loc[1], confidenceContextPad),
				Polarity: p.Category,
			}
			if p.Category == models.PolarityPositive {
				ind.PositivePhrases = append(ind.PositivePhrases, match)
			} else {
				ind.NegativePhrases = append(ind.NegativePhrases, match)
			}
		}
	}

	ind.TotalCount = ind.PositiveCount + ind.NegativeCount + ind.NeutralCount
	if ind.TotalCount > 0 {
		ind.Score = float64(ind.PositiveCount-ind.NegativeCount) / float64(ind.TotalCount)
	}
	return ind
}
