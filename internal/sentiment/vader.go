package sentiment

import (
	"context"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/earningsflow/internal/models"
)

const vaderLabelCutoff = 0.20

// VaderClassifier is the lexicon fallback used when no transformer model is
// configured. The neg/neu/pos proportions serve as the probability triple and
// the compound score picks the label.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderClassifier) Classify(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
	if err := ctx.Err(); err != nil {
		return models.ClassifierOutput{}, err
	}

	scores := v.analyzer.PolarityScores(chunk)

	label := models.LabelNeutral
	if scores.Compound >= vaderLabelCutoff {
		label = models.LabelPositive
	} else if scores.Compound <= -vaderLabelCutoff {
		label = models.LabelNegative
	}

	return models.ClassifierOutput{
		Label: label,
		Probabilities: models.Probabilities{
			Negative: scores.Negative,
			Neutral:  scores.Neutral,
			Positive: scores.Positive,
		},
	}, nil
}
