package sentiment

import (
	"context"
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
)

// Classifier scores one chunk of text. Implementations may be slow and are
// not assumed to be safe for concurrent use; the Scorer serializes calls.
type Classifier interface {
	Classify(ctx context.Context, chunk string) (models.ClassifierOutput, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, chunk string) (models.ClassifierOutput, error)

func (f ClassifierFunc) Classify(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
	return f(ctx, chunk)
}

// OutputFromProbabilities labels a probability triple with its most likely
// class. Ties resolve to neutral.
func OutputFromProbabilities(p models.Probabilities) models.ClassifierOutput {
	label, top := models.LabelNeutral, p.Neutral
	if p.Positive > top {
		label, top = models.LabelPositive, p.Positive
	}
	if p.Negative > top {
		label = models.LabelNegative
	}
	return models.ClassifierOutput{Label: label, Probabilities: p}
}

// NormalizeLabel maps model-specific label spellings onto the three classes.
func NormalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos":
		return models.LabelPositive
	case "negative", "neg":
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

// ProbabilitiesFromScores folds per-label scores into a probability triple.
func ProbabilitiesFromScores(scores map[string]float64) models.Probabilities {
	var p models.Probabilities
	for label, score := range scores {
		switch NormalizeLabel(label) {
		case models.LabelPositive:
			p.Positive = score
		case models.LabelNegative:
			p.Negative = score
		default:
			p.Neutral = score
		}
	}
	return p
}
