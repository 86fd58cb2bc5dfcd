package sentiment

import (
	"context"
	"errors"
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
)

var errClassifierDown = errors.New("classifier unavailable")

func fixedClassifier(out models.ClassifierOutput) Classifier {
	return ClassifierFunc(func(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
		return out, nil
	})
}

func failingClassifier() Classifier {
	return ClassifierFunc(func(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
		return models.ClassifierOutput{}, errClassifierDown
	})
}

// wordClassifier labels a chunk by the first marker word it contains.
func wordClassifier() Classifier {
	return ClassifierFunc(func(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
		switch {
		case strings.Contains(chunk, "fail"):
			return models.ClassifierOutput{}, errClassifierDown
		case strings.Contains(chunk, "good"):
			return models.ClassifierOutput{
				Label:         models.LabelPositive,
				Probabilities: models.Probabilities{Positive: 0.8, Neutral: 0.1, Negative: 0.1},
			}, nil
		case strings.Contains(chunk, "bad"):
			return models.ClassifierOutput{
				Label:         models.LabelNegative,
				Probabilities: models.Probabilities{Positive: 0.2, Neutral: 0.2, Negative: 0.6},
			}, nil
		default:
			return models.ClassifierOutput{
				Label:         models.LabelNeutral,
				Probabilities: models.Probabilities{Positive: 0.05, Neutral: 0.9, Negative: 0.05},
			}, nil
		}
	})
}

type fakeEnhancer struct {
	calls   int
	summary models.AnalysisSummary
	result  *models.Enhancement
	err     error
}

func (f *fakeEnhancer) Enhance(ctx context.Context, excerpt string, summary models.AnalysisSummary) (*models.Enhancement, error) {
	f.calls++
	f.summary = summary
	return f.result, f.err
}

type fakeChat struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeChat) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func (f *fakeChat) ModelName() string { return "gpt-test" }
