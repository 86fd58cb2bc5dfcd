package sentiment

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
)

const defaultLabelCutoff = 0.1

// Scorer turns text into a confidence-weighted document score using an
// injected Classifier. The classifier is shared process-wide and every call
// into it holds mu.
type Scorer struct {
	classifier  Classifier
	chunkSize   int
	timeout     time.Duration
	labelCutoff float64

	mu sync.Mutex
}

type ScorerOption func(*Scorer)

func WithChunkSize(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithClassifierTimeout bounds each chunk classification. A chunk that times
// out is dropped like any other failure.
func WithClassifierTimeout(d time.Duration) ScorerOption {
	return func(s *Scorer) { s.timeout = d }
}

func WithLabelCutoff(cutoff float64) ScorerOption {
	return func(s *Scorer) { s.labelCutoff = cutoff }
}

// NewScorer builds a scorer. A nil classifier is allowed and yields neutral zero scores.
func NewScorer(classifier Classifier, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		classifier:  classifier,
		chunkSize:   DefaultChunkSize,
		labelCutoff: defaultLabelCutoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scorer) neutral() models.DocumentScore {
	return models.DocumentScore{Score: 0, Label: models.LabelNeutral, Confidence: 0}
}

// Score classifies every chunk of text and averages the signed chunk scores,
// weighting each by the classifier's confidence in it. Failed chunks are
// left out of the average; if none succeed the result is neutral and zero.
func (s *Scorer) Score(ctx context.Context, text string) models.DocumentScore {
	if s.classifier == nil || strings.TrimSpace(text) == "" {
		return s.neutral()
	}

	var weighted, weights, confidenceSum float64
	scored, failed := 0, 0

	for chunk := range Chunks(text, s.chunkSize) {
		out, err := s.classify(ctx, chunk)
		if err != nil {
			failed++
			slog.Warn("[Scorer] Chunk classification failed, dropping chunk",
				slog.Int("chunk_length", len(chunk)),
				slog.String("error", err.Error()))
			continue
		}

		confidence := out.Top()
		weighted += chunkScore(out) * confidence
		weights += confidence
		confidenceSum += confidence
		scored++
	}

	if scored == 0 {
		if failed > 0 {
			slog.Error("[Scorer] Every chunk failed, degrading to neutral",
				slog.Int("failed_chunks", failed))
		}
		return s.neutral()
	}

	score := 0.0
	if weights > 0 {
		score = Clamp(weighted/weights, -1, 1)
	}

	return models.DocumentScore{
		Score:      score,
		Label:      s.Label(score),
		Confidence: confidenceSum / float64(scored),
	}
}

// ScoreSections scores every non-empty section except the full text.
func (s *Scorer) ScoreSections(ctx context.Context, sections map[string]string) map[string]models.DocumentScore {
	scores := make(map[string]models.DocumentScore, len(sections))
	for name, text := range sections {
		if name == models.SectionFull || strings.TrimSpace(text) == "" {
			continue
		}
		scores[name] = s.Score(ctx, text)
	}
	return scores
}

func (s *Scorer) Label(score float64) string {
	switch {
	case score > s.labelCutoff:
		return models.LabelPositive
	case score < -s.labelCutoff:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

func (s *Scorer) classify(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.classifier.Classify(ctx, chunk)
}

func chunkScore(out models.ClassifierOutput) float64 {
	switch out.Label {
	case models.LabelPositive:
		return out.Probabilities.Positive
	case models.LabelNegative:
		return -out.Probabilities.Negative
	default:
		return 0
	}
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
