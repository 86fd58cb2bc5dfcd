package sentiment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
)

const (
	maxScoredQuotes = 10
	quoteSpeaker    = "Management"
)

// Analyzer assembles a complete SentimentResult from a processed transcript.
type Analyzer struct {
	scorer     *Scorer
	thresholds config.Thresholds
	enhancer   Enhancer
	now        func() time.Time
}

type AnalyzerOption func(*Analyzer)

// WithEnhancer turns on LLM enhancement for results that ShouldEnhance selects.
func WithEnhancer(e Enhancer) AnalyzerOption {
	return func(a *Analyzer) { a.enhancer = e }
}

func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(scorer *Scorer, thresholds config.Thresholds, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		scorer:     scorer,
		thresholds: thresholds,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze never fails: classifier trouble degrades scores to zero and a
// failed enhancement leaves Enhancement nil.
func (a *Analyzer) Analyze(ctx context.Context, pt *models.ProcessedTranscript) *models.SentimentResult {
	meta := pt.Metadata
	st := a.thresholds.Sentiment

	raw := a.scorer.Score(ctx, pt.CleanedText)
	domain := AdjustForDomain(pt.CleanedText, st.DomainTermWeight, st.MaxDomainAdjustment)
	overall := Clamp(raw.Score+domain.Adjustment, -1, 1)

	result := &models.SentimentResult{
		ID:                   uuid.NewString(),
		CompanyID:            meta.Ticker,
		Period:               models.PeriodKey(meta.FiscalYear, meta.FiscalQuarter),
		FiscalYear:           meta.FiscalYear,
		FiscalQuarter:        meta.FiscalQuarter,
		CallDate:             meta.CallDate,
		OverallSentiment:     overall,
		RawSentiment:         raw.Score,
		BiotechAdjustment:    domain.Adjustment,
		SentimentLabel:       a.scorer.Label(overall),
		SentimentConfidence:  raw.Confidence,
		ManagementConfidence: pt.ConfidenceIndicators.Score,
		GuidanceSentiment:    a.GuidanceSentiment(ctx, pt.GuidanceStatements),
		GuidanceChanges:      ExtractGuidanceChanges(pt.GuidanceStatements),
		SectionSentiment:     a.scorer.ScoreSections(ctx, pt.Sections),
		KeyTopics:            KeyTopics(pt.CleanedText),
		BiotechInsights:      ExtractBiotechInsights(pt.CleanedText),
		ConfidenceIndicators: pt.ConfidenceIndicators,
		ProductMentions:      pt.ProductMentions,
		GuidanceStatements:   pt.GuidanceStatements,
		KeyQuotes:            a.ScoreQuotes(ctx, pt.QuoteCandidates),
		ExtractedGuidance:    pt.ExtractedGuidance,
		WordCount:            pt.WordCount,
		AnalyzedAt:           a.now().UTC(),
	}

	if a.enhancer != nil && ShouldEnhance(result, a.thresholds.Escalation) {
		a.enhance(ctx, pt, result)
	}

	slog.Debug("[SentimentAnalyzer] Transcript analyzed",
		slog.String("company_id", result.CompanyID),
		slog.String("period", result.Period),
		slog.Float64("overall_sentiment", result.OverallSentiment),
		slog.Float64("raw_sentiment", result.RawSentiment),
		slog.Int("positive_terms", domain.PositiveTerms),
		slog.Int("negative_terms", domain.NegativeTerms),
		slog.Bool("enhanced", result.Enhancement != nil))

	return result
}

// GuidanceSentiment is the mean score of the guidance statements, 0 when there are none.
func (a *Analyzer) GuidanceSentiment(ctx context.Context, statements []string) float64 {
	if len(statements) == 0 {
		return 0
	}
	var sum float64
	for _, s := range statements {
		sum += a.scorer.Score(ctx, s).Score
	}
	return sum / float64(len(statements))
}

// ScoreQuotes attaches a sentiment score and speaker to each candidate.
func (a *Analyzer) ScoreQuotes(ctx context.Context, candidates []models.QuoteCandidate) []models.QuoteCandidate {
	candidates = firstN(candidates, maxScoredQuotes)
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]models.QuoteCandidate, 0, len(candidates))
	for _, q := range candidates {
		q.Speaker = quoteSpeaker
		q.SentimentScore = a.scorer.Score(ctx, q.Text).Score
		scored = append(scored, q)
	}
	return scored
}

func (a *Analyzer) enhance(ctx context.Context, pt *models.ProcessedTranscript, result *models.SentimentResult) {
	summary := models.AnalysisSummary{
		OverallSentiment:     result.OverallSentiment,
		ManagementConfidence: result.ManagementConfidence,
		SectionSentiment:     make(map[string]float64, len(result.SectionSentiment)),
		GuidanceCount:        len(result.GuidanceStatements),
	}
	for name, s := range result.SectionSentiment {
		summary.SectionSentiment[name] = s.Score
	}
	for _, p := range firstN(result.ProductMentions, 5) {
		summary.Products = append(summary.Products, p.Name)
	}

	enhancement, err := a.enhancer.Enhance(ctx, pt.CleanedText, summary)
	if err != nil {
		slog.Warn("[SentimentAnalyzer] Enhancement failed, continuing without it",
			slog.String("company_id", result.CompanyID),
			slog.String("error", err.Error()))
		return
	}
	result.Enhancement = enhancement
}
