package transcript

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
)

// Process normalizes raw transcript text and runs every extractor over it.
// It never fails: malformed input yields empty sections and zero counts.
func Process(raw string, meta models.TranscriptMetadata) *models.ProcessedTranscript {
	return ProcessAt(raw, meta, time.Now().UTC())
}

// ProcessAt is Process with an explicit clock for metadata defaults.
func ProcessAt(raw string, meta models.TranscriptMetadata, now time.Time) *models.ProcessedTranscript {
	start := time.Now()
	cleaned := Normalize(raw)

	pt := &models.ProcessedTranscript{
		Metadata:             meta.WithDefaults(now),
		CleanedText:          cleaned,
		Sections:             SplitSections(cleaned),
		WordCount:            len(strings.Fields(cleaned)),
		ConfidenceIndicators: ExtractConfidenceIndicators(cleaned),
		ProductMentions:      ExtractProductMentions(cleaned),
		GuidanceStatements:   ExtractGuidance(cleaned),
		KeyMetrics:           ExtractKeyMetrics(cleaned),
		QuoteCandidates:      ExtractQuoteCandidates(cleaned),
		ExtractedGuidance:    ExtractGuidanceItems(cleaned),
		ProcessedAt:          now,
	}

	slog.Debug("[TranscriptProcessor] Transcript processed",
		slog.String("ticker", pt.Metadata.Ticker),
		slog.Int("fiscal_year", pt.Metadata.FiscalYear),
		slog.Int("fiscal_quarter", pt.Metadata.FiscalQuarter),
		slog.Int("word_count", pt.WordCount),
		slog.Int("products", len(pt.ProductMentions)),
		slog.Int("guidance", len(pt.GuidanceStatements)),
		slog.Duration("elapsed", time.Since(start)))

	return pt
}
