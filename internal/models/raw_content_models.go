package models

import (
	"fmt"
	"time"
)

// RawTranscript is an already-fetched transcript as it arrives from the inbox or Kafka.
type RawTranscript struct {
	ContentID string             `json:"content_id"`
	Text      string             `json:"text"`
	Format    string             `json:"format,omitempty"` // "text" or "markdown"
	Metadata  TranscriptMetadata `json:"metadata"`
}

type TranscriptMetadata struct {
	Ticker        string    `json:"ticker" dynamodbav:"ticker"`
	CompanyName   string    `json:"company_name,omitempty" dynamodbav:"company_name,omitempty"`
	FiscalYear    int       `json:"fiscal_year" dynamodbav:"fiscal_year"`
	FiscalQuarter int       `json:"fiscal_quarter" dynamodbav:"fiscal_quarter"`
	CallDate      time.Time `json:"call_date" dynamodbav:"call_date"`
	Source        string    `json:"source,omitempty" dynamodbav:"source,omitempty"`
}

// WithDefaults fills a missing call date with now and derives the fiscal
// period from the call date when it is absent or out of range.
func (m TranscriptMetadata) WithDefaults(now time.Time) TranscriptMetadata {
	if m.CallDate.IsZero() {
		m.CallDate = now
	}
	if m.FiscalYear <= 0 {
		m.FiscalYear = m.CallDate.Year()
	}
	if m.FiscalQuarter < 1 || m.FiscalQuarter > 4 {
		m.FiscalQuarter = (int(m.CallDate.Month())-1)/3 + 1
	}
	return m
}

// PeriodKey identifies a fiscal period, e.g. "2025#Q2". It sorts lexically in period order.
func PeriodKey(year, quarter int) string {
	return fmt.Sprintf("%04d#Q%d", year, quarter)
}

// ProcessedKey is the dedupe key used to skip transcripts that were already ingested.
func (m TranscriptMetadata) ProcessedKey() string {
	return fmt.Sprintf("%s:%d:Q%d", m.Ticker, m.FiscalYear, m.FiscalQuarter)
}
