package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds holds every tunable cutoff of the scoring, trend and alert
// stages. None of the defaults come from a fitted model; they are kept as
// named values so they can be recalibrated against outcome data.
type Thresholds struct {
	Sentiment  SentimentThresholds  `yaml:"sentiment"`
	Escalation EscalationThresholds `yaml:"escalation"`
	Trend      TrendThresholds      `yaml:"trend"`
	Alerts     AlertThresholds      `yaml:"alerts"`
}

type SentimentThresholds struct {
	LabelCutoff         float64 `yaml:"label_cutoff"`
	DomainTermWeight    float64 `yaml:"domain_term_weight"`
	MaxDomainAdjustment float64 `yaml:"max_domain_adjustment"`
}

type EscalationThresholds struct {
	OpposingConfidence float64 `yaml:"opposing_confidence"`
	OpposingSentiment  float64 `yaml:"opposing_sentiment"`
	Extreme            float64 `yaml:"extreme"`
	SectionSpread      float64 `yaml:"section_spread"`
}

type TrendThresholds struct {
	ComparisonWindow     int     `yaml:"comparison_window"`
	SlopeCutoff          float64 `yaml:"slope_cutoff"`
	ChangeCutoff         float64 `yaml:"change_cutoff"`
	SentimentWeight      float64 `yaml:"sentiment_weight"`
	ConfidenceWeight     float64 `yaml:"confidence_weight"`
	LevelCutoff          float64 `yaml:"level_cutoff"`
	LevelBonus           float64 `yaml:"level_bonus"`
	LargeChangeCutoff    float64 `yaml:"large_change_cutoff"`
	LargeChangeBonus     float64 `yaml:"large_change_bonus"`
	LanguageMultiplier   float64 `yaml:"language_multiplier"`
	GuidanceChangeCutoff float64 `yaml:"guidance_change_cutoff"`
}

type AlertThresholds struct {
	Significance         float64 `yaml:"significance"`
	HighSeverity         float64 `yaml:"high_severity"`
	SignificantSentiment float64 `yaml:"significant_sentiment"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Sentiment: SentimentThresholds{
			LabelCutoff:         0.1,
			DomainTermWeight:    0.02,
			MaxDomainAdjustment: 0.3,
		},
		Escalation: EscalationThresholds{
			OpposingConfidence: 0.3,
			OpposingSentiment:  0.1,
			Extreme:            0.5,
			SectionSpread:      0.5,
		},
		Trend: TrendThresholds{
			ComparisonWindow:     4,
			SlopeCutoff:          0.05,
			ChangeCutoff:         0.1,
			SentimentWeight:      0.6,
			ConfidenceWeight:     0.4,
			LevelCutoff:          0.3,
			LevelBonus:           0.5,
			LargeChangeCutoff:    0.3,
			LargeChangeBonus:     0.3,
			LanguageMultiplier:   1.5,
			GuidanceChangeCutoff: 0.3,
		},
		Alerts: AlertThresholds{
			Significance:         0.2,
			HighSeverity:         0.5,
			SignificantSentiment: 0.3,
		},
	}
}

// LoadThresholds layers an optional YAML calibration file over the defaults,
// then applies the environment overrides. A missing file is not an error.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return t, fmt.Errorf("[Config] read thresholds: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &t); err != nil {
				return t, fmt.Errorf("[Config] parse thresholds: %w", err)
			}
		}
	}

	t = t.withEnvOverrides()
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Thresholds) withEnvOverrides() Thresholds {
	t.Sentiment.LabelCutoff = getEnvFloat("LABEL_CUTOFF", t.Sentiment.LabelCutoff)
	t.Trend.SlopeCutoff = getEnvFloat("TREND_SLOPE_CUTOFF", t.Trend.SlopeCutoff)
	t.Alerts.Significance = getEnvFloat("SIGNIFICANCE_THRESHOLD", t.Alerts.Significance)
	t.Alerts.HighSeverity = getEnvFloat("HIGH_SEVERITY_THRESHOLD", t.Alerts.HighSeverity)
	return t
}

// WithLookback overrides the trend comparison window, ignoring non-positive values.
func (t Thresholds) WithLookback(quarters int) Thresholds {
	if quarters > 0 {
		t.Trend.ComparisonWindow = quarters
	}
	return t
}

func (t Thresholds) Validate() error {
	if t.Trend.ComparisonWindow < 1 {
		return fmt.Errorf("[Config] trend.comparison_window must be at least 1")
	}
	if t.Trend.SentimentWeight < 0 || t.Trend.ConfidenceWeight < 0 {
		return fmt.Errorf("[Config] trend weights must not be negative")
	}
	if t.Sentiment.MaxDomainAdjustment < 0 || t.Sentiment.MaxDomainAdjustment > 1 {
		return fmt.Errorf("[Config] sentiment.max_domain_adjustment must be within [0, 1]")
	}
	if t.Alerts.Significance <= 0 {
		return fmt.Errorf("[Config] alerts.significance must be positive")
	}
	if t.Alerts.HighSeverity < t.Alerts.Significance {
		return fmt.Errorf("[Config] alerts.high_severity must not be below alerts.significance")
	}
	if t.Trend.LanguageMultiplier <= 0 {
		return fmt.Errorf("[Config] trend.language_multiplier must be positive")
	}
	return nil
}
