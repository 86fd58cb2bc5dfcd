package transcript

import "github.com/spacesedan/earningsflow/internal/models"

const (
	maxRevenueMentions   = 5
	maxClinicalMentions  = 5
	maxClinicalLength    = 200
	maxPercentageChanges = 10
	maxDollarAmounts     = 10
)

// ExtractKeyMetrics keeps the raw regex captures for financial and clinical figures.
func ExtractKeyMetrics(text string) models.KeyMetrics {
	var km models.KeyMetrics

	for _, p := range metricRegistry.Patterns() {
		switch p.Category {
		case "revenue":
			km.RevenueMentions = p.Re.FindAllString(text, maxRevenueMentions)
		case "clinical":
			for _, m := range p.Re.FindAllString(text, maxClinicalMentions) {
				km.ClinicalMilestones = append(km.ClinicalMilestones, truncate(m, maxClinicalLength))
			}
		case "percentage":
			for _, m := range p.Re.FindAllStringSubmatch(text, maxPercentageChanges) {
				km.PercentageChanges = append(km.PercentageChanges, m[1])
			}
		case "dollar":
			km.DollarAmounts = p.Re.FindAllString(text, maxDollarAmounts)
		}
	}
	return km
}
