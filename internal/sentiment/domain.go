package sentiment

import "strings"

var biotechPositiveTerms = []string{
	"breakthrough", "positive results", "exceeded expectations", "ahead of schedule",
	"fda approval", "fast track", "met primary endpoint", "statistically significant",
	"strong enrollment", "positive safety profile", "favorable outcomes", "accelerated approval",
	"promising data", "successful trial", "robust pipeline", "commercial launch",
	"market expansion", "revenue growth", "patent granted", "strategic partnership",
	"licensing agreement", "milestone achieved",
}

var biotechNegativeTerms = []string{
	"failed trial", "missed endpoint", "delayed enrollment", "safety concerns",
	"regulatory setback", "clinical hold", "discontinued", "below expectations",
	"adverse events", "fda rejection", "trial halted", "funding challenges",
	"pipeline setback", "competitive pressure", "patent expiration", "layoffs",
	"restructuring", "cash burn", "going concern", "material weakness",
}

type DomainAdjustment struct {
	Adjustment    float64
	PositiveTerms int
	NegativeTerms int
}

// AdjustForDomain counts biotech-specific terms (case-insensitive,
// non-overlapping) and converts the net count into a bounded score shift.
// |Adjustment| never exceeds maxAdjustment.
func AdjustForDomain(text string, weight, maxAdjustment float64) DomainAdjustment {
	lower := strings.ToLower(text)

	var adj DomainAdjustment
	for _, term := range biotechPositiveTerms {
		adj.PositiveTerms += strings.Count(lower, term)
	}
	for _, term := range biotechNegativeTerms {
		adj.NegativeTerms += strings.Count(lower, term)
	}

	net := float64(adj.PositiveTerms - adj.NegativeTerms)
	adj.Adjustment = Clamp(weight*net, -maxAdjustment, maxAdjustment)
	return adj
}
