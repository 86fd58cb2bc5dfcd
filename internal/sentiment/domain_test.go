package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdjustForDomain(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pos     int
		neg     int
		wantAdj float64
	}{
		{"no terms", "The quarter was uneventful.", 0, 0, 0},
		{"case insensitive", "We received FDA Approval and a Breakthrough designation.", 2, 0, 0.04},
		{"net negative", "A clinical hold and safety concerns weighed on the quarter. Layoffs followed.", 0, 3, -0.06},
		{"mixed", "Strategic partnership signed despite competitive pressure.", 1, 1, 0},
		{"clamped high", strings.Repeat("breakthrough ", 30), 30, 0, 0.3},
		{"clamped low", strings.Repeat("cash burn ", 40), 0, 40, -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdjustForDomain(tt.text, 0.02, 0.3)
			assert.Equal(t, tt.pos, got.PositiveTerms)
			assert.Equal(t, tt.neg, got.NegativeTerms)
			assert.InDelta(t, tt.wantAdj, got.Adjustment, 1e-9)
		})
	}
}

func TestAdjustForDomainBounded(t *testing.T) {
	terms := append(append([]string{}, biotechPositiveTerms...), biotechNegativeTerms...)
	for n := 0; n < 60; n++ {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(terms[(i*7+n)%len(terms)])
			b.WriteString(". ")
		}
		adj := AdjustForDomain(b.String(), 0.02, 0.3).Adjustment
		assert.LessOrEqual(t, adj, 0.3)
		assert.GreaterOrEqual(t, adj, -0.3)
	}
}
