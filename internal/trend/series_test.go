package trend

import (
	"testing"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSeries(t *testing.T) {
	th := config.DefaultThresholds().Trend

	tests := []struct {
		name      string
		values    []float64
		direction string
		slope     float64
		change    float64
	}{
		{"two quarters improving", []float64{0.45, 0.10}, models.TrendImproving, 0.35, 0.35},
		{"two quarters declining", []float64{0.10, 0.45}, models.TrendDeclining, -0.35, -0.35},
		{"steady climb", []float64{0.3, 0.2, 0.1}, models.TrendImproving, 0.1, 0.15},
		{"small move", []float64{0.12, 0.10}, models.TrendStable, 0.02, 0.02},
		{"slope without change", []float64{0.2, 0.3, 0.0}, models.TrendStable, 0.1, 0.05},
		{"flat", []float64{0.4, 0.4, 0.4, 0.4}, models.TrendStable, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Series(tt.values, th)
			assert.Equal(t, tt.direction, got.Direction)
			assert.InDelta(t, tt.slope, got.Slope, 1e-9)
			assert.InDelta(t, tt.change, got.Change, 1e-9)
			assert.Equal(t, tt.values[0], got.Latest)
		})
	}
}

func TestSeriesStatistics(t *testing.T) {
	got := Series([]float64{0.45, 0.10}, config.DefaultThresholds().Trend)

	assert.InDelta(t, 0.10, got.HistoricalAverage, 1e-9)
	assert.InDelta(t, 0.175, got.StdDev, 1e-9)
	assert.InDelta(t, 0.35/0.185, got.Strength, 1e-9)
}

func TestMeanOfNothing(t *testing.T) {
	assert.Zero(t, mean(nil))
	assert.Zero(t, stdDev(nil))
	assert.Equal(t, models.TrendStable, Series(nil, config.DefaultThresholds().Trend).Direction)
}
