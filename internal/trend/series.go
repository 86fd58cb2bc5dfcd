package trend

import (
	"math"

	"github.com/spacesedan/earningsflow/config"
	"github.com/spacesedan/earningsflow/internal/models"
)

const strengthEpsilon = 0.01

// Series computes trend statistics for values ordered newest first. It
// expects at least two values.
func Series(values []float64, th config.TrendThresholds) models.SeriesTrend {
	n := len(values)
	if n == 0 {
		return models.SeriesTrend{Direction: models.TrendStable}
	}
	if n == 1 {
		return models.SeriesTrend{Direction: models.TrendStable, Latest: values[0]}
	}

	slope := slope(values)
	histAvg := mean(values[1:])
	change := values[0] - histAvg
	std := stdDev(values)

	direction := models.TrendStable
	switch {
	case slope > th.SlopeCutoff && change > th.ChangeCutoff:
		direction = models.TrendImproving
	case slope < -th.SlopeCutoff && change < -th.ChangeCutoff:
		direction = models.TrendDeclining
	}

	return models.SeriesTrend{
		Direction:         direction,
		Slope:             slope,
		Change:            change,
		Latest:            values[0],
		HistoricalAverage: histAvg,
		StdDev:            std,
		Strength:          math.Abs(slope) / (std + strengthEpsilon),
	}
}

// slope fits a least-squares line over chronological positions. values[i]
// sits at x = n-1-i so the newest value has the largest x.
func slope(values []float64) float64 {
	n := len(values)
	xMean := float64(n-1) / 2
	yMean := mean(values)

	var num, den float64
	for i, y := range values {
		dx := float64(n-1-i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(values)))
}
