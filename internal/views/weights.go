package views

import (
	"math"

	"github.com/hxlyu/safegain/internal/models"
)

// Point is one labeled value of the weight trend series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Default Y-axis bounds when no samples exist yet.
const (
	defaultMinY = 40.0
	defaultMaxY = 80.0
)

// Ascending returns a chronologically ascending copy of a most-recent-first
// fetch, preserving the store's tie order within equal dates.
func Ascending(samples []*models.WeightSample) []*models.WeightSample {
	out := make([]*models.WeightSample, len(samples))
	for i, s := range samples {
		out[len(samples)-1-i] = s
	}
	return out
}

// BuildWeightSeries takes samples in ascending date order and returns the
// last n as points labeled with the short month-day form ("MM-DD").
func BuildWeightSeries(samples []*models.WeightSample, n int) []Point {
	if n > 0 && len(samples) > n {
		samples = samples[len(samples)-n:]
	}

	points := make([]Point, 0, len(samples))
	for _, s := range samples {
		label := s.Date
		if len(label) > 5 {
			label = label[5:]
		}
		points = append(points, Point{Label: label, Value: s.Weight})
	}
	return points
}

// WeightAxis derives the chart Y-axis range from the series values. The
// asymmetric padding keeps the line visually stable for the small
// fluctuations typical of an adult weight band.
func WeightAxis(values []float64) (minY, maxY float64) {
	if len(values) == 0 {
		return defaultMinY, defaultMaxY
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	spread := max - min
	minY = math.Max(defaultMinY, min-0.2*spread)
	maxY = min + 1.2*spread + 5
	return minY, maxY
}
