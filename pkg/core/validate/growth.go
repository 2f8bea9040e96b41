// Package validate provides growth and sanity checks over projected series.
// These are advisory: they annotate reports and never block a calculation.
package validate

import (
	"fmt"
	"math"
)

// =============================================================================
// YEAR-OVER-YEAR (YoY) CALCULATIONS
// =============================================================================

// CalculateYoY returns the fractional change (current - prior) / |prior|.
// ok is false when prior is zero and the change is undefined.
func CalculateYoY(current, prior float64) (change float64, ok bool) {
	if prior == 0 {
		return 0, current == 0
	}
	return (current - prior) / math.Abs(prior), true
}

// SeriesYoY returns the YoY change for each year after the first; entry i compares
// year i+2 with year i+1. Undefined changes are nil.
func SeriesYoY(values []float64) []*float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]*float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if c, ok := CalculateYoY(values[i], values[i-1]); ok {
			out[i-1] = &c
		}
	}
	return out
}

// =============================================================================
// CAGR (Compound Annual Growth Rate)
// =============================================================================

// CalculateCAGR calculates compound annual growth rate as a fraction.
// CAGR = ((EndValue / StartValue) ^ (1/years)) - 1
func CalculateCAGR(startValue, endValue float64, years int) (float64, error) {
	if years <= 0 {
		return 0, fmt.Errorf("cagr needs at least one period, got %d", years)
	}
	if startValue <= 0 || endValue < 0 {
		return 0, fmt.Errorf("cagr undefined from %v to %v", startValue, endValue)
	}
	return math.Pow(endValue/startValue, 1.0/float64(years)) - 1, nil
}

// =============================================================================
// OUTLIER DETECTION
// =============================================================================

// OutlierCheck identifies suspicious year-over-year jumps in a projection.
type OutlierCheck struct {
	Item       string
	Year       int
	Value      float64
	PriorValue float64
	Change     float64
	Reason     string
}

// FindOutliers flags years whose value drops to zero or moves by more than threshold
// (a fraction, e.g. 0.5 for 50%) relative to the prior year.
func FindOutliers(item string, values []float64, threshold float64) []OutlierCheck {
	var out []OutlierCheck
	for i := 1; i < len(values); i++ {
		current, prior := values[i], values[i-1]
		check := OutlierCheck{Item: item, Year: i + 1, Value: current, PriorValue: prior}

		if current == 0 && prior != 0 {
			check.Change = -1
			check.Reason = "drops to zero"
			out = append(out, check)
			continue
		}

		change, ok := CalculateYoY(current, prior)
		if !ok {
			check.Reason = "grows from zero"
			out = append(out, check)
			continue
		}
		if math.Abs(change) > threshold {
			check.Change = change
			check.Reason = fmt.Sprintf("changes %.1f%%, above the %.1f%% threshold", change*100, threshold*100)
			out = append(out, check)
		}
	}
	return out
}
