package engine

import "math"

// rollingStats summarises a window of samples.
type rollingStats struct {
	Mean     float64
	Variance float64
	StdDev   float64
}

// computeStats returns population statistics (divide by N, not N-1) over
// values. Downstream thresholds were tuned against the population formulas,
// so this choice is load-bearing. values must be non-empty.
func computeStats(values []float64) rollingStats {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return rollingStats{
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
	}
}

// round2 rounds to two decimal places for presentation. Detection thresholds
// always compare unrounded values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
