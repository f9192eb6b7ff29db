package engine

import (
	"math"
	"testing"
)

func TestComputeStatsPopulationFormulas(t *testing.T) {
	// population variance of this classic set is 4, not the sample 4.57
	stats := computeStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	if stats.Mean != 5 {
		t.Fatalf("mean should be 5, got %v", stats.Mean)
	}
	if stats.Variance != 4 {
		t.Fatalf("variance must divide by N: got %v", stats.Variance)
	}
	if stats.StdDev != 2 {
		t.Fatalf("stddev should be 2, got %v", stats.StdDev)
	}
}

func TestComputeStatsSingleValue(t *testing.T) {
	stats := computeStats([]float64{42})
	if stats.Mean != 42 || stats.Variance != 0 || stats.StdDev != 0 {
		t.Fatalf("single value should be its own mean with zero spread: %+v", stats)
	}
}

func TestComputeStatsZeroVariance(t *testing.T) {
	stats := computeStats([]float64{50, 50, 50, 50})
	if stats.StdDev != 0 {
		t.Fatalf("identical values must yield stddev 0, got %v", stats.StdDev)
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		3.14159: 3.14,
		0.125:   0.13,
		-0.125:  -0.13,
		2:       2,
	}
	for in, want := range cases {
		if got := round2(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("round2(%v) = %v, want %v", in, got, want)
		}
	}
}
