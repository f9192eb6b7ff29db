package engine

import (
	"testing"
	"time"
)

func testDetector() anomalyDetector {
	return anomalyDetector{window: 12, zThreshold: 3, spikeFactor: 1.5}
}

func energyReadings(values ...float64) []Reading {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := make([]Reading, len(values))
	for i, v := range values {
		out[i] = Reading{Timestamp: base.Add(time.Duration(i) * 5 * time.Second), Value: v}
	}
	return out
}

func TestDetectorInsufficientHistory(t *testing.T) {
	det := testDetector()
	sample := energyReadings(50, 50, 200)
	if alert := det.Evaluate("EnggBlock", 3, sample); alert != nil {
		t.Fatalf("three readings total should never evaluate, got %+v", alert)
	}
}

func TestDetectorRunsFromFourthReading(t *testing.T) {
	det := testDetector()
	sample := energyReadings(50, 50, 50, 200)
	alert := det.Evaluate("EnggBlock", 4, sample)
	if alert == nil {
		t.Fatal("fourth reading over a flat baseline should raise a spike")
	}
	if alert.Kind != AlertEnergySpike {
		t.Fatalf("expected %s, got %s", AlertEnergySpike, alert.Kind)
	}
}

func TestDetectorZeroVarianceSpike(t *testing.T) {
	det := testDetector()

	alert := det.Evaluate("Library", 5, energyReadings(50, 50, 50, 50, 80))
	if alert == nil || alert.Kind != AlertEnergySpike {
		t.Fatalf("80 over flat 50 baseline (threshold 75) must spike, got %+v", alert)
	}
	if *alert.LastValue != 80 {
		t.Fatalf("spike should carry the triggering value, got %v", *alert.LastValue)
	}
	if alert.Note == "" {
		t.Fatal("spike should carry its note")
	}

	if alert := det.Evaluate("Library", 5, energyReadings(50, 50, 50, 50, 70)); alert != nil {
		t.Fatalf("70 is below the 1.5x spike threshold, got %+v", alert)
	}
}

func TestDetectorZScoreAnomaly(t *testing.T) {
	det := testDetector()

	// baseline of six 90s and six 110s: mean 100, population stddev 10
	values := []float64{90, 110, 90, 110, 90, 110, 90, 110, 90, 110, 90, 110, 135}
	alert := det.Evaluate("CSBlock", len(values), energyReadings(values...))
	if alert == nil || alert.Kind != AlertEnergyAnomaly {
		t.Fatalf("z=3.5 must raise an anomaly, got %+v", alert)
	}
	if *alert.ZScore != 3.5 {
		t.Fatalf("z-score should present as 3.50, got %v", *alert.ZScore)
	}
	if *alert.Mean != 100 || *alert.StdDev != 10 {
		t.Fatalf("presented baseline should be mean=100 std=10, got mean=%v std=%v", *alert.Mean, *alert.StdDev)
	}
	if *alert.LastValue != 135 {
		t.Fatalf("alert should carry the triggering value, got %v", *alert.LastValue)
	}
}

func TestDetectorWithinBand(t *testing.T) {
	det := testDetector()

	// z = 2 against mean 100 / std 10
	values := []float64{90, 110, 90, 110, 90, 110, 90, 110, 90, 110, 90, 110, 120}
	if alert := det.Evaluate("CSBlock", len(values), energyReadings(values...)); alert != nil {
		t.Fatalf("|z|=2 is inside the band, got %+v", alert)
	}
}

func TestDetectorNegativeDeviation(t *testing.T) {
	det := testDetector()

	// z = -3.5: deviations below the baseline count too
	values := []float64{90, 110, 90, 110, 90, 110, 90, 110, 90, 110, 90, 110, 65}
	alert := det.Evaluate("Admin", len(values), energyReadings(values...))
	if alert == nil || alert.Kind != AlertEnergyAnomaly {
		t.Fatalf("z=-3.5 must raise an anomaly, got %+v", alert)
	}
	if *alert.ZScore != -3.5 {
		t.Fatalf("z-score should keep its sign, got %v", *alert.ZScore)
	}
}

func TestDetectorDeterminism(t *testing.T) {
	det := testDetector()
	sample := energyReadings(50, 50, 50, 50, 80)

	first := det.Evaluate("EnggBlock", 5, sample)
	second := det.Evaluate("EnggBlock", 5, sample)
	if first == nil || second == nil {
		t.Fatal("identical windows must evaluate identically")
	}
	if first.Kind != second.Kind || *first.LastValue != *second.LastValue || !first.Timestamp.Equal(second.Timestamp) {
		t.Fatalf("detection must be pure over its window: %+v vs %+v", first, second)
	}
}

func TestDetectorBaselineLimitedToWindow(t *testing.T) {
	det := testDetector()
	det.window = 4

	// only the trailing 4 baseline values (all 50) count; the early 1000s
	// must already be outside the window
	values := []float64{1000, 1000, 50, 50, 50, 50, 80}
	alert := det.Evaluate("Hall", len(values), energyReadings(values...))
	if alert == nil || alert.Kind != AlertEnergySpike {
		t.Fatalf("baseline must be capped at the rolling window, got %+v", alert)
	}
}
