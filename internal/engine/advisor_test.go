package engine

import (
	"testing"
	"time"
)

func testAdvisor() utilizationAdvisor {
	return utilizationAdvisor{
		lowFraction:     0.15,
		highFraction:    0.9,
		defaultCapacity: 100,
		capacities:      map[string]uint{"R101": 40},
	}
}

func occupancyReadings(counts ...uint) []OccupancyReading {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := make([]OccupancyReading, len(counts))
	for i, c := range counts {
		out[i] = OccupancyReading{Timestamp: base.Add(time.Duration(i) * 5 * time.Second), Count: c}
	}
	return out
}

func TestAdvisorInsufficientHistory(t *testing.T) {
	adv := testAdvisor()
	if alert := adv.Evaluate("R101", 2, occupancyReadings(1, 1)); alert != nil {
		t.Fatalf("fewer than three readings should never advise, got %+v", alert)
	}
}

func TestAdvisorLowUtilization(t *testing.T) {
	adv := testAdvisor()

	alert := adv.Evaluate("R101", 3, occupancyReadings(2, 3, 4))
	if alert == nil || alert.Kind != AlertLowUtilization {
		t.Fatalf("avg 3 against capacity 40 (floor 6) must advise low, got %+v", alert)
	}
	if *alert.Avg != 3 {
		t.Fatalf("avg should round to 3, got %v", *alert.Avg)
	}
	if alert.Suggestion != lowUtilizationSuggestion {
		t.Fatalf("unexpected suggestion %q", alert.Suggestion)
	}
}

func TestAdvisorHighUtilization(t *testing.T) {
	adv := testAdvisor()

	alert := adv.Evaluate("R101", 3, occupancyReadings(38, 39, 40))
	if alert == nil || alert.Kind != AlertHighUtilization {
		t.Fatalf("avg 39 against capacity 40 (ceiling 36) must advise high, got %+v", alert)
	}
	if *alert.Avg != 39 {
		t.Fatalf("avg should round to 39, got %v", *alert.Avg)
	}
	if alert.Suggestion != highUtilizationSuggestion {
		t.Fatalf("unexpected suggestion %q", alert.Suggestion)
	}
}

func TestAdvisorHealthyBand(t *testing.T) {
	adv := testAdvisor()
	if alert := adv.Evaluate("R101", 3, occupancyReadings(20, 20, 20)); alert != nil {
		t.Fatalf("avg 20 sits inside the healthy band, got %+v", alert)
	}
}

func TestAdvisorDefaultCapacity(t *testing.T) {
	adv := testAdvisor()

	// unknown room falls back to capacity 100, so floor is 15
	alert := adv.Evaluate("Unmapped", 3, occupancyReadings(5, 5, 5))
	if alert == nil || alert.Kind != AlertLowUtilization {
		t.Fatalf("unknown room should use the default capacity, got %+v", alert)
	}
}

func TestAdvisorUsesTrailingThree(t *testing.T) {
	adv := testAdvisor()

	// older counts must not dilute the trailing average
	alert := adv.Evaluate("R101", 5, occupancyReadings(40, 40, 2, 3, 4))
	if alert == nil || alert.Kind != AlertLowUtilization {
		t.Fatalf("only the last three counts feed the average, got %+v", alert)
	}
}
