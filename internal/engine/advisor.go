package engine

import "math"

const (
	// occupancySpan is how many trailing counts feed the utilization average.
	occupancySpan = 3

	lowUtilizationSuggestion  = "Consider consolidating small classes or releasing this room"
	highUtilizationSuggestion = "High demand - open overflow or schedule extra slot"
)

// utilizationAdvisor compares a room's short-term average occupancy against
// its configured capacity and raises advisories on under- and over-use.
type utilizationAdvisor struct {
	lowFraction     float64
	highFraction    float64
	defaultCapacity uint
	capacities      map[string]uint
}

func (a utilizationAdvisor) capacityFor(roomID string) uint {
	if c, ok := a.capacities[roomID]; ok && c > 0 {
		return c
	}
	return a.defaultCapacity
}

// Evaluate returns at most one advisory for the newest occupancy reading.
// recent holds the trailing counts, newest last; total is the room's full
// history length. The low check runs first; the thresholds cannot both match.
func (a utilizationAdvisor) Evaluate(roomID string, total int, recent []OccupancyReading) *Alert {
	if total < occupancySpan || len(recent) < occupancySpan {
		return nil
	}
	recent = recent[len(recent)-occupancySpan:]

	sum := 0.0
	for _, r := range recent {
		sum += float64(r.Count)
	}
	avg := sum / float64(len(recent))

	capacity := float64(a.capacityFor(roomID))
	ts := recent[len(recent)-1].Timestamp

	if avg < capacity*a.lowFraction {
		alert := newUtilization(ts, roomID, AlertLowUtilization, math.Round(avg), lowUtilizationSuggestion)
		return &alert
	}
	if avg > capacity*a.highFraction {
		alert := newUtilization(ts, roomID, AlertHighUtilization, math.Round(avg), highUtilizationSuggestion)
		return &alert
	}
	return nil
}
