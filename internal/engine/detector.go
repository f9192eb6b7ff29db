package engine

import "math"

const (
	// minEnergySamples is the minimum total history before any anomaly
	// evaluation runs.
	minEnergySamples = 4

	spikeNote = "Sudden spike compared to stable baseline"
)

// anomalyDetector evaluates a freshly appended energy reading against its
// building's rolling baseline.
type anomalyDetector struct {
	window      int
	zThreshold  float64
	spikeFactor float64
}

// Evaluate inspects sample, the last window+1 readings for a building with
// the newest one at the tail, and returns at most one alert. total is the
// full history length for the building. The baseline statistics cover the
// window readings preceding the newest sample; the sample itself is compared
// against that baseline, not blended into it, so a spike over a perfectly
// flat baseline is still a distinct signal.
func (d anomalyDetector) Evaluate(buildingID string, total int, sample []Reading) *Alert {
	if total < minEnergySamples || len(sample) < 2 {
		return nil
	}

	last := sample[len(sample)-1]
	baseline := sample[:len(sample)-1]
	if d.window > 0 && len(baseline) > d.window {
		baseline = baseline[len(baseline)-d.window:]
	}

	values := make([]float64, len(baseline))
	for i, r := range baseline {
		values[i] = r.Value
	}
	stats := computeStats(values)

	if stats.StdDev == 0 {
		if last.Value > stats.Mean*d.spikeFactor {
			a := newEnergySpike(last.Timestamp, buildingID, last.Value, spikeNote)
			return &a
		}
		return nil
	}

	z := (last.Value - stats.Mean) / stats.StdDev
	if math.Abs(z) >= d.zThreshold {
		a := newEnergyAnomaly(last.Timestamp, buildingID, z, last.Value, stats.Mean, stats.StdDev)
		return &a
	}
	return nil
}
