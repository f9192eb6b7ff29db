package engine

import "time"

// AlertKind discriminates the closed set of alert variants. The value doubles
// as the wire discriminant (`type` field).
type AlertKind string

const (
	AlertEnergySpike     AlertKind = "energy-spike"
	AlertEnergyAnomaly   AlertKind = "energy-anomaly"
	AlertLowUtilization  AlertKind = "low-utilization"
	AlertHighUtilization AlertKind = "high-utilization"
)

// Alert is an immutable advisory or anomaly emission. Common fields are
// always set; the remainder depends on Kind and is omitted from the wire
// format when unused. Alerts carry no synthetic identity: detection is a
// pure function of its window, so identical windows produce identical
// alerts.
type Alert struct {
	Timestamp time.Time `json:"ts"`
	Kind      AlertKind `json:"type"`
	EntityID  string    `json:"entityId"`

	// energy-anomaly / energy-spike
	ZScore    *float64 `json:"z,omitempty"`
	LastValue *float64 `json:"value,omitempty"`
	Mean      *float64 `json:"mean,omitempty"`
	StdDev    *float64 `json:"std,omitempty"`
	Note      string   `json:"note,omitempty"`

	// low-utilization / high-utilization
	Avg        *float64 `json:"avg,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

func newEnergySpike(ts time.Time, buildingID string, last float64, note string) Alert {
	return Alert{
		Timestamp: ts,
		Kind:      AlertEnergySpike,
		EntityID:  buildingID,
		LastValue: f64(last),
		Note:      note,
	}
}

func newEnergyAnomaly(ts time.Time, buildingID string, z, last, mean, std float64) Alert {
	return Alert{
		Timestamp: ts,
		Kind:      AlertEnergyAnomaly,
		EntityID:  buildingID,
		ZScore:    f64(round2(z)),
		LastValue: f64(last),
		Mean:      f64(round2(mean)),
		StdDev:    f64(round2(std)),
	}
}

func newUtilization(ts time.Time, roomID string, kind AlertKind, avg float64, suggestion string) Alert {
	return Alert{
		Timestamp:  ts,
		Kind:       kind,
		EntityID:   roomID,
		Avg:        f64(avg),
		Suggestion: suggestion,
	}
}

func f64(v float64) *float64 {
	return &v
}
