package engine

// alertLog retains every raised alert up to a bounded retention length, with
// the same front-first eviction rule as the series store.
type alertLog struct {
	maxLen int
	alerts []Alert
}

func newAlertLog(maxLen int) *alertLog {
	if maxLen <= 0 {
		maxLen = defaultAlertLogMaxLen
	}
	return &alertLog{maxLen: maxLen}
}

// Record appends an alert, evicting the oldest entries past the bound.
func (l *alertLog) Record(a Alert) {
	l.alerts = append(l.alerts, a)
	if len(l.alerts) > l.maxLen {
		n := copy(l.alerts, l.alerts[len(l.alerts)-l.maxLen:])
		l.alerts = l.alerts[:n]
	}
}

// Recent returns a copy of the last min(limit, len) alerts in chronological
// order.
func (l *alertLog) Recent(limit int) []Alert {
	if limit > len(l.alerts) {
		limit = len(l.alerts)
	}
	if limit <= 0 {
		return []Alert{}
	}
	out := make([]Alert, limit)
	copy(out, l.alerts[len(l.alerts)-limit:])
	return out
}

func (l *alertLog) Len() int {
	return len(l.alerts)
}
