package engine

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidReading rejects non-finite sample values at the ingest boundary,
// before any store mutation. A NaN or Inf admitted into the window would
// poison the rolling statistics until evicted.
var ErrInvalidReading = errors.New("engine: reading value must be finite")

// Defaults preserved from the tuned deployment; exposed as configuration, not
// re-derived.
const (
	defaultRollingWindow   = 12
	defaultStoreMaxLen     = 500
	defaultAlertLogMaxLen  = 500
	defaultRecentAlertsCap = 200
	defaultZScoreThreshold = 3.0
	defaultSpikeMultiplier = 1.5
	defaultLowUtilization  = 0.15
	defaultHighUtilization = 0.9
	defaultRoomCapacity    = 100

	// snapshotAlertDepth is how many trailing alerts a new subscriber
	// receives with its state event.
	snapshotAlertDepth = 50
)

// Reading is one energy sample. Immutable once created.
type Reading struct {
	Timestamp time.Time `json:"ts"`
	Value     float64   `json:"value"`
}

// OccupancyReading is one occupancy sample. Immutable once created.
type OccupancyReading struct {
	Timestamp time.Time `json:"ts"`
	Count     uint      `json:"count"`
}

// Config carries every tunable the engine honours.
type Config struct {
	RollingWindow   int
	StoreMaxLen     int
	AlertLogMaxLen  int
	RecentAlertsCap int
	ZScoreThreshold float64
	SpikeMultiplier float64
	LowUtilization  float64
	HighUtilization float64
	DefaultCapacity uint
	Capacities      map[string]uint
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		RollingWindow:   defaultRollingWindow,
		StoreMaxLen:     defaultStoreMaxLen,
		AlertLogMaxLen:  defaultAlertLogMaxLen,
		RecentAlertsCap: defaultRecentAlertsCap,
		ZScoreThreshold: defaultZScoreThreshold,
		SpikeMultiplier: defaultSpikeMultiplier,
		LowUtilization:  defaultLowUtilization,
		HighUtilization: defaultHighUtilization,
		DefaultCapacity: defaultRoomCapacity,
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.RollingWindow <= 0 {
		c.RollingWindow = def.RollingWindow
	}
	if c.StoreMaxLen <= 0 {
		c.StoreMaxLen = def.StoreMaxLen
	}
	if c.AlertLogMaxLen <= 0 {
		c.AlertLogMaxLen = def.AlertLogMaxLen
	}
	if c.RecentAlertsCap <= 0 {
		c.RecentAlertsCap = def.RecentAlertsCap
	}
	if c.ZScoreThreshold <= 0 {
		c.ZScoreThreshold = def.ZScoreThreshold
	}
	if c.SpikeMultiplier <= 0 {
		c.SpikeMultiplier = def.SpikeMultiplier
	}
	if c.LowUtilization <= 0 {
		c.LowUtilization = def.LowUtilization
	}
	if c.HighUtilization <= 0 {
		c.HighUtilization = def.HighUtilization
	}
	if c.DefaultCapacity == 0 {
		c.DefaultCapacity = def.DefaultCapacity
	}
}

// Engine owns all analytics state: bounded per-entity histories, the alert
// log, and the subscriber hub. One mutex serialises each
// append→detect→log→publish sequence into a single unit of work, so readers
// and new subscribers only ever observe whole units. The engine assumes no
// particular scheduler or runtime; callers drive it.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	energy    *seriesStore[Reading]
	occupancy *seriesStore[OccupancyReading]
	detector  anomalyDetector
	advisor   utilizationAdvisor
	alerts    *alertLog
	hub       *hub
	logger    zerolog.Logger
}

// New constructs an engine with the given configuration.
func New(cfg Config, logger zerolog.Logger) *Engine {
	cfg.normalize()
	return &Engine{
		cfg:       cfg,
		energy:    newSeriesStore[Reading](cfg.StoreMaxLen),
		occupancy: newSeriesStore[OccupancyReading](cfg.StoreMaxLen),
		detector: anomalyDetector{
			window:      cfg.RollingWindow,
			zThreshold:  cfg.ZScoreThreshold,
			spikeFactor: cfg.SpikeMultiplier,
		},
		advisor: utilizationAdvisor{
			lowFraction:     cfg.LowUtilization,
			highFraction:    cfg.HighUtilization,
			defaultCapacity: cfg.DefaultCapacity,
			capacities:      cfg.Capacities,
		},
		alerts: newAlertLog(cfg.AlertLogMaxLen),
		hub:    newHub(logger),
		logger: logger.With().Str("component", "engine").Logger(),
	}
}

// IngestEnergy appends one energy sample for a building, publishes it, runs
// anomaly detection against the just-updated history, and records/publishes
// at most one resulting alert. The whole sequence is one unit of work.
func (e *Engine) IngestEnergy(buildingID string, ts time.Time, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidReading
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.energy.Append(buildingID, Reading{Timestamp: ts, Value: value})
	e.hub.publishReading(ReadingEvent{
		Kind:      "energy",
		EntityID:  buildingID,
		Timestamp: ts,
		Value:     f64(value),
	})

	sample := e.energy.Recent(buildingID, e.cfg.RollingWindow+1)
	if alert := e.detector.Evaluate(buildingID, e.energy.Len(buildingID), sample); alert != nil {
		e.recordAlert(*alert)
	}
	return nil
}

// IngestOccupancy appends one occupancy sample for a room, publishes it, and
// evaluates the utilization advisory. Always succeeds.
func (e *Engine) IngestOccupancy(roomID string, ts time.Time, count uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := count
	e.occupancy.Append(roomID, OccupancyReading{Timestamp: ts, Count: count})
	e.hub.publishReading(ReadingEvent{
		Kind:      "occupancy",
		EntityID:  roomID,
		Timestamp: ts,
		Count:     &c,
	})

	recent := e.occupancy.Recent(roomID, occupancySpan)
	if alert := e.advisor.Evaluate(roomID, e.occupancy.Len(roomID), recent); alert != nil {
		e.recordAlert(*alert)
	}
}

func (e *Engine) recordAlert(a Alert) {
	e.alerts.Record(a)
	e.logger.Info().
		Str("type", string(a.Kind)).
		Str("entity", a.EntityID).
		Time("ts", a.Timestamp).
		Msg("alert raised")
	e.hub.publishAlert(a)
}

// RecentEnergy returns the retained history for a building, oldest first.
// Unknown buildings yield an empty slice.
func (e *Engine) RecentEnergy(buildingID string) []Reading {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.energy.Recent(buildingID, e.cfg.StoreMaxLen)
}

// RecentOccupancy returns the retained history for a room, oldest first.
func (e *Engine) RecentOccupancy(roomID string) []OccupancyReading {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.occupancy.Recent(roomID, e.cfg.StoreMaxLen)
}

// RecentAlerts returns the last alerts in chronological order. limit values
// outside (0, cap] are clamped to the configured query cap.
func (e *Engine) RecentAlerts(limit int) []Alert {
	if limit <= 0 || limit > e.cfg.RecentAlertsCap {
		limit = e.cfg.RecentAlertsCap
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.Recent(limit)
}

// Subscribe registers sub for future publishes and delivers its state event
// within the same unit of work, so no reading can fall between the snapshot
// and the first live publish, nor be delivered twice.
func (e *Engine) Subscribe(id string, sub Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hub.subscribe(id, sub)
	e.hub.deliverState(subscription{id: id, sub: sub}, e.snapshotLocked())
}

// Unsubscribe removes a subscriber; unknown ids are a no-op.
func (e *Engine) Unsubscribe(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hub.unsubscribe(id)
}

// Snapshot returns a point-in-time copy of both stores and the trailing
// alerts.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Energy:    e.energy.All(),
		Occupancy: e.occupancy.All(),
		Alerts:    e.alerts.Recent(snapshotAlertDepth),
	}
}
