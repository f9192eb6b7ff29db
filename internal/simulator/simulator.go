package simulator

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"campuswatch/internal/config"
	"campuswatch/internal/engine"
)

const (
	fallbackBaseLoad = 20.0
	fallbackCapacity = 40

	// spikeChance injects the occasional consumption burst so the anomaly
	// detector has something to find.
	spikeChance   = 0.015
	spikeCeiling  = 200.0
	offHoursLoad  = 0.4
	offHoursUsage = 0.12
)

// Simulator produces synthetic readings for a virtual campus and pushes them
// through the engine's ingest boundary, exactly like any external producer
// would.
type Simulator struct {
	engine    *engine.Engine
	buildings []config.BuildingConfig
	rooms     []config.RoomConfig
	rng       *rand.Rand
	clock     func() time.Time
	logger    zerolog.Logger
}

// New constructs a simulator. A seed of 0 derives one from the clock.
func New(eng *engine.Engine, cfg config.SimulatorConfig, logger zerolog.Logger) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		engine:    eng,
		buildings: cfg.Buildings,
		rooms:     cfg.Rooms,
		rng:       rand.New(rand.NewSource(seed)),
		clock:     func() time.Time { return time.Now().UTC() },
		logger:    logger.With().Str("component", "simulator").Logger(),
	}
}

// SetClock overrides the wall clock. Offline runs (export, simulate) use it
// to walk a synthetic timeline.
func (s *Simulator) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Tick emits one reading per building and per room. Satisfies
// scheduler.TickFunc.
func (s *Simulator) Tick(ctx context.Context, now time.Time) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	ts := s.clock()

	for _, b := range s.buildings {
		value := s.energyValue(b, ts)
		if err := s.engine.IngestEnergy(b.ID, ts, value); err != nil {
			s.logger.Error().Err(err).Str("building", b.ID).Msg("energy ingest rejected")
		}
	}

	for _, r := range s.rooms {
		s.engine.IngestOccupancy(r.ID, ts, s.occupancyCount(r, ts))
	}

	return nil
}

// energyValue models base consumption scaled by working hours, a noise band,
// and a rare spike.
func (s *Simulator) energyValue(b config.BuildingConfig, ts time.Time) float64 {
	base := b.BaseLoad
	if base <= 0 {
		base = fallbackBaseLoad
	}

	dayFactor := offHoursLoad
	if hour := ts.Hour(); hour >= 8 && hour <= 18 {
		dayFactor = 1.0
	}

	spike := 0.0
	if s.rng.Float64() < spikeChance {
		spike = s.rng.Float64() * spikeCeiling
	}

	value := base*dayFactor*(0.8+s.rng.Float64()*0.6) + spike
	if value < 0 {
		value = 0
	}
	return math.Round(value*100) / 100
}

// occupancyCount models head counts peaking during teaching hours.
func (s *Simulator) occupancyCount(r config.RoomConfig, ts time.Time) uint {
	capacity := r.Capacity
	if capacity == 0 {
		capacity = fallbackCapacity
	}

	dayFactor := offHoursUsage
	if hour := ts.Hour(); hour >= 9 && hour <= 17 {
		dayFactor = 1.0
	}

	avg := float64(capacity) * (0.2 + s.rng.Float64()*0.8) * dayFactor
	count := math.Round(avg)
	if count < 0 {
		count = 0
	}
	return uint(count)
}
