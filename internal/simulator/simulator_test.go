package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"campuswatch/internal/config"
	"campuswatch/internal/engine"
)

func testSimulator(t *testing.T) (*Simulator, *engine.Engine) {
	t.Helper()
	eng := engine.New(engine.DefaultConfig(), zerolog.Nop())
	sim := New(eng, config.SimulatorConfig{
		Seed: 42,
		Buildings: []config.BuildingConfig{
			{ID: "EnggBlock", BaseLoad: 80},
			{ID: "Library", BaseLoad: 30},
		},
		Rooms: []config.RoomConfig{
			{ID: "R101", Capacity: 40},
		},
	}, zerolog.Nop())
	sim.clock = func() time.Time {
		return time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	}
	return sim, eng
}

func TestTickIngestsOneReadingPerEntity(t *testing.T) {
	sim, eng := testSimulator(t)

	if err := sim.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	for _, b := range []string{"EnggBlock", "Library"} {
		if got := eng.RecentEnergy(b); len(got) != 1 {
			t.Fatalf("building %s should hold one reading, got %d", b, len(got))
		}
	}
	if got := eng.RecentOccupancy("R101"); len(got) != 1 {
		t.Fatalf("room should hold one reading, got %d", len(got))
	}
}

func TestGeneratedValuesAreValid(t *testing.T) {
	sim, eng := testSimulator(t)

	for i := 0; i < 50; i++ {
		if err := sim.Tick(context.Background(), time.Now()); err != nil {
			t.Fatalf("tick failed: %v", err)
		}
	}

	for _, r := range eng.RecentEnergy("EnggBlock") {
		if r.Value < 0 {
			t.Fatalf("energy must never go negative, got %v", r.Value)
		}
	}
	// capacity 40 at full day factor caps the mean at 40 plus rounding; a
	// count past capacity+1 means the model drifted
	for _, r := range eng.RecentOccupancy("R101") {
		if r.Count > 41 {
			t.Fatalf("count %d exceeds the room model ceiling", r.Count)
		}
	}
}

func TestTickHonoursCancelledContext(t *testing.T) {
	sim, eng := testSimulator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sim.Tick(ctx, time.Now()); err == nil {
		t.Fatal("cancelled context should stop the tick")
	}
	if got := eng.RecentEnergy("EnggBlock"); len(got) != 0 {
		t.Fatal("cancelled tick must not ingest")
	}
}
