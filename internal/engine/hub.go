package engine

import (
	"time"

	"github.com/rs/zerolog"
)

// ReadingEvent is the wire form of a raw sample published to subscribers.
// Exactly one of Value/Count is set, according to Kind.
type ReadingEvent struct {
	Kind      string    `json:"kind"` // "energy" | "occupancy"
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"ts"`
	Value     *float64  `json:"value,omitempty"`
	Count     *uint     `json:"count,omitempty"`
}

// Snapshot is a consistent point-in-time copy handed to a new subscriber so
// it can reconstruct recent history without a gap.
type Snapshot struct {
	Energy    map[string][]Reading          `json:"energy"`
	Occupancy map[string][]OccupancyReading `json:"occupancy"`
	Alerts    []Alert                       `json:"alerts"`
}

// Subscriber receives the live event feed. Implementations must not block:
// delivery happens inside the engine's unit of work, so anything slow has to
// buffer or drop on its own side.
type Subscriber interface {
	// OnState delivers the one-time snapshot at registration.
	OnState(Snapshot)
	OnReading(ReadingEvent)
	OnAlert(Alert)
}

type subscription struct {
	id  string
	sub Subscriber
}

// hub fans events out to subscribers in registration order. A panicking
// subscriber is isolated so it cannot suppress delivery to the others or
// corrupt engine state.
type hub struct {
	subs   []subscription
	logger zerolog.Logger
}

func newHub(logger zerolog.Logger) *hub {
	return &hub{logger: logger.With().Str("component", "hub").Logger()}
}

func (h *hub) subscribe(id string, sub Subscriber) {
	h.subs = append(h.subs, subscription{id: id, sub: sub})
}

func (h *hub) unsubscribe(id string) {
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

func (h *hub) publishReading(ev ReadingEvent) {
	for _, s := range h.subs {
		h.deliver(s.id, func() { s.sub.OnReading(ev) })
	}
}

func (h *hub) publishAlert(a Alert) {
	for _, s := range h.subs {
		h.deliver(s.id, func() { s.sub.OnAlert(a) })
	}
}

func (h *hub) deliverState(s subscription, snap Snapshot) {
	h.deliver(s.id, func() { s.sub.OnState(snap) })
}

func (h *hub) deliver(id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Warn().Str("subscriber", id).Interface("panic", r).Msg("subscriber delivery failed")
		}
	}()
	fn()
}
