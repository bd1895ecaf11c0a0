package machine

import (
	"time"

	"github.com/xtding233/beanmachine/internal/galton"
)

type EventKind string

const (
	EventRunStarted   EventKind = "run_started"
	EventBallLaunched EventKind = "ball_launched"
	EventBallMoved    EventKind = "ball_moved"
	EventBallLanded   EventKind = "ball_landed"
	EventRunFinished  EventKind = "run_finished"
	EventRunCancelled EventKind = "run_cancelled"
)

// Event is what a rendering collaborator needs to draw one change.
// Fields irrelevant to a kind are left zero.
type Event struct {
	Kind  EventKind     `json:"kind"`
	RunID string        `json:"run_id"`
	At    time.Duration `json:"at"` // logical time since the run started

	Ball     int             `json:"ball"`
	Position galton.Position `json:"position"`
	// Hits is the peg's count right after this ball was committed to it.
	Hits int `json:"hits,omitempty"`
	// Intensity is Hits relative to the run's ball count, in [0, 1].
	Intensity float64 `json:"intensity,omitempty"`

	Slot      int `json:"slot"`
	SlotCount int `json:"slot_count,omitempty"`
	// BarHeight is SlotCount/BallCount measured against the expected peak,
	// on the same scale as Distribution.Relative.
	BarHeight float64 `json:"bar_height,omitempty"`
	// Duration of the animation this event starts.
	Duration time.Duration `json:"duration,omitempty"`

	Config   *galton.BoardConfig  `json:"config,omitempty"`
	Expected *galton.Distribution `json:"expected,omitempty"`
	Stats    *galton.Stats        `json:"stats,omitempty"`
}

type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// Observers fans an event out in order.
type Observers []Observer

func (os Observers) Observe(e Event) {
	for _, o := range os {
		o.Observe(e)
	}
}
