// resolve.go
package config

import (
	"math"

	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/machine"
)

// Built-in values used when neither the files nor the overrides set a field.
const (
	DefaultLevels = 10
	DefaultBalls  = 10
	DefaultP      = 0.5
	DefaultSpeed  = 1.0
)

// Overrides carries request or flag values that win over the files.
type Overrides struct {
	Levels *int
	Balls  *int
	P      *float64
	Speed  *float64
}

// Settings is everything needed to start a run.
type Settings struct {
	Board   galton.BoardConfig
	Pacing  machine.Pacing
	Speed   float64
	Version string // effective config version for tracing
}

type Resolver interface {
	// Returns merged RawConfig and the settings after overrides
	Resolve(preset string, o Overrides) (RawConfig, Settings, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → preset → overrides. Override probabilities are
// clamped to [0,1] like an input control would; the rest is validated by the
// machine when the run starts.
func (l *Loader) Resolve(preset string, o Overrides) (RawConfig, Settings, error) {
	raw, err := l.LoadMerged(preset)
	if err != nil {
		return RawConfig{}, Settings{}, err
	}
	return raw, Apply(raw, o), nil
}

// Apply fills defaults and overrides into a merged RawConfig.
func Apply(raw RawConfig, o Overrides) Settings {
	s := Settings{
		Board: galton.BoardConfig{
			Levels:           DefaultLevels,
			BallCount:        DefaultBalls,
			RightProbability: DefaultP,
		},
		Pacing:  machine.DefaultPacing(),
		Speed:   DefaultSpeed,
		Version: raw.Version,
	}

	if raw.Board.Levels != nil {
		s.Board.Levels = *raw.Board.Levels
	}
	if raw.Board.Balls != nil {
		s.Board.BallCount = *raw.Board.Balls
	}
	if raw.Board.P != nil {
		s.Board.RightProbability = *raw.Board.P
	}
	if pc := raw.Pacing; pc != nil {
		if pc.PegDelay != nil {
			s.Pacing.PegDelay = *pc.PegDelay
		}
		if pc.BallDelay != nil {
			s.Pacing.BallDelay = *pc.BallDelay
		}
		if pc.DropDelay != nil {
			s.Pacing.DropDelay = *pc.DropDelay
		}
		if pc.Speed != nil {
			s.Speed = *pc.Speed
		}
	}

	if o.Levels != nil {
		s.Board.Levels = *o.Levels
	}
	if o.Balls != nil {
		s.Board.BallCount = *o.Balls
	}
	if o.P != nil {
		s.Board.RightProbability = ClampProbability(*o.P)
	}
	if o.Speed != nil {
		s.Speed = *o.Speed
	}
	return s
}

// ClampProbability pins p into [0,1]; NaN is left alone for validation to reject.
func ClampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return p
	}
	return math.Min(1, math.Max(0, p))
}
