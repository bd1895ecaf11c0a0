package machine

import (
	"errors"
	"math"
	"time"
)

var (
	ErrInvalidSpeed  = errors.New("invalid speed; must be a finite number > 0")
	ErrInvalidPacing = errors.New("invalid pacing; delays must be >= 0")
)

// Pacing holds the nominal waits at each suspension point. Every wait is
// divided by the machine's live speed when it is scheduled.
type Pacing struct {
	// between two row transitions of one ball
	PegDelay time.Duration `json:"peg_delay" yaml:"peg_delay"`
	// upper bound of the random stagger between two launches
	BallDelay time.Duration `json:"ball_delay" yaml:"ball_delay"`
	// landing animation in the slot
	DropDelay time.Duration `json:"drop_delay" yaml:"drop_delay"`
}

func DefaultPacing() Pacing {
	return Pacing{
		PegDelay:  time.Second,
		BallDelay: time.Second,
		DropDelay: time.Second,
	}
}

func (p Pacing) Validate() error {
	if p.PegDelay < 0 || p.BallDelay < 0 || p.DropDelay < 0 {
		return ErrInvalidPacing
	}
	return nil
}

func validateSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return ErrInvalidSpeed
	}
	return nil
}

func scale(d time.Duration, speed float64) time.Duration {
	return time.Duration(float64(d) / speed)
}
