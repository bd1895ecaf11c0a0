package loop

import "time"

// Clock is the wall-time dependency of Run. Drain and Advance never consult it.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time                         { return time.Now() }
func (wallClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// WallClock is the real clock.
func WallClock() Clock { return wallClock{} }
