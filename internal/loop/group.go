package loop

import "time"

// Group ties timers to one owner so they can be dropped together. Once
// cancelled, every pending timer of the group is skipped and After becomes a
// no-op, so stale callbacks never reach state that has moved on.
type Group struct {
	loop      *Loop
	cancelled bool
	pending   int
}

// NewGroup returns a fresh, live group.
func (l *Loop) NewGroup() *Group {
	return &Group{loop: l}
}

// After schedules fn d from the loop's logical time. It reports false if the
// group is already cancelled.
func (g *Group) After(d time.Duration, fn func()) bool {
	if g.cancelled {
		return false
	}
	g.pending++
	g.loop.schedule(g, d, fn)
	return true
}

// Cancel is idempotent.
func (g *Group) Cancel() {
	g.cancelled = true
}

func (g *Group) Cancelled() bool { return g.cancelled }

// Pending counts timers of this group that have not fired or been discarded.
// After Cancel it counts down as the loop discards them.
func (g *Group) Pending() int { return g.pending }
