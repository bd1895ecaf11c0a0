// Package loop is a single-threaded cooperative scheduler.
//
// Work is expressed as callbacks scheduled after a delay. Callbacks never run
// concurrently with each other: whoever drives the loop (Run, Drain, Advance
// or Step) executes them one at a time on its own goroutine, in due order with
// ties broken by scheduling order.
//
// The loop keeps its own logical time. Drain and Advance move it forward
// without sleeping, which lets paced work be tested synchronously; Run waits
// on a Clock between timers for real pacing.
//
// Schedule, NewGroup and the Group methods belong to the driving goroutine.
// Other goroutines hand work in with Post.
package loop

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

type Loop struct {
	clock  Clock
	now    time.Time
	seq    uint64
	timers timerHeap
	root   *Group

	mu     sync.Mutex
	posted []func()
	wake   chan struct{}
}

// New creates a loop whose logical time starts at clock.Now().
// nil clock => WallClock.
func New(clock Clock) *Loop {
	if clock == nil {
		clock = WallClock()
	}
	l := &Loop{
		clock: clock,
		now:   clock.Now(),
		wake:  make(chan struct{}, 1),
	}
	l.root = &Group{loop: l}
	return l
}

// Now is the logical time of the callback being executed.
func (l *Loop) Now() time.Time { return l.now }

// After schedules fn d after the current logical time, outside any group.
func (l *Loop) After(d time.Duration, fn func()) {
	l.root.After(d, fn)
}

func (l *Loop) schedule(g *Group, d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	l.seq++
	heap.Push(&l.timers, &timer{due: l.now.Add(d), seq: l.seq, fn: fn, group: g})
}

// Pending counts live timers; cancelled ones are not included.
func (l *Loop) Pending() int {
	n := 0
	for _, t := range l.timers {
		if !t.dead() {
			n++
		}
	}
	return n
}

// Post hands fn to the loop from any goroutine. It runs before the next timer.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) runPosted() int {
	l.mu.Lock()
	fns := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// peek drops cancelled timers off the top and returns the next live one.
func (l *Loop) peek() *timer {
	for len(l.timers) > 0 {
		t := l.timers[0]
		if !t.dead() {
			return t
		}
		heap.Pop(&l.timers)
		t.group.pending--
	}
	return nil
}

func (l *Loop) fire(t *timer) {
	heap.Pop(&l.timers)
	if t.due.After(l.now) {
		l.now = t.due
	}
	t.group.pending--
	t.fn()
}

// Step runs posted work and then the earliest timer, jumping logical time to
// its due time. It reports whether anything ran.
func (l *Loop) Step() bool {
	ran := l.runPosted() > 0
	t := l.peek()
	if t == nil {
		return ran
	}
	l.fire(t)
	return true
}

// Drain runs everything until no live timer is left, including timers
// scheduled along the way. It returns the number of timers fired.
func (l *Loop) Drain() int {
	fired := 0
	for {
		l.runPosted()
		t := l.peek()
		if t == nil {
			return fired
		}
		l.fire(t)
		fired++
	}
}

// Advance fires every timer due within d of the current logical time and then
// sets logical time to exactly now+d.
func (l *Loop) Advance(d time.Duration) int {
	end := l.now.Add(d)
	fired := 0
	for {
		l.runPosted()
		t := l.peek()
		if t == nil || t.due.After(end) {
			break
		}
		l.fire(t)
		fired++
	}
	if end.After(l.now) {
		l.now = end
	}
	return fired
}

// Run drives the loop against the clock until ctx is done. Timers fire when
// the clock reaches their due time; posted work runs as soon as it arrives.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		// logical time follows the clock while Run drives
		if now := l.clock.Now(); now.After(l.now) {
			l.now = now
		}
		if l.runPosted() > 0 {
			continue
		}

		var timeout <-chan time.Time
		if t := l.peek(); t != nil {
			wait := t.due.Sub(l.clock.Now())
			if wait <= 0 {
				l.fire(t)
				continue
			}
			timeout = l.clock.After(wait)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-l.wake:
		case <-timeout:
		}
	}
}
