package machine_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/loop"
	"github.com/xtding233/beanmachine/internal/machine"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
func (c fixedClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.t
	return ch
}

type recorder struct {
	events []machine.Event
}

func (r *recorder) Observe(e machine.Event) { r.events = append(r.events, e) }

func (r *recorder) kind(k machine.EventKind) []machine.Event {
	var out []machine.Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func newMachine(t *testing.T, seed uint64, pacing machine.Pacing) (*loop.Loop, *machine.Machine, *recorder) {
	t.Helper()
	l := loop.New(fixedClock{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	rec := &recorder{}
	ids := 0
	m := machine.New(l,
		machine.WithRandomSource(galton.NewSeededRNG(seed)),
		machine.WithLogger(zaptest.NewLogger(t)),
		machine.WithObserver(rec),
		machine.WithPacing(pacing),
		machine.WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("run-%d", ids)
		}),
	)
	return l, m, rec
}

func TestRunCompletesWithExactCounts(t *testing.T) {
	for _, p := range []float64{0, 0.25, 0.5, 1} {
		for _, balls := range []int{1, 3, 40} {
			l, m, rec := newMachine(t, 5, machine.DefaultPacing())
			cfg := galton.BoardConfig{Levels: 8, BallCount: balls, RightProbability: p}
			if _, err := m.Start(cfg); err != nil {
				t.Fatal(err)
			}
			l.Drain()

			snap, ok := m.Snapshot()
			if !ok || snap.Status != machine.StatusFinished {
				t.Fatalf("status=%v ok=%v", snap.Status, ok)
			}
			sum := 0
			for _, c := range snap.SlotCounts {
				sum += c
			}
			if sum != balls {
				t.Fatalf("p=%v balls=%d: slot sum %d", p, balls, sum)
			}
			for r, row := range snap.Hits {
				total := 0
				for _, c := range row {
					total += c
				}
				if total != balls {
					t.Fatalf("row %d total %d want %d", r, total, balls)
				}
			}
			if p == 0 && snap.SlotCounts[0] != balls {
				t.Fatalf("p=0 slots=%v", snap.SlotCounts)
			}
			if p == 1 && snap.SlotCounts[7] != balls {
				t.Fatalf("p=1 slots=%v", snap.SlotCounts)
			}
			if n := len(rec.kind(machine.EventRunFinished)); n != 1 {
				t.Fatalf("finished events=%d", n)
			}
			if n := len(rec.kind(machine.EventBallLanded)); n != balls {
				t.Fatalf("landed events=%d", n)
			}
			if snap.Stats == nil {
				t.Fatalf("finished run should carry stats")
			}
			if m.Running() {
				t.Fatalf("machine still running after drain")
			}
		}
	}
}

func TestEachBallCommitsRowsInOrder(t *testing.T) {
	l, m, rec := newMachine(t, 17, machine.Pacing{
		PegDelay:  time.Second,
		BallDelay: 300 * time.Millisecond,
		DropDelay: time.Second,
	})
	const levels, balls = 9, 25
	if _, err := m.Start(galton.BoardConfig{Levels: levels, BallCount: balls, RightProbability: 0.5}); err != nil {
		t.Fatal(err)
	}
	l.Drain()

	nextRow := make(map[int]int)
	landed := make(map[int]bool)
	interleaved := false
	for _, e := range rec.events {
		switch e.Kind {
		case machine.EventBallLaunched, machine.EventBallMoved:
			if landed[e.Ball] {
				t.Fatalf("ball %d moved after landing", e.Ball)
			}
			if e.Position.Row != nextRow[e.Ball] {
				t.Fatalf("ball %d committed row %d, expected %d", e.Ball, e.Position.Row, nextRow[e.Ball])
			}
			if !galton.ValidPosition(levels, e.Position) {
				t.Fatalf("invalid position %+v", e.Position)
			}
			if e.Intensity <= 0 || e.Intensity > 1 {
				t.Fatalf("intensity %v out of range", e.Intensity)
			}
			nextRow[e.Ball]++
			if e.Ball > 0 && nextRow[e.Ball-1] < levels {
				interleaved = true
			}
		case machine.EventBallLanded:
			if nextRow[e.Ball] != levels {
				t.Fatalf("ball %d landed after %d rows", e.Ball, nextRow[e.Ball])
			}
			if e.Slot != e.Position.Col/2 {
				t.Fatalf("slot %d for column %d", e.Slot, e.Position.Col)
			}
			landed[e.Ball] = true
		}
	}
	if len(landed) != balls {
		t.Fatalf("landed %d balls", len(landed))
	}
	if !interleaved {
		t.Fatalf("balls were expected to be in flight together")
	}
}

func TestRestartDiscardsInFlightRun(t *testing.T) {
	l, m, rec := newMachine(t, 23, machine.DefaultPacing())
	first, err := m.Start(galton.BoardConfig{Levels: 10, BallCount: 50, RightProbability: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	l.Advance(4500 * time.Millisecond)
	mid, _ := m.Snapshot()
	if mid.Launched == 0 || mid.Retired == mid.Config.BallCount {
		t.Fatalf("expected a run in flight, got %+v", mid)
	}

	second, err := m.Start(galton.BoardConfig{Levels: 6, BallCount: 12, RightProbability: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	fresh, _ := m.Snapshot()
	if fresh.RunID != second || fresh.Status != machine.StatusRunning {
		t.Fatalf("snapshot not of the new run: %+v", fresh)
	}
	for r, row := range fresh.Hits {
		for i, c := range row {
			if c != 0 {
				t.Fatalf("residual count %d at row %d peg %d", c, r, i)
			}
		}
	}
	if len(rec.kind(machine.EventRunCancelled)) != 1 {
		t.Fatalf("old run should be reported cancelled")
	}

	cut := len(rec.events)
	l.Drain()
	for _, e := range rec.events[cut:] {
		if e.RunID == first {
			t.Fatalf("cancelled run emitted %s after restart", e.Kind)
		}
	}
	done, _ := m.Snapshot()
	sum := 0
	for _, c := range done.SlotCounts {
		sum += c
	}
	if sum != 12 || done.Status != machine.StatusFinished {
		t.Fatalf("new run ended with %d balls, status %s", sum, done.Status)
	}
	if l.Pending() != 0 {
		t.Fatalf("timers left behind: %d", l.Pending())
	}
}

func TestCancel(t *testing.T) {
	l, m, rec := newMachine(t, 1, machine.DefaultPacing())
	if err := m.Cancel(); !errors.Is(err, machine.ErrNoRun) {
		t.Fatalf("cancel without run: %v", err)
	}
	if _, err := m.Start(galton.BoardConfig{Levels: 5, BallCount: 5, RightProbability: 0.5}); err != nil {
		t.Fatal(err)
	}
	l.Advance(2 * time.Second)
	if err := m.Cancel(); err != nil {
		t.Fatal(err)
	}
	before := len(rec.events)
	l.Drain()
	if len(rec.events) != before {
		t.Fatalf("events after cancel: %v", rec.events[before:])
	}
	snap, _ := m.Snapshot()
	if snap.Status != machine.StatusCancelled {
		t.Fatalf("status=%s", snap.Status)
	}
	if err := m.Cancel(); !errors.Is(err, machine.ErrNoRun) {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestInvalidConfigLeavesRunAlone(t *testing.T) {
	l, m, _ := newMachine(t, 1, machine.DefaultPacing())
	id, err := m.Start(galton.BoardConfig{Levels: 4, BallCount: 3, RightProbability: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Start(galton.BoardConfig{Levels: 0, BallCount: 3, RightProbability: 0.5})
	if !errors.Is(err, galton.ErrInvalidConfiguration) {
		t.Fatalf("want ErrInvalidConfiguration, got %v", err)
	}
	snap, _ := m.Snapshot()
	if snap.RunID != id || !m.Running() {
		t.Fatalf("invalid start disturbed the live run")
	}
	l.Drain()
}

func TestSpeedScalesWaits(t *testing.T) {
	pacing := machine.Pacing{PegDelay: time.Second, DropDelay: time.Second}
	cfg := galton.BoardConfig{Levels: 5, BallCount: 1, RightProbability: 0.5}

	l, m, rec := newMachine(t, 2, pacing)
	if err := m.SetSpeed(2); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Start(cfg); err != nil {
		t.Fatal(err)
	}
	l.Drain()
	fin := rec.kind(machine.EventRunFinished)
	if len(fin) != 1 || fin[0].At != 2500*time.Millisecond {
		t.Fatalf("finished at %v, want 2.5s", fin)
	}

	// a speed change mid-drop applies from the next suspension point on
	l, m, rec = newMachine(t, 2, pacing)
	if _, err := m.Start(cfg); err != nil {
		t.Fatal(err)
	}
	l.Advance(1500 * time.Millisecond)
	if err := m.SetSpeed(2); err != nil {
		t.Fatal(err)
	}
	l.Drain()
	fin = rec.kind(machine.EventRunFinished)
	if len(fin) != 1 || fin[0].At != 3500*time.Millisecond {
		t.Fatalf("finished at %v, want 3.5s", fin)
	}
}

func TestSetSpeedRejectsBadValues(t *testing.T) {
	_, m, _ := newMachine(t, 1, machine.DefaultPacing())
	for _, v := range []float64{0, -1} {
		if err := m.SetSpeed(v); !errors.Is(err, machine.ErrInvalidSpeed) {
			t.Fatalf("speed %v: %v", v, err)
		}
	}
	if m.Speed() != 1 {
		t.Fatalf("rejected speed changed the machine")
	}
}

func TestSetPacingRejectsNegativeDelays(t *testing.T) {
	_, m, _ := newMachine(t, 1, machine.DefaultPacing())
	for _, p := range []machine.Pacing{
		{PegDelay: -time.Second},
		{BallDelay: -1},
		{DropDelay: -time.Millisecond},
	} {
		if err := m.SetPacing(p); !errors.Is(err, machine.ErrInvalidPacing) {
			t.Fatalf("pacing %+v: %v", p, err)
		}
	}
	if m.Pacing() != machine.DefaultPacing() {
		t.Fatalf("rejected pacing changed the machine: %+v", m.Pacing())
	}
}

func TestSingleLevelBoard(t *testing.T) {
	l, m, rec := newMachine(t, 1, machine.DefaultPacing())
	if _, err := m.Start(galton.BoardConfig{Levels: 1, BallCount: 4, RightProbability: 0.5}); err != nil {
		t.Fatal(err)
	}
	l.Drain()
	snap, _ := m.Snapshot()
	if len(snap.SlotCounts) != 1 || snap.SlotCounts[0] != 4 {
		t.Fatalf("slots=%v", snap.SlotCounts)
	}
	last := rec.kind(machine.EventBallLanded)
	if len(last) != 4 || last[3].SlotCount != 4 {
		t.Fatalf("landed=%v", last)
	}
}
