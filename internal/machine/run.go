package machine

import (
	"time"

	"go.uber.org/zap"

	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/loop"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

// Run is one simulation: a config, its expected distribution and the hit
// counts its balls commit. Only callbacks of the run's own timer group
// mutate it.
type Run struct {
	m     *Machine
	group *loop.Group

	ID       string
	Config   galton.BoardConfig
	Expected galton.Distribution
	Hits     *galton.HitCounts

	started  time.Time
	status   Status
	launched int // balls that left the entry peg
	landed   int // balls that reached the bottom row
	retired  int // balls whose landing animation is over
	stats    *galton.Stats
}

func (r *Run) Status() Status { return r.status }

func (r *Run) elapsed() time.Duration { return r.m.loop.Now().Sub(r.started) }

func (r *Run) wait(d time.Duration, fn func()) {
	r.group.After(scale(d, r.m.speed), fn)
}

func (r *Run) intensity(hits int) float64 {
	return float64(hits) / float64(r.Config.BallCount)
}

// launch puts ball on the entry peg, starts its descent and staggers the
// next launch by a random share of BallDelay.
func (r *Run) launch(ball int) {
	w, err := galton.NewWalker(r.Config.Levels, r.Config.RightProbability, r.m.rng)
	if err != nil {
		// config was validated in Start
		r.m.log.Error("walker", zap.String("run", r.ID), zap.Error(err))
		return
	}
	r.launched++
	entry := w.Position()
	hits, err := r.Hits.Increment(entry)
	if err != nil {
		r.m.log.Error("commit", zap.String("run", r.ID), zap.Any("pos", entry), zap.Error(err))
		return
	}
	r.m.obs.Observe(Event{
		Kind:      EventBallLaunched,
		RunID:     r.ID,
		At:        r.elapsed(),
		Ball:      ball,
		Position:  entry,
		Hits:      hits,
		Intensity: r.intensity(hits),
	})

	r.advance(w, ball)

	if next := ball + 1; next < r.Config.BallCount {
		jitter := time.Duration(r.m.rng.Float64() * float64(r.m.pacing.BallDelay))
		r.wait(jitter, func() { r.launch(next) })
	}
}

// advance draws the ball's next row and commits it after PegDelay. The draw
// for the row below happens only once this commit is done.
func (r *Run) advance(w *galton.Walker, ball int) {
	pos, ok := w.Next()
	if !ok {
		r.land(w.Position(), ball)
		return
	}
	r.wait(r.m.pacing.PegDelay, func() {
		hits, err := r.Hits.Increment(pos)
		if err != nil {
			r.m.log.Error("commit", zap.String("run", r.ID), zap.Any("pos", pos), zap.Error(err))
			return
		}
		r.m.obs.Observe(Event{
			Kind:      EventBallMoved,
			RunID:     r.ID,
			At:        r.elapsed(),
			Ball:      ball,
			Position:  pos,
			Hits:      hits,
			Intensity: r.intensity(hits),
		})
		r.advance(w, ball)
	})
}

// land reports the slot the moment the ball reaches it; the ball retires
// after the landing animation.
func (r *Run) land(pos galton.Position, ball int) {
	r.landed++
	slot := pos.Slot()
	count := r.Hits.At(pos)
	drop := scale(r.m.pacing.DropDelay, r.m.speed)
	r.m.obs.Observe(Event{
		Kind:      EventBallLanded,
		RunID:     r.ID,
		At:        r.elapsed(),
		Ball:      ball,
		Position:  pos,
		Slot:      slot,
		SlotCount: count,
		BarHeight: r.Expected.Relative(r.intensity(count)),
		Duration:  drop,
	})
	r.m.log.Debug("ball landed",
		zap.String("run", r.ID),
		zap.Int("ball", ball),
		zap.Int("slot", slot),
		zap.Int("count", count),
	)
	r.group.After(drop, func() {
		r.retired++
		if r.retired == r.Config.BallCount {
			r.finish()
		}
	})
}

func (r *Run) finish() {
	r.status = StatusFinished
	counts := r.Hits.SlotCounts()
	st := galton.Summarize(counts, r.Expected)
	r.stats = &st
	r.m.log.Info("run finished",
		zap.String("run", r.ID),
		zap.Ints("slots", counts),
		zap.Float64("mean", st.Mean),
		zap.Float64("expected_mean", st.ExpectedMean),
		zap.Float64("total_variation", st.TotalVariation),
		zap.Duration("elapsed", r.elapsed()),
	)
	r.m.obs.Observe(Event{
		Kind:  EventRunFinished,
		RunID: r.ID,
		At:    r.elapsed(),
		Stats: r.stats,
	})
}
