// Package machine runs paced bean machine simulations on a cooperative loop.
//
// A Machine owns at most one live run. Starting a new run cancels the
// previous one first: its timers are discarded by the loop and the new run
// gets fresh hit counts, so nothing from an aborted run leaks forward.
//
// Every method must be called from the goroutine driving the loop; other
// goroutines go through loop.Post.
package machine

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/loop"
)

var ErrNoRun = errors.New("no simulation run in flight")

type Machine struct {
	loop   *loop.Loop
	rng    galton.RandomSource
	log    *zap.Logger
	obs    Observer
	pacing Pacing
	speed  float64
	newID  func() string

	run *Run
}

type Option func(*Machine)

// WithRandomSource injects the source used for paths and launch jitter.
func WithRandomSource(rng galton.RandomSource) Option {
	return func(m *Machine) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(m *Machine) {
		if obs != nil {
			m.obs = obs
		}
	}
}

func WithPacing(p Pacing) Option {
	return func(m *Machine) { m.pacing = p }
}

func WithIDGenerator(f func() string) Option {
	return func(m *Machine) {
		if f != nil {
			m.newID = f
		}
	}
}

func New(l *loop.Loop, opts ...Option) *Machine {
	m := &Machine{
		loop:   l,
		rng:    galton.DefaultRNG(),
		log:    zap.NewNop(),
		obs:    nopObserver{},
		pacing: DefaultPacing(),
		speed:  1,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start validates cfg and begins a new run, cancelling any run in flight.
// An invalid cfg leaves the current run untouched.
func (m *Machine) Start(cfg galton.BoardConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	expected, err := galton.ExpectedDistribution(cfg.Levels, cfg.RightProbability)
	if err != nil {
		return "", err
	}
	if m.Running() {
		m.cancelRun("restarted")
	}

	r := &Run{
		m:        m,
		ID:       m.newID(),
		Config:   cfg,
		Expected: expected,
		Hits:     galton.NewHitCounts(cfg.Levels),
		group:    m.loop.NewGroup(),
		started:  m.loop.Now(),
		status:   StatusRunning,
	}
	m.run = r
	m.log.Info("run started",
		zap.String("run", r.ID),
		zap.Int("levels", cfg.Levels),
		zap.Int("balls", cfg.BallCount),
		zap.Float64("p", cfg.RightProbability),
		zap.Float64("speed", m.speed),
	)
	m.obs.Observe(Event{
		Kind:     EventRunStarted,
		RunID:    r.ID,
		Config:   &r.Config,
		Expected: &r.Expected,
	})
	r.group.After(0, func() { r.launch(0) })
	return r.ID, nil
}

// Cancel stops the live run. Its partial counts stay readable in the last
// snapshot but no timer of it will fire again.
func (m *Machine) Cancel() error {
	if !m.Running() {
		return ErrNoRun
	}
	m.cancelRun("cancelled")
	return nil
}

func (m *Machine) cancelRun(reason string) {
	r := m.run
	r.group.Cancel()
	r.status = StatusCancelled
	m.log.Info("run cancelled",
		zap.String("run", r.ID),
		zap.String("reason", reason),
		zap.Int("launched", r.launched),
		zap.Int("landed", r.landed),
	)
	m.obs.Observe(Event{Kind: EventRunCancelled, RunID: r.ID, At: r.elapsed(), Ball: r.landed})
}

// SetSpeed changes the pacing factor. It is read at every suspension point,
// so balls already in flight pick it up at their next transition.
func (m *Machine) SetSpeed(speed float64) error {
	if err := validateSpeed(speed); err != nil {
		return err
	}
	m.speed = speed
	m.log.Debug("speed changed", zap.Float64("speed", speed))
	return nil
}

func (m *Machine) Speed() float64 { return m.speed }

func (m *Machine) Pacing() Pacing { return m.pacing }

// SetPacing replaces the nominal delays; like speed it applies from the next
// suspension point on.
func (m *Machine) SetPacing(p Pacing) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.pacing = p
	return nil
}

// Running reports whether a run is in flight.
func (m *Machine) Running() bool {
	return m.run != nil && m.run.status == StatusRunning
}

// Current returns the latest run, live or not.
func (m *Machine) Current() (*Run, bool) {
	return m.run, m.run != nil
}
