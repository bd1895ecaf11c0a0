// Package server exposes a bean machine over HTTP and gRPC health.
//
// The machine lives on a loop goroutine; handlers never touch it directly
// but post closures to the loop and wait for them to finish.
package server

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/beanmachine/internal/config"
	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/loop"
	"github.com/xtding233/beanmachine/internal/machine"
)

// ServiceName is the name reported by the health service.
const ServiceName = "beanmachine.v1.BeanMachine"

// Request bounds. Distribution and hit-count storage grow with levels², so
// both are capped here before anything is allocated.
const (
	MaxBatchBalls = 1_000_000
	MaxLevels     = 1000
)

type Server struct {
	loop   *loop.Loop
	mach   *machine.Machine
	loader *config.Loader
	health *health.Server
	log    *zap.Logger
	newRNG func() galton.RandomSource

	defPreset string

	// loop-owned: what the last run was started with, for reloads
	preset    string
	overrides config.Overrides
}

type Deps struct {
	Loop    *loop.Loop
	Machine *machine.Machine
	Loader  *config.Loader
	Logger  *zap.Logger
	// Preset used when a request does not name one.
	Preset string
	// NewRNG seeds /simulate requests without an explicit seed. nil => galton.DefaultRNG.
	NewRNG func() galton.RandomSource
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.NewRNG == nil {
		d.NewRNG = galton.DefaultRNG
	}
	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return &Server{
		loop:   d.Loop,
		mach:   d.Machine,
		loader: d.Loader,
		health: hs,
		log:    d.Logger,
		newRNG: d.NewRNG,

		defPreset: d.Preset,
		preset:    d.Preset,
	}
}

// Health is shared with the gRPC listener.
func (s *Server) Health() *health.Server { return s.health }

// call runs fn on the loop goroutine and waits for it. fn is skipped if ctx
// is already done when the loop gets to it, so an abandoned request never
// changes the machine.
func (s *Server) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	skipped := false
	s.loop.Post(func() {
		defer close(done)
		if ctx.Err() != nil {
			skipped = true
			return
		}
		fn()
	})
	select {
	case <-done:
		if skipped {
			return ctx.Err()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload drops cached config and, if the live run was started from path,
// restarts it with the refreshed files. The old run is cancelled before the
// new one starts.
func (s *Server) Reload(path string) {
	s.loader.Invalidate()
	s.log.Info("config changed", zap.String("path", path))
	path = filepath.Clean(path)
	s.loop.Post(func() {
		if !s.mach.Running() || !s.uses(path) {
			return
		}
		_, settings, err := s.loader.Resolve(s.preset, s.overrides)
		if err != nil {
			s.log.Warn("reload config", zap.Error(err))
			return
		}
		if _, err := s.start(settings); err != nil {
			s.log.Warn("restart after reload", zap.Error(err))
		}
	})
}

// uses reports whether the live run's settings were read from path.
func (s *Server) uses(path string) bool {
	paths := s.loader.Paths()
	if path == filepath.Clean(paths.DefaultPath()) {
		return true
	}
	return s.preset != "" && path == filepath.Clean(paths.PresetPath(s.preset))
}

// start applies settings and starts a run; loop goroutine only.
func (s *Server) start(settings config.Settings) (string, error) {
	if err := settings.Board.Validate(); err != nil {
		return "", err
	}
	if settings.Board.Levels > MaxLevels {
		return "", badParam("levels")
	}
	if settings.Board.BallCount > MaxBatchBalls {
		return "", badParam("balls")
	}
	if err := s.mach.SetPacing(settings.Pacing); err != nil {
		return "", err
	}
	if err := s.mach.SetSpeed(settings.Speed); err != nil {
		return "", err
	}
	return s.mach.Start(settings.Board)
}

// Shutdown flips health to NOT_SERVING.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}
