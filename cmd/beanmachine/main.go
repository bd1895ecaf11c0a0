// Command beanmachine runs one bean machine in the terminal, either paced in
// real time or as an unpaced batch, and prints the landing histogram.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/xtding233/beanmachine/internal/config"
	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/logging"
	"github.com/xtding233/beanmachine/internal/loop"
	"github.com/xtding233/beanmachine/internal/machine"
	"github.com/xtding233/beanmachine/internal/render"
)

var (
	confDir = flag.String("conf", "configs", "config dir")
	preset  = flag.String("preset", "", "board preset under <conf>/boards")
	levels  = flag.Int("levels", config.DefaultLevels, "number of peg rows")
	balls   = flag.Int("balls", config.DefaultBalls, "number of balls")
	prob    = flag.Float64("p", config.DefaultP, "probability of deflecting right")
	speed   = flag.Float64("speed", config.DefaultSpeed, "pacing factor; 2 runs twice as fast")
	seed    = flag.Uint64("seed", 0, "seed for a reproducible run; 0 is random")
	batch   = flag.Bool("batch", false, "drop every ball at once, no pacing")
	verbose = flag.Bool("v", false, "print every landing")
	debug   = flag.Bool("debug", false, "debug logging")
)

var landStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

func main() {
	flag.Parse()

	level := "warn"
	if *debug {
		level = "debug"
	}
	logger, err := logging.New(level, true)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	settings, err := resolve()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	var rng galton.RandomSource
	if *seed != 0 {
		rng = galton.NewSeededRNG(*seed)
	}

	if *batch {
		res, err := galton.RunBatch(settings.Board, rng)
		if err != nil {
			logger.Fatal("batch", zap.Error(err))
		}
		fmt.Println(render.Report(res.Config, res.Expected, res.SlotCounts, &res.Stats))
		return
	}

	if err := paced(settings, rng, logger); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}

// resolve layers the config files under the flags the user actually set.
func resolve() (config.Settings, error) {
	var o config.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "levels":
			o.Levels = levels
		case "balls":
			o.Balls = balls
		case "p":
			o.P = prob
		case "speed":
			o.Speed = speed
		}
	})
	_, s, err := config.NewLoader(*confDir).Resolve(*preset, o)
	return s, err
}

func paced(settings config.Settings, rng galton.RandomSource, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopper := machine.ObserverFunc(func(e machine.Event) {
		if e.Kind == machine.EventRunFinished || e.Kind == machine.EventRunCancelled {
			cancel()
		}
	})
	obs := machine.Observers{stopper}
	if *verbose {
		obs = append(obs, machine.ObserverFunc(func(e machine.Event) {
			if e.Kind != machine.EventBallLanded {
				return
			}
			fmt.Println(landStyle.Render(fmt.Sprintf("%8s  ball %d -> slot %d (%d)",
				e.At.Truncate(time.Millisecond), e.Ball, e.Slot, e.SlotCount)))
		}))
	}

	l := loop.New(loop.WallClock())
	opts := []machine.Option{machine.WithLogger(logger), machine.WithObserver(obs)}
	if rng != nil {
		opts = append(opts, machine.WithRandomSource(rng))
	}
	m := machine.New(l, opts...)
	if err := m.SetPacing(settings.Pacing); err != nil {
		return err
	}
	if err := m.SetSpeed(settings.Speed); err != nil {
		return err
	}
	if _, err := m.Start(settings.Board); err != nil {
		return err
	}

	if err := l.Run(ctx); err != nil {
		return err
	}
	if m.Running() {
		// interrupted
		_ = m.Cancel()
	}
	snap, _ := m.Snapshot()
	fmt.Println(render.Report(snap.Config, snap.Expected, snap.SlotCounts, snap.Stats))
	return nil
}
