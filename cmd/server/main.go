package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/beanmachine/internal/config"
	"github.com/xtding233/beanmachine/internal/galton"
	"github.com/xtding233/beanmachine/internal/logging"
	"github.com/xtding233/beanmachine/internal/loop"
	"github.com/xtding233/beanmachine/internal/machine"
	"github.com/xtding233/beanmachine/internal/server"
)

// go build -ldflags "-X main.Version=x.y.z"
var Version string

var (
	flagconf string
	flagdev  bool
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "config dir, overrides BEANMACHINE_CONFIG_DIR")
	flag.BoolVar(&flagdev, "dev", false, "human-readable logs")
}

func main() {
	flag.Parse()

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal(err)
	}
	if flagconf != "" {
		env.ConfigDir = flagconf
	}

	logger, err := logging.New(env.LogLevel, flagdev)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("version", Version))

	if err := run(env, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(env config.Env, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(env.ConfigDir)
	// fail early on a broken config dir instead of on the first request
	if _, err := loader.LoadMerged(env.Preset); err != nil {
		return err
	}

	l := loop.New(loop.WallClock())
	opts := []machine.Option{machine.WithLogger(logger.Named("machine"))}
	if env.Seed != 0 {
		opts = append(opts, machine.WithRandomSource(galton.NewSeededRNG(env.Seed)))
	}
	m := machine.New(l, opts...)

	srv := server.New(server.Deps{
		Loop:    l,
		Machine: m,
		Loader:  loader,
		Logger:  logger.Named("server"),
		Preset:  env.Preset,
	})

	if env.Watch {
		// whole dir: presets named per request are cached too
		paths := []string{loader.Paths().BoardsDir()}
		w := config.NewFileWatcher(paths, srv.Reload, logger.Named("watch"))
		if err := w.Start(); err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.Run(gctx) })
	g.Go(func() error { return srv.ListenAndServe(gctx, env.HTTPAddr) })
	g.Go(func() error { return srv.ListenAndServeGRPC(gctx, env.GRPCAddr) })
	return g.Wait()
}
