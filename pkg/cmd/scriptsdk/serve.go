package scriptsdk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.minekube.com/scriptsdk/pkg/bridge"
	"go.minekube.com/scriptsdk/pkg/bridge/config"
	"go.minekube.com/scriptsdk/pkg/internal/health"
	"go.minekube.com/scriptsdk/pkg/telemetry"
	"go.minekube.com/scriptsdk/pkg/util/errs"
	"go.minekube.com/scriptsdk/pkg/util/interrupt"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the bridge (default command)",
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	log := logr.FromContextOrDiscard(c.Context)

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if cfg.Debug && !c.Bool("debug") {
		if log, err = newLogger(true, c.Int("verbosity")); err != nil {
			return cli.Exit(fmt.Errorf("error creating zap logger: %w", err), 1)
		}
	}

	warns, errList := cfg.Validate()
	for _, w := range warns {
		log.Info("config validation warn", "warn", w.Error())
	}
	if len(errList) != 0 {
		for _, e := range errList {
			log.Info("config validation error", "error", e.Error())
		}
		return cli.Exit(fmt.Errorf("config validation failed with %d error(s)", len(errList)), 1)
	}

	ctx, stop := interrupt.TerminationContext(logr.NewContext(c.Context, log))
	defer stop()

	cleanup, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return cli.Exit(fmt.Errorf("error initializing telemetry: %w", err), 1)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := cleanup(stopCtx); err != nil {
			log.Error(err, "error flushing telemetry")
		}
	}()

	if err = Serve(ctx, cfg, bridge.NopHost); err != nil {
		return cli.Exit(fmt.Errorf("error running bridge: %w", err), 1)
	}
	log.Info("bridge stopped")
	return nil
}

// loadConfig loads the config file given by the config flag.
// A missing file is only an error if the flag was set explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	v := viper.New()
	path := c.String("config")
	if path == "" {
		path = "config.yml"
	} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", errs.ErrMissingConfig, path)
	}
	v.SetConfigFile(path)
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	return cfg, nil
}

// Serve runs the bridge for host until ctx is canceled.
// It also serves the health probe service if enabled.
func Serve(ctx context.Context, cfg *config.Config, host bridge.Host) error {
	log := logr.FromContextOrDiscard(ctx)

	h, err := bridge.NewHandler(bridge.HandlerOptions{
		Host:   host,
		Logger: log.WithName("bridge"),
		Config: cfg,
	})
	if err != nil {
		return err
	}
	srv := bridge.NewServer(*cfg, h)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		h.Start(ctx)
		return nil
	})
	if cfg.HealthService.Enabled {
		hs, err := health.Listen(cfg.HealthService.Bind, func(context.Context) bool {
			return srv.Listening()
		})
		if err != nil {
			return err
		}
		log.Info("serving health probes", "bind", hs.Addr().String())
		eg.Go(func() error { return hs.Serve(ctx) })
	}
	eg.Go(func() error { return srv.Start(ctx) })
	return eg.Wait()
}
