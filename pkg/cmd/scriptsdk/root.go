// Package scriptsdk implements the scriptsdk command line interface.
package scriptsdk

import (
	"fmt"
	"math"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.minekube.com/scriptsdk/pkg/version"
)

// Execute runs App() and calls os.Exit when finished.
func Execute() {
	if err := App().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func App() *cli.App {
	app := cli.NewApp()
	app.Name = "scriptsdk"
	app.Usage = "ScriptSDK bridge for Minecraft Bedrock script APIs."
	app.Description = `The bridge answers ScriptSDK requests of scripts over a websocket
connection: player commands, per-viewer name tags, external server pings
and Discord webhooks.

Visit the website https://github.com/minekube/scriptsdk`
	app.Version = version.String()

	// -v is verbosity, so the version flag uses -V.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	var (
		debug     bool
		verbosity int
	)
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   `config file (default: ./config.yml)`,
			EnvVars: []string{"SCRIPTSDK_CONFIG"},
		},
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Usage:       "Enable debug mode and highest log verbosity",
			Destination: &debug,
			EnvVars:     []string{"SCRIPTSDK_DEBUG"},
		},
		&cli.IntFlag{
			Name:        "verbosity",
			Aliases:     []string{"v"},
			Usage:       "The higher the verbosity the more logs are shown",
			EnvVars:     []string{"SCRIPTSDK_VERBOSITY"},
			Destination: &verbosity,
		},
		cli.VersionFlag,
	}
	app.Before = func(c *cli.Context) error {
		if debug {
			verbosity = math.MaxInt8
		}
		log, err := newLogger(debug, verbosity)
		if err != nil {
			return cli.Exit(fmt.Errorf("error creating zap logger: %w", err), 1)
		}
		c.Context = logr.NewContext(c.Context, log)
		return nil
	}
	app.Action = serveAction
	app.Commands = []*cli.Command{
		serveCommand(),
		configCommand(),
		pingCommand(),
		discordCommand(),
	}
	return app
}

// newLogger returns a new zap logger with a modified production
// or development default config to ensure human readability.
func newLogger(debug bool, v int) (l logr.Logger, err error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
