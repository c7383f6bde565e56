package main

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/cmd"
	"github.com/powledger/powledger/pkg/config"
	"github.com/powledger/powledger/pkg/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "powledger",
		Usage: "Append-only proof-of-work ledger",
		Commands: []*cli.Command{
			cmd.ChainCommand(),
			cmd.RuntimeCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   "./config.yaml",
			},
		},
		Before: func(c *cli.Context) error {
			// Initialize global configuration. Can be accessed later on via config.G()
			cfg, err := config.InitializeGlobalConfig(c.String("config"))
			if err != nil {
				return errors.Wrap(err, "failure to load powledger configuration file")
			}

			// Initialize the global logger. Can be accessed later on via logger.G()
			gLog, err := logger.InitializeGlobalLogger(cfg.Logger)
			if err != nil {
				return errors.Wrap(err, "failure to initialize logger")
			}

			gLog.Debug(
				"Successfully loaded global configuration and logger setup",
				zap.String("environment", cfg.Logger.Environment),
				zap.String("level", cfg.Logger.Level),
			)

			return nil
		},
		After: func(c *cli.Context) error {
			return logger.Sync()
		},
	}

	// Run the app and handle any errors
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("failure while running powledger: %v", err)
	}
}
