package main

import (
	"fmt"
	"os"

	"github.com/nikolayk812/artistry-cart/internal/config"
	"github.com/nikolayk812/artistry-cart/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("artistry failed")
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "artistry",
		Usage: "cart, wishlist and checkout for the Artistry gallery",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{"ARTISTRY_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "owner",
				Aliases: []string{"o"},
				Usage:   "owner whose cart and wishlist are used",
				Value:   "local",
				EnvVars: []string{"ARTISTRY_OWNER"},
			},
		},
		Commands: []*cli.Command{
			cartCommand(),
			wishlistCommand(),
			checkoutCommand(),
			serveCommand(),
		},
	}
}

// withApp loads the configuration, builds the app and hands it to fn.
func withApp(fn func(c *cli.Context, a *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load(c.String("config"))
		if err != nil {
			return fmt.Errorf("config.Load: %w", err)
		}

		logger, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return fmt.Errorf("logging.New: %w", err)
		}

		a, err := newApp(c.Context, cfg, logger)
		if err != nil {
			return fmt.Errorf("newApp: %w", err)
		}
		defer a.Close()

		return fn(c, a)
	}
}
