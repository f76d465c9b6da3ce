package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/artistry-cart/internal/api"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "expose the cart, wishlist and checkout over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides http.addr"},
		},
		Action: withApp(func(c *cli.Context, a *app) error {
			addr := a.cfg.HTTP.Addr
			if c.String("addr") != "" {
				addr = c.String("addr")
			}

			if a.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			router, err := api.NewRouter(api.Deps{
				Registry:   a.registry,
				Downloader: a.downloader,
				Orders:     a.orders,
				Logger:     a.logger,
				Metrics:    a.metrics,
			})
			if err != nil {
				return fmt.Errorf("api.NewRouter: %w", err)
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.WithField("addr", addr).Info("http server started")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("srv.ListenAndServe: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down http server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("srv.Shutdown: %w", err)
			}

			return nil
		}),
	}
}
