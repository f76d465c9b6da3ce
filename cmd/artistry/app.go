package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/artistry-cart/internal/config"
	"github.com/nikolayk812/artistry-cart/internal/download"
	"github.com/nikolayk812/artistry-cart/internal/metrics"
	"github.com/nikolayk812/artistry-cart/internal/port"
	"github.com/nikolayk812/artistry-cart/internal/repository"
	"github.com/nikolayk812/artistry-cart/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// app holds everything built from the configuration.
type app struct {
	cfg        config.Config
	logger     *logrus.Logger
	metrics    *metrics.Metrics
	store      port.SnapshotStore
	orders     port.OrderRepository
	downloader port.Downloader
	registry   *service.Registry

	closers []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *logrus.Logger) (_ *app, err error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	if cfg.Checkout.DownloadDir == "" {
		a.downloader = download.NewNopDownloader()
	} else {
		client := &http.Client{Timeout: cfg.Checkout.DownloadTimeout}
		a.downloader, err = download.NewHTTPDownloader(client, cfg.Checkout.DownloadDir)
		if err != nil {
			return nil, fmt.Errorf("download.NewHTTPDownloader: %w", err)
		}
	}

	cur, err := cfg.Currency()
	if err != nil {
		return nil, err
	}

	a.registry, err = service.NewRegistry(service.RegistryConfig{
		Store:          a.store,
		Currency:       cur,
		RevealInterval: cfg.Cart.RevealInterval,
		IdleTimeout:    cfg.HTTP.SessionIdle,
		Logger:         logger,
		Metrics:        a.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("service.NewRegistry: %w", err)
	}
	a.closers = append(a.closers, a.registry.Close)

	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	log := a.logger.WithField("backend", a.cfg.Store.Backend)

	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		a.store = repository.NewMemoryStore()

	case config.BackendFile:
		store, err := repository.NewFileStore(a.cfg.Store.Dir)
		if err != nil {
			return fmt.Errorf("repository.NewFileStore: %w", err)
		}
		a.store = store

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.Store.DatabaseURL)
		if err != nil {
			return fmt.Errorf("pgxpool.New: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("pool.Ping: %w", err)
		}

		a.store = repository.NewSnapshotStore(pool)
		if a.cfg.Checkout.RecordOrders {
			a.orders = repository.NewOrderRepository(pool)
		}

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.Database,
		})
		a.closers = append(a.closers, func() { _ = client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("client.Ping: %w", err)
		}

		a.store = repository.NewRedisStore(client, a.cfg.Redis.Prefix)

	default:
		return fmt.Errorf("store.backend[%s] is not supported", a.cfg.Store.Backend)
	}

	log.Debug("store opened")

	return nil
}

func (a *app) session(ctx context.Context, ownerID string) (*service.Session, error) {
	return a.registry.Session(ctx, ownerID)
}

// Close releases resources in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
