package repository_test

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// backend describes a container the integration suites run against and how
// to turn it into an address the store constructors accept.
type backend struct {
	name    string
	run     func(ctx context.Context) (testcontainers.Container, error)
	address func(ctx context.Context, c testcontainers.Container) (string, error)
}

var postgresBackend = backend{
	name: "postgres",
	run: func(ctx context.Context) (testcontainers.Container, error) {
		return postgres.Run(ctx, "postgres:17.6-alpine3.22",
			postgres.BasicWaitStrategies(),
			postgres.WithInitScripts(
				"../../migrations/01_snapshots.up.sql",
				"../../migrations/02_orders.up.sql"),
		)
	},
	address: func(ctx context.Context, c testcontainers.Container) (string, error) {
		return c.(*postgres.PostgresContainer).ConnectionString(ctx, "sslmode=disable")
	},
}

var redisBackend = backend{
	name: "redis",
	run: func(ctx context.Context) (testcontainers.Container, error) {
		return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7.4-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForListeningPort("6379/tcp"),
			},
			Started: true,
		})
	},
	address: func(ctx context.Context, c testcontainers.Container) (string, error) {
		return c.Endpoint(ctx, "")
	},
}

// startContainer runs b and returns the container with its address. The
// container is terminated when either step fails.
func startContainer(ctx context.Context, b backend) (testcontainers.Container, string, error) {
	container, err := b.run(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, "", fmt.Errorf("%s.run: %w", b.name, err)
	}

	addr, err := b.address(ctx, container)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, "", fmt.Errorf("%s.address: %w", b.name, err)
	}

	return container, addr, nil
}
