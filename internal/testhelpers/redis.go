package testhelpers

import (
	"context"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type RedisContainer struct {
	testcontainers.Container
	Addr string
}

func CreateRedisContainer(ctx context.Context) (*RedisContainer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		return nil, err
	}

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		return nil, err
	}

	return &RedisContainer{Container: container, Addr: addr}, nil
}
