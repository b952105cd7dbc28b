//go:build integration

package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisStore_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := Connect(ctx, RedisConfig{Addr: endpoint})
	require.NoError(t, err)
	defer client.Close()

	s := NewRedisStore(client)

	revoked, err := s.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "s1", time.Second))
	revoked, err = s.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, key("s1")).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Second)

	assert.Eventually(t, func() bool {
		r, err := s.IsRevoked(ctx, "s1")
		return err == nil && !r
	}, 5*time.Second, 100*time.Millisecond)
}
