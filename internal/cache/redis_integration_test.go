package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// isDockerAvailable checks if Docker is available for testing.
func isDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.Client().Ping(ctx)
	return err == nil
}

func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	if !isDockerAvailable() {
		t.Skip("docker is not available")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisClientIntegration(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, RedisConfig{Addr: addr, Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.Get(ctx, "hs:missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, client.Set(ctx, "hs:pump", []byte("8413700000"), time.Minute))
	require.NoError(t, client.Set(ctx, "hs:ring", []byte("8409991000"), time.Minute))
	require.NoError(t, client.Set(ctx, "run:1", []byte("x"), time.Minute))

	val, err := client.Get(ctx, "hs:pump")
	require.NoError(t, err)
	assert.Equal(t, "8413700000", string(val))

	n, err := client.Purge(ctx, "hs:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = client.Get(ctx, "hs:ring")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = client.Get(ctx, "run:1")
	assert.NoError(t, err)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
