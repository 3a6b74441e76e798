package infrastructure

import (
	"context"
	"testing"
	"time"

	"skinvault/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisCache(t *testing.T) *BalanceCache {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping redis test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
			Labels:       map[string]string{"test": "skinvault-cache", "cleanup": "auto"},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "redis")
	require.NoError(t, err)

	cache, err := NewBalanceCache(ctx, endpoint, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestBalanceCache_RedisScriptsHonorVersionFloor(t *testing.T) {
	cache := setupRedisCache(t)
	ctx := context.Background()

	stored, err := cache.Set(ctx, &entities.Balances{AccountID: 11, Standard: 300, Version: 4})
	require.NoError(t, err)
	assert.True(t, stored)

	require.NoError(t, cache.Invalidate(ctx, 11, 5))

	stored, err = cache.Set(ctx, &entities.Balances{AccountID: 11, Standard: 300, Version: 4})
	require.NoError(t, err)
	assert.False(t, stored, "a snapshot older than the committed version is refused")

	miss, err := cache.Get(ctx, 11)
	require.NoError(t, err)
	assert.Nil(t, miss)

	stored, err = cache.Set(ctx, &entities.Balances{AccountID: 11, Standard: 250, Version: 5})
	require.NoError(t, err)
	assert.True(t, stored)

	hit, err := cache.Get(ctx, 11)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, int64(250), hit.Standard)
	assert.Equal(t, int64(5), hit.Version)
}
