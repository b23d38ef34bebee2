package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/pulse-reader/internal/models"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты кэша поднимают Redis через testcontainers-go.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/cache -v -race -count=1

func startRedis(t *testing.T, ttl time.Duration) ProfileCache {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "6379/tcp")

	cache, err := NewRedisCache(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()), "test:profile:", ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return cache
}

func TestIntegration_ProfileCache_SetGetDelete(t *testing.T) {
	cache := startRedis(t, time.Minute)
	ctx := context.Background()

	now := time.Now().UTC()
	p := &models.Profile{
		UserID:    uuid.New(),
		Mood:      models.SentimentPtr(models.SentimentNegative),
		Blocklist: []string{"war", "crypto"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, ok, err := cache.Get(ctx, p.UserID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, p))

	got, ok, err := cache.Get(ctx, p.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, *p.Mood, *got.Mood)
	require.Equal(t, p.Blocklist, got.Blocklist)
	require.True(t, p.UpdatedAt.Equal(got.UpdatedAt))

	require.NoError(t, cache.Delete(ctx, p.UserID))
	_, ok, err = cache.Get(ctx, p.UserID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIntegration_ProfileCache_NoMood_And_TTL(t *testing.T) {
	cache := startRedis(t, time.Second)
	ctx := context.Background()

	p := &models.Profile{UserID: uuid.New()}
	require.NoError(t, cache.Set(ctx, p))

	got, ok, err := cache.Get(ctx, p.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, got.Mood)
	require.Empty(t, got.Blocklist)

	require.Eventually(t, func() bool {
		_, ok, err := cache.Get(ctx, p.UserID)
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}
