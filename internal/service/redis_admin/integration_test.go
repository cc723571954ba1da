//go:build integration

package redis_admin_test

import (
	"context"
	"testing"

	redisdb "github.com/ilyadubrovsky/redis-admin/internal/database/redis"
	"github.com/ilyadubrovsky/redis-admin/internal/domain"
	ierrors "github.com/ilyadubrovsky/redis-admin/internal/errors"
	"github.com/ilyadubrovsky/redis-admin/internal/service/redis_admin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flush(t *testing.T) {
	t.Helper()
	require.NoError(t, redisClient.FlushDB(context.Background()).Err())
}

func TestIntegrationScenario(t *testing.T) {
	flush(t)
	ctx := context.Background()
	svc := redis_admin.NewService(redisdb.NewConnFactory(redisClient))

	for k, v := range map[string]string{"x": "1", "y": "2"} {
		ok, err := svc.SetValue(ctx, k, v)
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Equal(t, []string{"x", "y"}, svc.FindKeys(ctx, "*"))

	deleted, err := svc.DeleteKeys(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	present, err := svc.ExistsCount(ctx, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, int64(1), present)

	_, found := svc.Value(ctx, "x")
	assert.False(t, found)

	value, found := svc.Value(ctx, "y")
	assert.True(t, found)
	assert.Equal(t, "2", value)
}

func TestIntegrationDiagnostics(t *testing.T) {
	flush(t)
	ctx := context.Background()
	svc := redis_admin.NewService(redisdb.NewConnFactory(redisClient))

	entries := svc.ServerInfo(ctx)
	require.NotEmpty(t, entries)
	keys := make(map[string]bool, len(entries))
	for _, e := range entries {
		keys[e.Key] = true
	}
	assert.True(t, keys["redis_version"])
	assert.True(t, keys["used_memory"])

	memory, err := svc.MemoryUsage(ctx)
	require.NoError(t, err)
	assert.Greater(t, memory.Value, int64(0))

	_, err = svc.SetValue(ctx, "a", "1")
	require.NoError(t, err)
	size, err := svc.KeyCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size.Value)
}

func TestIntegrationTTL(t *testing.T) {
	flush(t)
	ctx := context.Background()
	svc := redis_admin.NewService(redisdb.NewConnFactory(redisClient))

	_, err := svc.SetValue(ctx, "k", "v")
	require.NoError(t, err)

	ttl, err := svc.RemainingTTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, domain.TTLNoExpiry, ttl)

	ttl, err = svc.RemainingTTL(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, domain.TTLKeyAbsent, ttl)

	applied, err := svc.SetExpiry(ctx, "k", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied)

	ttl, err = svc.RemainingTTL(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, int64(0))
	assert.LessOrEqual(t, ttl, int64(5000))
}

func TestIntegrationWrongType(t *testing.T) {
	flush(t)
	ctx := context.Background()
	svc := redis_admin.NewService(redisdb.NewConnFactory(redisClient))

	require.NoError(t, redisClient.LPush(ctx, "list", "a").Err())

	res := svc.ValueResult(ctx, "list")
	assert.Equal(t, domain.StatusFailed, res.Status())
	assert.Equal(t, ierrors.KindCommand, res.Kind())
}

func TestIntegrationUnreachable(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "localhost:1", MaxRetries: -1})
	defer client.Close()
	svc := redis_admin.NewService(redisdb.NewConnFactory(client))

	assert.Empty(t, svc.ServerInfo(ctx))
	assert.Empty(t, svc.FindKeys(ctx, "*"))
	_, found := svc.Value(ctx, "k")
	assert.False(t, found)

	_, err := svc.MemoryUsage(ctx)
	assert.ErrorIs(t, err, ierrors.ErrConnection)
	_, err = svc.SetValue(ctx, "k", "v")
	assert.ErrorIs(t, err, ierrors.ErrConnection)
}
