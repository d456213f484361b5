//go:build integration

package bbapi_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Accordous/bb-client/pkg/bbapi"
	"github.com/Accordous/bb-client/pkg/testutil"
)

func TestRedisTokenCache(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRedisContainer(ctx, t)
	defer rc.Cleanup(t)

	client := redis.NewClient(&redis.Options{Addr: rc.Addr})
	defer client.Close()

	cache := bbapi.NewRedisTokenCache(client, "")

	_, ok, err := cache.Get(ctx, "token:client-id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "token:client-id", "tok-1", time.Minute))

	got, ok, err := cache.Get(ctx, "token:client-id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", got)

	ttl, err := client.TTL(ctx, bbapi.DefaultRedisPrefix+"token:client-id").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, cache.Delete(ctx, "token:client-id"))
	_, ok, err = cache.Get(ctx, "token:client-id")
	require.NoError(t, err)
	assert.False(t, ok)
}
