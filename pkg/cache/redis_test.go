package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	_, hit, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))
	data, hit, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "value", string(data))

	// Stored under the default prefix
	assert.True(t, mr.Exists("canonic:key"))
	assert.Equal(t, time.Minute, mr.TTL("canonic:key"))

	mr.FastForward(2 * time.Minute)
	_, hit, err = c.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, hit, "entry should expire")

	require.NoError(t, c.Set(ctx, "key", []byte("v2"), 0))
	require.NoError(t, c.Delete(ctx, "key"))
	_, hit, _ = c.Get(ctx, "key")
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "key"))
	assert.NoError(t, c.Ping(ctx))
}

func TestRedisCacheOptions(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, WithPrefix("test:"), WithDefaultTTL(time.Hour))

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Hour, mr.TTL("test:k"))
}

func TestRedisCacheJSON(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t)
	key := NewDefaultKeyer().CanonKey(Hash([]byte("graph")), CanonKeyOpts{})

	require.NoError(t, SetJSON(ctx, c, key, map[string]int{"group_size": 8}, TTLCanon))
	var got map[string]int
	require.NoError(t, GetJSON(ctx, c, key, &got))
	assert.Equal(t, 8, got["group_size"])
}
