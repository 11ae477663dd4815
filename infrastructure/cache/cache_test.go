package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	val, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	val[0] = 'x'
	again, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("v"), again, "callers get a copy")

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	assert.Equal(t, "socialhub:identity:1", NewRedisCache(nil, "socialhub", zap.NewNop()).key("identity:1"))
	assert.Equal(t, "identity:1", NewRedisCache(nil, "", zap.NewNop()).key("identity:1"))
}
