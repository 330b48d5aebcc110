package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger.Discard())
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestAside_CachesFetchedValue(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dst *int64) func() error {
		return func() error {
			calls++
			*dst = 42
			return nil
		}
	}

	var first int64
	require.NoError(t, c.Aside(ctx, TotalPostsKey, &first, time.Minute, fetch(&first)))
	var second int64
	require.NoError(t, c.Aside(ctx, TotalPostsKey, &second, time.Minute, fetch(&second)))

	assert.Equal(t, int64(42), first)
	assert.Equal(t, int64(42), second)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(TotalPostsKey))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(TotalPostsKey))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	c, mr := newTestCache(t)

	var v int64
	err := c.Aside(context.Background(), TotalPostsKey, &v, time.Minute, func() error {
		return fmt.Errorf("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists(TotalPostsKey))
}

func TestAside_RedisDownFallsBackToSource(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var v int64
	err := c.Aside(context.Background(), TotalPostsKey, &v, time.Minute, func() error {
		v = 7
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestInvalidate_Pattern(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, TotalPostsKey, 3, time.Minute))
	require.NoError(t, c.SetJSON(ctx, fmt.Sprintf(LatestPostsKey, 5), []string{"a"}, time.Minute))
	require.NoError(t, mr.Set("unrelated", "x"))

	c.Invalidate(ctx, SidebarKeys...)

	assert.False(t, mr.Exists(TotalPostsKey))
	assert.False(t, mr.Exists(fmt.Sprintf(LatestPostsKey, 5)))
	assert.True(t, mr.Exists("unrelated"))
}

func TestDisabledCache(t *testing.T) {
	c, err := New(context.Background(), "", logger.Discard())
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	calls := 0
	var v int
	for i := 0; i < 2; i++ {
		require.NoError(t, c.Aside(context.Background(), "k", &v, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}
