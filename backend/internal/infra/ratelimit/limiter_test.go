package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "search:203.0.113.7", Key("search", " 203.0.113.7 "))
	assert.Equal(t, "import:anonymous", Key("import", ""))
}

func TestMemoryLimiterFixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "search:ip", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	now = now.Add(20 * time.Second)
	res, err := limiter.Allow(ctx, "search:ip", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 40*time.Second, res.RetryAfter)

	now = now.Add(41 * time.Second)
	res, err = limiter.Allow(ctx, "search:ip", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "a new window starts after expiry")
}

func TestMemoryLimiterUnlimited(t *testing.T) {
	res, err := NewMemoryLimiter().Allow(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, -1, res.Remaining)
}

func TestRedisLimiter(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := New(client, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "import:ip", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := limiter.Allow(ctx, "import:ip", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.True(t, server.Exists("corpus:ratelimit:import:ip"))

	server.FastForward(time.Minute + time.Second)
	res, err = limiter.Allow(ctx, "import:ip", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewFallsBackToMemory(t *testing.T) {
	_, ok := New(nil, "").(*MemoryLimiter)
	assert.True(t, ok)
}
