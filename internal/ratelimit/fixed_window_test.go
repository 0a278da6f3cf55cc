package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedWindowBlocksOverLimit(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 3)

	for i := 0; i < 3; i++ {
		res := limiter.Allow("user-1")
		require.True(t, res.Allowed, "request %d should pass", i+1)
	}

	res := limiter.Allow("user-1")
	require.False(t, res.Allowed)
	require.Zero(t, res.Remaining)
	require.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 1)

	require.True(t, limiter.Allow("user-1").Allowed)
	require.False(t, limiter.Allow("user-1").Allowed)
	require.True(t, limiter.Allow("user-2").Allowed)
}

func TestFixedWindowResetsAfterWindow(t *testing.T) {
	limiter := NewFixedWindow(time.Minute, 1)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return current })

	require.True(t, limiter.Allow("user-1").Allowed)
	require.False(t, limiter.Allow("user-1").Allowed)

	current = current.Add(61 * time.Second)
	require.True(t, limiter.Allow("user-1").Allowed)
}
