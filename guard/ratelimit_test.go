package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestRateLimiterWindow verifies the sliding window: max admissions, then
// denial, then admission again once the window elapses.
func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }

	rl := NewRateLimiter(time.Minute, 3, clock)

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow(), "request %d should be admitted", i)
	}
	require.False(t, rl.Allow(), "request over the cap should be denied")
	require.Equal(t, 3, rl.Pending())

	// Denied requests are not recorded; the window stays at the cap.
	require.False(t, rl.Allow())
	require.Equal(t, 3, rl.Pending())

	now = now.Add(61 * time.Second)
	require.True(t, rl.Allow(), "request after window expiry should be admitted")
	require.Equal(t, 1, rl.Pending())
}

// TestRateLimiterPartialEviction verifies only window-expired entries are
// evicted.
func TestRateLimiterPartialEviction(t *testing.T) {
	now := time.Unix(2000, 0)
	clock := func() time.Time { return now }

	rl := NewRateLimiter(time.Minute, 2, clock)

	require.True(t, rl.Allow())
	now = now.Add(30 * time.Second)
	require.True(t, rl.Allow())
	require.False(t, rl.Allow())

	// First entry ages out, second is still live.
	now = now.Add(31 * time.Second)
	require.True(t, rl.Allow())
	require.False(t, rl.Allow())
}
