package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestCommentThrottlePerClient verifies each client has its own budget that refills over time.
func TestCommentThrottlePerClient(t *testing.T) {
	t.Parallel()

	th, err := NewCommentThrottle(&CommentThrottleCfg{
		EachPerMinute: 2, EachBurst: 2,
		TotalPerMinute: 100, TotalBurst: 100,
		MaxClients: 10,
	})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.True(t, th.AllowAt("a", now))
	require.True(t, th.AllowAt("a", now))
	require.False(t, th.AllowAt("a", now))
	require.True(t, th.AllowAt("b", now))

	require.True(t, th.AllowAt("a", now.Add(30*time.Second)))
}

// TestCommentThrottleTotal verifies the shared budget caps all clients together.
func TestCommentThrottleTotal(t *testing.T) {
	t.Parallel()

	th, err := NewCommentThrottle(&CommentThrottleCfg{
		EachPerMinute: 10, EachBurst: 10,
		TotalPerMinute: 3, TotalBurst: 3,
		MaxClients: 10,
	})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range []string{"a", "b", "c"} {
		require.True(t, th.AllowAt(c, now))
	}
	require.False(t, th.AllowAt("d", now))
}

// TestCommentThrottleForgetsOldClients verifies evicted clients start with a full budget.
func TestCommentThrottleForgetsOldClients(t *testing.T) {
	t.Parallel()

	th, err := NewCommentThrottle(&CommentThrottleCfg{
		EachPerMinute: 1, EachBurst: 1,
		TotalPerMinute: 100, TotalBurst: 100,
		MaxClients: 1,
	})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.True(t, th.AllowAt("a", now))
	require.False(t, th.AllowAt("a", now))
	require.True(t, th.AllowAt("b", now))
	require.True(t, th.AllowAt("a", now), "a was evicted by b")
}

// TestNewCommentThrottleValidatesConfig verifies invalid configs are rejected.
func TestNewCommentThrottleValidatesConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []*CommentThrottleCfg{
		nil,
		{EachPerMinute: 0, EachBurst: 1, TotalPerMinute: 1, TotalBurst: 1, MaxClients: 1},
		{EachPerMinute: 1, EachBurst: 0, TotalPerMinute: 1, TotalBurst: 1, MaxClients: 1},
		{EachPerMinute: 1, EachBurst: 1, TotalPerMinute: 1, TotalBurst: 1, MaxClients: 0},
	} {
		_, err := NewCommentThrottle(cfg)
		require.Error(t, err)
	}
}
