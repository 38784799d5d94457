package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitReadyImmediate(t *testing.T) {
	calls := 0
	ok := WaitReady(context.Background(), time.Millisecond, 5, func() bool {
		calls++
		return true
	})
	require.True(t, ok)
	require.Equal(t, 1, calls)
}

func TestWaitReadyAfterSomePolls(t *testing.T) {
	calls := 0
	ok := WaitReady(context.Background(), time.Millisecond, 10, func() bool {
		calls++
		return calls >= 3
	})
	require.True(t, ok)
	require.Equal(t, 3, calls)
}

func TestWaitReadyTimesOut(t *testing.T) {
	calls := 0
	ok := WaitReady(context.Background(), time.Millisecond, 5, func() bool {
		calls++
		return false
	})
	require.False(t, ok)
	require.Equal(t, 5, calls)
}

func TestWaitReadyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := WaitReady(ctx, time.Hour, 50, func() bool { return false })
	require.False(t, ok)
}
