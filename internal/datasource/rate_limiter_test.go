package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiRateLimiterPacesPerSource(t *testing.T) {
	mrl := NewMultiRateLimiter()
	mrl.AddLimiter(SourceScreener, 60*time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, mrl.Wait(ctx, SourceScreener))
	assert.Less(t, time.Since(start), 30*time.Millisecond, "first request is not delayed")

	require.NoError(t, mrl.Wait(ctx, SourceScreener))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	start = time.Now()
	require.NoError(t, mrl.Wait(ctx, SourceSecondary))
	require.NoError(t, mrl.Wait(ctx, SourceSecondary))
	assert.Less(t, time.Since(start), 30*time.Millisecond, "unregistered sources are unpaced")
}

func TestMultiRateLimiterZeroInterval(t *testing.T) {
	mrl := NewMultiRateLimiter()
	mrl.AddLimiter(SourceKite, 0)
	assert.Empty(t, mrl.limiters)

	var nilLimiter *MultiRateLimiter
	assert.NoError(t, nilLimiter.Wait(context.Background(), SourceKite))
}

func TestMultiRateLimiterCancelled(t *testing.T) {
	mrl := NewMultiRateLimiter()
	mrl.AddLimiter(SourceScreener, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, mrl.Wait(ctx, SourceScreener))
	cancel()

	assert.ErrorIs(t, mrl.Wait(ctx, SourceScreener), context.Canceled)
}
