package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/robalyx/gatekeeper/internal/discord/rate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterSpacesRequests(t *testing.T) {
	t.Parallel()

	limiter := rate.New(20*time.Millisecond, 0)

	start := time.Now()
	for range 3 {
		require.NoError(t, limiter.Wait(t.Context()))
	}

	// The first slot is free, the next two wait a full interval each.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLimiterDisabled(t *testing.T) {
	t.Parallel()

	limiter := rate.New(0, time.Second)

	start := time.Now()
	for range 100 {
		require.NoError(t, limiter.Wait(t.Context()))
	}

	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterCancelled(t *testing.T) {
	t.Parallel()

	limiter := rate.New(time.Hour, 0)
	require.NoError(t, limiter.Wait(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, limiter.Wait(ctx), context.DeadlineExceeded)
}
