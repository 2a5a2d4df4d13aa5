package backpressure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsTo100(t *testing.T) {
	y := New()
	require.Equal(t, 100, y.EveryN())
}

func TestNewWithCadence_NonPositiveFallsBackToDefault(t *testing.T) {
	require.Equal(t, 100, NewWithCadence(0).EveryN())
	require.Equal(t, 100, NewWithCadence(-5).EveryN())
	require.Equal(t, 7, NewWithCadence(7).EveryN())
}

func TestYield_NoopOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Should return immediately without panicking or blocking.
	New().Yield(ctx)
}

func TestYield_RunsOnLiveContext(t *testing.T) {
	New().Yield(context.Background())
}
