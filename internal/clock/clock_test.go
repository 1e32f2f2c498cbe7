package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultTick(t *testing.T) {
	c := New(0, Accelerated)
	assert.Equal(t, time.Second/60, c.Tick)
}

func TestStep_NotifiesListenersInOrder(t *testing.T) {
	c := New(100*time.Millisecond, Accelerated)

	var order []string
	var deltas []float64
	c.AddListener(func(dt float64) {
		order = append(order, "first")
		deltas = append(deltas, dt)
	})
	c.AddListener(func(float64) { order = append(order, "second") })

	c.Step()
	c.Step()

	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
	assert.InDeltaSlice(t, []float64{0.1, 0.1}, deltas, 1e-12)
	assert.Equal(t, 200*time.Millisecond, c.Elapsed())
	assert.Equal(t, uint64(2), c.Frames())
}

func TestStepBy(t *testing.T) {
	c := New(time.Second, Accelerated)
	var got float64
	c.AddListener(func(dt float64) { got = dt })

	c.StepBy(250 * time.Millisecond)
	assert.InDelta(t, 0.25, got, 1e-12)

	c.StepBy(-time.Second)
	assert.Equal(t, 250*time.Millisecond, c.Elapsed(), "negative steps are ignored")
}

func TestRun_AcceleratedStopsAfterDuration(t *testing.T) {
	c := New(5*time.Millisecond, Accelerated)
	var frames int
	c.AddListener(func(float64) { frames++ })

	done := c.Run(context.Background(), 15*time.Millisecond)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock did not stop")
	}

	assert.Equal(t, 3, frames)
	assert.Equal(t, 15*time.Millisecond, c.Elapsed())
}

func TestRun_RealTimeCancel(t *testing.T) {
	c := New(time.Millisecond, RealTime)
	ctx, cancel := context.WithCancel(context.Background())

	done := c.Run(ctx, 0)
	require.Eventually(t, func() bool { return c.Frames() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clock ignored cancellation")
	}
}
