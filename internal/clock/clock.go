package clock

import (
	"context"
	"sync"
	"time"
)

// Mode describes how the FrameClock advances.
type Mode int

const (
	// RealTime paces frames with a wall-clock ticker.
	RealTime Mode = iota
	// Accelerated steps frames back to back, still advancing by Tick.
	Accelerated
)

// Listener receives the frame delta in seconds.
type Listener func(dt float64)

// FrameClock drives the frame loop and notifies listeners once per frame,
// always from a single goroutine.
type FrameClock struct {
	mu      sync.RWMutex
	Tick    time.Duration
	Mode    Mode
	elapsed time.Duration
	frames  uint64

	listeners []Listener
}

// New constructs a clock. A non-positive tick defaults to 60 frames per second.
func New(tick time.Duration, mode Mode) *FrameClock {
	if tick <= 0 {
		tick = time.Second / 60
	}
	return &FrameClock{Tick: tick, Mode: mode}
}

// AddListener registers a callback invoked on every frame, in registration order.
func (c *FrameClock) AddListener(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Elapsed returns the total simulated time.
func (c *FrameClock) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsed
}

// Frames returns the number of frames stepped so far.
func (c *FrameClock) Frames() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frames
}

// Step advances one frame of Tick and notifies listeners synchronously.
func (c *FrameClock) Step() {
	c.step(c.Tick)
}

// StepBy advances a single frame of the given duration.
func (c *FrameClock) StepBy(d time.Duration) {
	if d < 0 {
		return
	}
	c.step(d)
}

func (c *FrameClock) step(d time.Duration) {
	c.mu.Lock()
	c.elapsed += d
	c.frames++
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	dt := d.Seconds()
	for _, fn := range listeners {
		fn(dt)
	}
}

// Run steps the clock in a separate goroutine until duration has elapsed
// (forever when duration is zero) or ctx is cancelled. The returned channel
// is closed when the loop exits.
func (c *FrameClock) Run(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var ticks <-chan time.Time
		if c.Mode == RealTime {
			ticker := time.NewTicker(c.Tick)
			defer ticker.Stop()
			ticks = ticker.C
		}

		var ran time.Duration
		for {
			if duration > 0 && ran >= duration {
				return
			}

			if ticks != nil {
				select {
				case <-ctx.Done():
					return
				case <-ticks:
				}
			} else if ctx.Err() != nil {
				return
			}

			c.Step()
			ran += c.Tick
		}
	}()
	return done
}
