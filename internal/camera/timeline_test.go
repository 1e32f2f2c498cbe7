package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vnhistory/tour3d/internal/rng"
)

func TestTimeline_CarriesLeftoverTime(t *testing.T) {
	var log []float64
	var begun int
	record := func(p float64) { log = append(log, p) }

	tl := newTimeline("test",
		step{duration: 1, update: record, begin: func() { begun++ }},
		pause(0.5),
		step{duration: 2, update: record, begin: func() { begun++ }},
	)

	assert.False(t, tl.advance(0.5))
	assert.Equal(t, []float64{0.5}, log)

	// finishes the first step and the pause, then enters the third
	assert.False(t, tl.advance(1.5))
	assert.Equal(t, []float64{0.5, 1, 0.25}, log)
	assert.Equal(t, 2, begun)

	assert.True(t, tl.advance(5))
	assert.Equal(t, 1.0, log[len(log)-1])
	assert.True(t, tl.advance(1), "finished timelines stay finished")
}

func TestTimeline_Repeat(t *testing.T) {
	var last float64
	tl := newTimeline("loop", step{duration: 4, repeat: true, update: func(p float64) { last = p }})

	assert.False(t, tl.advance(1))
	assert.InDelta(t, 0.25, last, 1e-12)
	assert.False(t, tl.advance(4))
	assert.InDelta(t, 0.25, last, 1e-12)
	assert.False(t, tl.advance(10.5))
	assert.InDelta(t, 0.875, last, 1e-12)
}

func TestTimeline_ZeroDurationStep(t *testing.T) {
	var got []float64
	tl := newTimeline("instant", step{update: func(p float64) { got = append(got, p) }})
	assert.True(t, tl.advance(0))
	assert.Equal(t, []float64{1}, got)
}

func TestShake_Offsets(t *testing.T) {
	s := newShake(2, 1, rng.New(1))
	assert.InDelta(t, 1.1, s.total(), 1e-12)
	assert.Len(t, s.keys, 12)
	assert.Equal(t, s.keys[0], s.keys[11])
}
