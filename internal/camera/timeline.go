package camera

import (
	"math"

	"github.com/vnhistory/tour3d/internal/geo"
)

// step is one segment of a timeline. begin runs when the step becomes
// current, update receives eased progress in [0, 1]. A step without update
// is a pause.
type step struct {
	duration float64
	ease     geo.Ease
	repeat   bool
	begin    func()
	update   func(p float64)
}

// timeline plays its steps in order. It is the only animation handle a
// Controller holds; cancelling means dropping it.
type timeline struct {
	kind    string
	steps   []step
	idx     int
	elapsed float64
	started bool
	done    chan struct{}
}

func newTimeline(kind string, steps ...step) *timeline {
	return &timeline{kind: kind, steps: steps, done: make(chan struct{})}
}

// advance moves the timeline forward by dt seconds and reports whether the
// last step has finished. Time left over at the end of a step carries into
// the next one.
func (tl *timeline) advance(dt float64) bool {
	for tl.idx < len(tl.steps) {
		s := &tl.steps[tl.idx]
		if !tl.started {
			tl.started = true
			if s.begin != nil {
				s.begin()
			}
		}
		tl.elapsed += dt
		dt = 0

		if s.repeat {
			if s.duration > 0 {
				tl.elapsed = math.Mod(tl.elapsed, s.duration)
				s.apply(tl.elapsed / s.duration)
			}
			return false
		}
		if tl.elapsed < s.duration {
			s.apply(tl.elapsed / s.duration)
			return false
		}

		if s.update != nil {
			s.update(1)
		}
		dt = tl.elapsed - s.duration
		tl.idx++
		tl.elapsed = 0
		tl.started = false
	}
	return true
}

func (s *step) apply(t float64) {
	if s.update == nil {
		return
	}
	ease := s.ease
	if ease == nil {
		ease = geo.None
	}
	s.update(ease(t))
}

func pause(seconds float64) step {
	return step{duration: seconds}
}
