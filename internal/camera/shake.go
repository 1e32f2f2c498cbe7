package camera

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/rng"
)

const (
	shakeSteps   = 10
	shakeRestore = 0.1
)

// shake is an additive positional offset layered over the base pose. It
// moves linearly through ten random offsets and eases out back to zero, so the
// base pose is untouched when it ends.
type shake struct {
	keys    []mgl64.Vec3
	times   []float64
	elapsed float64
}

func newShake(intensity, duration float64, rnd *rng.Rand) *shake {
	s := &shake{
		keys:  make([]mgl64.Vec3, 0, shakeSteps+2),
		times: make([]float64, 0, shakeSteps+2),
	}
	s.keys = append(s.keys, mgl64.Vec3{})
	s.times = append(s.times, 0)
	interval := duration / shakeSteps
	for i := 1; i <= shakeSteps; i++ {
		s.keys = append(s.keys, mgl64.Vec3{
			rnd.Signed() * intensity,
			rnd.Signed() * intensity,
			rnd.Signed() * intensity,
		})
		s.times = append(s.times, float64(i)*interval)
	}
	s.keys = append(s.keys, mgl64.Vec3{})
	s.times = append(s.times, duration+shakeRestore)
	return s
}

func (s *shake) total() float64 {
	return s.times[len(s.times)-1]
}

// advance moves the shake by dt and reports whether it has finished.
func (s *shake) advance(dt float64) bool {
	s.elapsed += dt
	return s.elapsed >= s.total()
}

// offset returns the current displacement.
func (s *shake) offset() mgl64.Vec3 {
	if s.elapsed >= s.total() {
		return mgl64.Vec3{}
	}
	for i := 1; i < len(s.times); i++ {
		if s.elapsed < s.times[i] {
			span := s.times[i] - s.times[i-1]
			t := 1.0
			if span > 0 {
				t = (s.elapsed - s.times[i-1]) / span
			}
			if i == len(s.times)-1 {
				t = geo.QuadOut(t)
			}
			return geo.LerpVec(s.keys[i-1], s.keys[i], t)
		}
	}
	return mgl64.Vec3{}
}
