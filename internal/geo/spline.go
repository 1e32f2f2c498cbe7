package geo

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrTooFewPoints is returned when a spline is built from fewer than two points.
var ErrTooFewPoints = errors.New("spline needs at least two control points")

// CurveType selects the Catmull-Rom parameterization.
type CurveType int

const (
	// Uniform is the classic Catmull-Rom curve with a tension factor.
	Uniform CurveType = iota
	// Centripetal spaces knots by the square root of chord length and never
	// overshoots or self-intersects within a segment.
	Centripetal
	// Chordal spaces knots by chord length.
	Chordal
)

// DefaultTension matches the common Catmull-Rom tension of one half.
const DefaultTension = 0.5

const tangentDelta = 1e-4

// Spline is an interpolating Catmull-Rom curve through a fixed set of points.
// It passes through every control point in order. The control points are
// copied on construction and never mutated.
type Spline struct {
	points  []mgl64.Vec3
	curve   CurveType
	tension float64
}

// NewSpline builds a uniform Catmull-Rom spline with the given tension.
func NewSpline(points []mgl64.Vec3, tension float64) (*Spline, error) {
	return NewSplineOfType(points, Uniform, tension)
}

// NewSplineOfType builds a spline with an explicit parameterization.
// tension only affects Uniform curves.
func NewSplineOfType(points []mgl64.Vec3, curve CurveType, tension float64) (*Spline, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	cp := make([]mgl64.Vec3, len(points))
	copy(cp, points)
	return &Spline{points: cp, curve: curve, tension: tension}, nil
}

// Points returns a copy of the control points.
func (s *Spline) Points() []mgl64.Vec3 {
	cp := make([]mgl64.Vec3, len(s.points))
	copy(cp, s.points)
	return cp
}

// PointAt returns the curve position for t in [0,1]; t is clamped.
func (s *Spline) PointAt(t float64) mgl64.Vec3 {
	t = Clamp(t, 0, 1)
	n := len(s.points)

	p := float64(n-1) * t
	seg := int(math.Floor(p))
	weight := p - float64(seg)
	if seg >= n-1 {
		seg = n - 2
		weight = 1
	}

	var p0, p3 mgl64.Vec3
	p1 := s.points[seg]
	p2 := s.points[seg+1]
	if seg > 0 {
		p0 = s.points[seg-1]
	} else {
		// extrapolate a phantom point before the first
		p0 = p1.Mul(2).Sub(p2)
	}
	if seg+2 < n {
		p3 = s.points[seg+2]
	} else {
		p3 = p2.Mul(2).Sub(p1)
	}

	var out mgl64.Vec3
	switch s.curve {
	case Centripetal, Chordal:
		pow := 0.25
		if s.curve == Chordal {
			pow = 0.5
		}
		dt0 := math.Pow(distSq(p0, p1), pow)
		dt1 := math.Pow(distSq(p1, p2), pow)
		dt2 := math.Pow(distSq(p2, p3), pow)
		if dt1 < 1e-4 {
			dt1 = 1
		}
		if dt0 < 1e-4 {
			dt0 = dt1
		}
		if dt2 < 1e-4 {
			dt2 = dt1
		}
		for i := 0; i < 3; i++ {
			out[i] = nonuniform(p0[i], p1[i], p2[i], p3[i], dt0, dt1, dt2).at(weight)
		}
	default:
		for i := 0; i < 3; i++ {
			out[i] = catmullRom(p0[i], p1[i], p2[i], p3[i], s.tension).at(weight)
		}
	}
	return out
}

// TangentAt returns the normalized direction of travel at t.
func (s *Spline) TangentAt(t float64) mgl64.Vec3 {
	t1 := Clamp(t-tangentDelta, 0, 1)
	t2 := Clamp(t+tangentDelta, 0, 1)
	d := s.PointAt(t2).Sub(s.PointAt(t1))
	if d.Len() == 0 {
		d = s.points[len(s.points)-1].Sub(s.points[0])
		if d.Len() == 0 {
			return mgl64.Vec3{}
		}
	}
	return d.Normalize()
}

// Sample returns n+1 evenly parameterized points along the curve.
func (s *Spline) Sample(n int) []mgl64.Vec3 {
	if n < 1 {
		n = 1
	}
	out := make([]mgl64.Vec3, n+1)
	for i := 0; i <= n; i++ {
		out[i] = s.PointAt(float64(i) / float64(n))
	}
	return out
}

// Length approximates the arc length with divisions segments.
func (s *Spline) Length(divisions int) float64 {
	return PathLength(s.Sample(divisions))
}

// GroundTrack returns the curve's footprint on the ground plane.
func (s *Spline) GroundTrack(divisions int) (geom.LineString, error) {
	return GroundTrack(s.Sample(divisions))
}

// cubic holds the coefficients of c0 + c1*t + c2*t^2 + c3*t^3.
type cubic struct {
	c0, c1, c2, c3 float64
}

func (c cubic) at(t float64) float64 {
	t2 := t * t
	return c.c0 + c.c1*t + c.c2*t2 + c.c3*t2*t
}

func hermite(x0, x1, t0, t1 float64) cubic {
	return cubic{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

func catmullRom(x0, x1, x2, x3, tension float64) cubic {
	return hermite(x1, x2, tension*(x2-x0), tension*(x3-x1))
}

func nonuniform(x0, x1, x2, x3, dt0, dt1, dt2 float64) cubic {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	return hermite(x1, x2, t1*dt1, t2*dt1)
}

func distSq(a, b mgl64.Vec3) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}
