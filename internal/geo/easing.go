package geo

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

// None is unaccelerated progress.
func None(t float64) float64 { return t }

func powerIn(n float64) Ease {
	return func(t float64) float64 { return math.Pow(t, n) }
}

func powerOut(n float64) Ease {
	return func(t float64) float64 { return 1 - math.Pow(1-t, n) }
}

func powerInOut(n float64) Ease {
	return func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2, n-1) * math.Pow(t, n)
		}
		return 1 - math.Pow(-2*t+2, n)/2
	}
}

// Named curves. Power1 is quadratic, Power2 cubic, Power3 quartic.
var (
	QuadIn     = powerIn(2)
	QuadOut    = powerOut(2)
	QuadInOut  = powerInOut(2)
	CubicIn    = powerIn(3)
	CubicOut   = powerOut(3)
	CubicInOut = powerInOut(3)
	QuartIn    = powerIn(4)
	QuartOut   = powerOut(4)
	QuartInOut = powerInOut(4)

	Power1InOut = QuadInOut
	Power2InOut = CubicInOut
	Power3InOut = QuartInOut
)

// ElasticOut overshoots and settles on 1.
func ElasticOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	const c4 = 2 * math.Pi / 3
	return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
}

var easesByName = map[string]Ease{
	"linear":       None,
	"none":         None,
	"power1.in":    QuadIn,
	"power1.out":   QuadOut,
	"power1.inout": QuadInOut,
	"power2.in":    CubicIn,
	"power2.out":   CubicOut,
	"power2.inout": CubicInOut,
	"power3.in":    QuartIn,
	"power3.out":   QuartOut,
	"power3.inout": QuartInOut,
	"quad.inout":   QuadInOut,
	"cubic.inout":  CubicInOut,
	"quart.inout":  QuartInOut,
	"elastic.out":  ElasticOut,
	"smoothstep":   func(t float64) float64 { return Smoothstep(0, 1, t) },
	"smootherstep": func(t float64) float64 { return Smootherstep(0, 1, t) },
}

// EaseByName looks up a curve by its timeline name, e.g. "power2.inOut".
// Unknown names fall back to None and report false.
func EaseByName(name string) (Ease, bool) {
	if e, ok := easesByName[strings.ToLower(name)]; ok {
		return e, true
	}
	return None, false
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpVec interpolates between two points.
func LerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return mgl64.Clamp(v, lo, hi)
}

// MapRange maps v from [inMin, inMax] onto [outMin, outMax].
func MapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin {
		return outMin
	}
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}

// Smoothstep is the cubic Hermite step between edge0 and edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	t := Clamp(MapRange(x, edge0, edge1, 0, 1), 0, 1)
	return t * t * (3 - 2*t)
}

// Smootherstep is Perlin's quintic step between edge0 and edge1.
func Smootherstep(edge0, edge1, x float64) float64 {
	t := Clamp(MapRange(x, edge0, edge1, 0, 1), 0, 1)
	return t * t * t * (t*(t*6-15) + 10)
}
