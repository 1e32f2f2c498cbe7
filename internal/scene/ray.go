package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half line. Direction is normalized by NewRay.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay builds a ray; a zero direction yields a ray that hits nothing.
func NewRay(origin, direction mgl64.Vec3) Ray {
	if direction.Len() > 0 {
		direction = direction.Normalize()
	}
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectSphere returns the distance to the nearest hit in front of the origin.
func (r Ray) IntersectSphere(center mgl64.Vec3, radius float64) (float64, bool) {
	if r.Direction.Len() == 0 {
		return 0, false
	}
	oc := center.Sub(r.Origin)
	tca := oc.Dot(r.Direction)
	d2 := oc.Dot(oc) - tca*tca
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}
	thc := math.Sqrt(r2 - d2)
	t0, t1 := tca-thc, tca+thc
	if t1 < 0 {
		return 0, false
	}
	if t0 < 0 {
		return t1, true
	}
	return t0, true
}

// IntersectBox returns the distance to the box entry point (slab method).
func (r Ray) IntersectBox(b Box3) (float64, bool) {
	if b.IsEmpty() || r.Direction.Len() == 0 {
		return 0, false
	}
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if r.Direction[i] == 0 {
			if r.Origin[i] < b.Min[i] || r.Origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / r.Direction[i]
		t1 := (b.Min[i] - r.Origin[i]) * inv
		t2 := (b.Max[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}
