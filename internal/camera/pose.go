package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/scene"
)

// Mode is the flight state of a Controller.
type Mode int

const (
	Idle Mode = iota
	Flying
	Orbiting
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Flying:
		return "flying"
	case Orbiting:
		return "orbiting"
	default:
		return "unknown"
	}
}

var (
	worldUp = mgl64.Vec3{0, 1, 0}
	north   = mgl64.Vec3{0, 0, -1}
)

// Pose is the camera transform handed to the renderer each frame.
type Pose struct {
	Position    mgl64.Vec3
	LookAt      mgl64.Vec3
	Orientation mgl64.Quat
}

func newPose(position, lookAt mgl64.Vec3) Pose {
	return Pose{Position: position, LookAt: lookAt, Orientation: orientation(position, lookAt)}
}

// up picks a reference up vector that is not parallel to dir.
func up(dir mgl64.Vec3) mgl64.Vec3 {
	if dir.Len() == 0 || math.Abs(dir.Normalize().Dot(worldUp)) > 0.999 {
		return north
	}
	return worldUp
}

func orientation(position, lookAt mgl64.Vec3) mgl64.Quat {
	dir := lookAt.Sub(position)
	if dir.Len() < 1e-9 {
		return mgl64.QuatIdent()
	}
	view := mgl64.LookAtV(position, lookAt, up(dir))
	return mgl64.Mat4ToQuat(view.Inv()).Normalize()
}

// Forward returns the unit view direction.
func (p Pose) Forward() mgl64.Vec3 {
	dir := p.LookAt.Sub(p.Position)
	if dir.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return dir.Normalize()
}

// View returns the world-to-camera matrix.
func (p Pose) View() mgl64.Mat4 {
	if p.LookAt.Sub(p.Position).Len() < 1e-9 {
		return mgl64.Translate3D(-p.Position.X(), -p.Position.Y(), -p.Position.Z())
	}
	return mgl64.LookAtV(p.Position, p.LookAt, up(p.LookAt.Sub(p.Position)))
}

// Lens holds the perspective projection parameters.
type Lens struct {
	FovY   float64 // degrees
	Aspect float64
	Near   float64
	Far    float64
}

// DefaultLens matches the tour's render camera.
func DefaultLens() Lens {
	return Lens{FovY: 60, Aspect: 16.0 / 9.0, Near: 0.1, Far: 1000}
}

// Projection returns the camera-to-clip matrix.
func (l Lens) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(l.FovY), l.Aspect, l.Near, l.Far)
}

// Ray returns the pick ray through normalized device coordinates, with
// x and y in [-1, 1] and +y pointing up.
func (l Lens) Ray(p Pose, ndcX, ndcY float64) scene.Ray {
	inv := l.Projection().Mul4(p.View()).Inv()
	far := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, 1}, inv)
	return scene.NewRay(p.Position, far.Sub(p.Position))
}
