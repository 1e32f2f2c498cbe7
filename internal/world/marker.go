package world

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/scene"
)

// Marker geometry, in scene units relative to the marker root.
const (
	markerLift    = 2.0
	pillarRadius  = 0.5
	pillarHeight  = 15.0
	sphereRadius  = 1.0
	glowRadius    = 1.5
	headY         = 15.0
	labelY        = 18.0
	pulseRate     = 2.0
	pulseAmount   = 0.2
	glowOpacity   = 0.2
	glowFlicker   = 0.1
	markerSegment = 32
)

// Marker is the clickable beacon standing over a site.
type Marker struct {
	Site   catalog.Site
	Root   *scene.Node
	Pillar *scene.Node
	Sphere *scene.Node
	Glow   *scene.Node
	Label  *scene.Node
}

func newMarker(site catalog.Site, at mgl64.Vec3) *Marker {
	rgb := site.RGB()
	color := [4]float32{rgb[0], rgb[1], rgb[2], 1}

	m := &Marker{Site: site, Root: scene.NewGroup("marker-" + site.ID)}
	m.Root.Position = at.Add(mgl64.Vec3{0, markerLift, 0})
	m.Root.UserData = map[string]any{"site": site.ID}

	m.Pillar = scene.NewMesh("pillar",
		scene.NewCylinderGeometry(pillarRadius, pillarRadius, pillarHeight, 16),
		&scene.Material{Name: "pillar", Color: color, Opacity: 0.6, Transparent: true})
	m.Pillar.Position = mgl64.Vec3{0, pillarHeight / 2, 0}

	m.Sphere = scene.NewMesh("sphere",
		scene.NewSphereGeometry(sphereRadius, markerSegment, markerSegment),
		&scene.Material{
			Name:      "sphere",
			Color:     color,
			Emissive:  rgb,
			Roughness: 0.3,
			Metallic:  0.7,
			Opacity:   1,
		})
	m.Sphere.Position = mgl64.Vec3{0, headY, 0}

	m.Glow = scene.NewMesh("glow",
		scene.NewSphereGeometry(glowRadius, markerSegment, markerSegment),
		&scene.Material{
			Name:        "glow",
			Color:       color,
			Opacity:     0.3,
			Transparent: true,
			Side:        scene.BackSide,
		})
	m.Glow.Position = mgl64.Vec3{0, headY, 0}

	m.Label = scene.NewSprite("label", strconv.Itoa(site.Year))
	m.Label.Position = mgl64.Vec3{0, labelY, 0}
	m.Label.Scale = mgl64.Vec3{4, 2, 1}

	m.Root.Add(m.Pillar, m.Sphere, m.Glow, m.Label)
	return m
}

// pulse animates the head at elapsed seconds.
func (m *Marker) pulse(elapsed float64) {
	phase := elapsed * pulseRate
	m.Sphere.SetUniformScale(1 + math.Sin(phase)*pulseAmount)
	m.Glow.SetUniformScale(1 + math.Sin(phase+math.Pi)*pulseAmount)
	if m.Glow.Mesh != nil {
		m.Glow.Mesh.Material.Opacity = float32(glowOpacity + math.Sin(phase)*glowFlicker)
	}
}

// Head returns the world position of the marker sphere.
func (m *Marker) Head() mgl64.Vec3 {
	return m.Sphere.WorldPosition()
}

// Intersect returns the distance along r to the nearest part of the marker.
// The head is tested as its glow sphere and the pillar as its bounding box.
func (m *Marker) Intersect(r scene.Ray) (float64, bool) {
	if !m.Root.Visible {
		return 0, false
	}
	best := math.Inf(1)
	radius := glowRadius * m.Glow.Scale.X()
	if d, ok := r.IntersectSphere(m.Glow.WorldPosition(), radius); ok {
		best = d
	}
	if d, ok := r.IntersectBox(m.Pillar.WorldBounds()); ok && d < best {
		best = d
	}
	return best, !math.IsInf(best, 1)
}
