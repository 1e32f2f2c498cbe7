package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/rng"
	"github.com/vnhistory/tour3d/internal/scene"
)

// Heightfield is a regular grid of terrain heights in scene units. Row 0 is
// the northern edge (-Z) and column 0 the western edge (-X).
type Heightfield struct {
	Min      mgl64.Vec3
	Width    float64
	Depth    float64
	Segments int
	Heights  []float64
}

func (h *Heightfield) at(col, row int) float64 {
	return h.Heights[row*(h.Segments+1)+col]
}

// Contains reports whether (x, z) lies over the grid.
func (h *Heightfield) Contains(x, z float64) bool {
	u := x - h.Min.X()
	v := z - h.Min.Z()
	return u >= 0 && u <= h.Width && v >= 0 && v <= h.Depth
}

// HeightAt bilinearly samples the grid. Points outside the grid return 0.
func (h *Heightfield) HeightAt(x, z float64) float64 {
	if h == nil || !h.Contains(x, z) {
		return 0
	}
	fx := (x - h.Min.X()) / h.Width * float64(h.Segments)
	fz := (z - h.Min.Z()) / h.Depth * float64(h.Segments)
	c0 := min(int(fx), h.Segments-1)
	r0 := min(int(fz), h.Segments-1)
	tx := fx - float64(c0)
	tz := fz - float64(r0)

	top := geo.Lerp(h.at(c0, r0), h.at(c0+1, r0), tx)
	bottom := geo.Lerp(h.at(c0, r0+1), h.at(c0+1, r0+1), tx)
	return geo.Lerp(top, bottom, tz)
}

// extent returns the scene-space rectangle covered by bounds.
func extent(projector geo.Projector, b geo.Bounds) (center mgl64.Vec3, width, depth float64) {
	sw := projector.Project(geo.Coordinate{Lat: b.South, Lng: b.West})
	ne := projector.Project(geo.Coordinate{Lat: b.North, Lng: b.East})
	width = math.Abs(ne.X() - sw.X())
	depth = math.Abs(ne.Z() - sw.Z())
	center = mgl64.Vec3{(sw.X() + ne.X()) / 2, 0, (sw.Z() + ne.Z()) / 2}
	return center, width, depth
}

// elevation is the stylised relief at normalized grid coordinates, where
// nx runs west to east and nz south to north, both in [-0.5, 0.5].
func elevation(nx, nz, noise float64) float64 {
	var e float64
	// northern ranges along the border
	if nz > 0.3 {
		e += math.Sin(nx*10) * math.Cos(nz*8) * 3
	}
	// central highlands
	if nz > -0.1 && nz < 0.2 {
		e += math.Sin(nx*15+nz*10) * 2.5
	}
	// Truong Son
	if nx < -0.1 {
		e += math.Cos(nz*12) * 2
	}
	return e + noise
}

// buildTerrain returns the heightfield and matching mesh geometry.
func buildTerrain(cfg Config, projector geo.Projector, rnd *rng.Rand) (*Heightfield, *scene.Geometry) {
	center, width, depth := extent(projector, cfg.Bounds)
	seg := cfg.Segments
	g := scene.NewPlaneGeometry(float32(width), float32(depth), seg, seg)

	h := &Heightfield{
		Min:      mgl64.Vec3{center.X() - width/2, 0, center.Z() - depth/2},
		Width:    width,
		Depth:    depth,
		Segments: seg,
		Heights:  make([]float64, (seg+1)*(seg+1)),
	}
	for i := range h.Heights {
		x := float64(g.Positions[i*3])
		z := float64(g.Positions[i*3+2])
		y := elevation(x/width, -z/depth, rnd.Signed()*0.5) * cfg.ElevationScale
		h.Heights[i] = y

		g.Positions[i*3] = float32(x + center.X())
		g.Positions[i*3+1] = float32(y)
		g.Positions[i*3+2] = float32(z + center.Z())
	}
	g.ComputeVertexNormals()
	g.ComputeBoundingBox()
	return h, g
}
