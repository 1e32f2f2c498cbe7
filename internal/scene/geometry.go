package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// Geometry is a vertex buffer with optional normals and triangle indices.
// Positions and Normals are flat xyz triples. A Geometry is treated as
// immutable once it has been handed to a Mesh; clones share it.
type Geometry struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32

	bounds Box3
	hasBox bool
}

// NewGeometry wraps positions (and optional indices) and computes bounds.
func NewGeometry(positions []float32, indices []uint32) *Geometry {
	g := &Geometry{Positions: positions, Indices: indices}
	g.ComputeBoundingBox()
	return g
}

// VertexCount returns the number of xyz triples.
func (g *Geometry) VertexCount() int {
	if g == nil {
		return 0
	}
	return len(g.Positions) / 3
}

// PositionBytes returns the raw byte length of the position buffer.
func (g *Geometry) PositionBytes() int64 {
	if g == nil {
		return 0
	}
	return int64(len(g.Positions)) * 4
}

// Vertex returns vertex i as a float64 vector.
func (g *Geometry) Vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(g.Positions[i*3]),
		float64(g.Positions[i*3+1]),
		float64(g.Positions[i*3+2]),
	}
}

// HasNormals reports whether a normal exists for every vertex.
func (g *Geometry) HasNormals() bool {
	return len(g.Normals) > 0 && len(g.Normals) == len(g.Positions)
}

// ComputeBoundingBox recomputes the cached local-space bounds.
func (g *Geometry) ComputeBoundingBox() Box3 {
	box := EmptyBox()
	for i := 0; i < g.VertexCount(); i++ {
		box = box.ExpandByPoint(g.Vertex(i))
	}
	g.bounds = box
	g.hasBox = true
	return box
}

// BoundingBox returns the cached bounds, computing them on first use.
func (g *Geometry) BoundingBox() Box3 {
	if !g.hasBox {
		return g.ComputeBoundingBox()
	}
	return g.bounds
}

// ComputeVertexNormals rebuilds smooth normals from the triangle list.
// Indexed geometry accumulates face normals per shared vertex; otherwise
// every consecutive triple is one triangle and trailing vertices that do
// not complete a triangle keep a zero normal.
func (g *Geometry) ComputeVertexNormals() {
	normals := make([]float32, len(g.Positions))
	n := g.VertexCount()

	face := func(a, b, c int) {
		ax, ay, az := g.Positions[a*3], g.Positions[a*3+1], g.Positions[a*3+2]
		bx, by, bz := g.Positions[b*3], g.Positions[b*3+1], g.Positions[b*3+2]
		cx, cy, cz := g.Positions[c*3], g.Positions[c*3+1], g.Positions[c*3+2]

		// cb x ab
		cbx, cby, cbz := cx-bx, cy-by, cz-bz
		abx, aby, abz := ax-bx, ay-by, az-bz
		nx := cby*abz - cbz*aby
		ny := cbz*abx - cbx*abz
		nz := cbx*aby - cby*abx

		for _, v := range [3]int{a, b, c} {
			normals[v*3] += nx
			normals[v*3+1] += ny
			normals[v*3+2] += nz
		}
	}

	if len(g.Indices) > 0 {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			a, b, c := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
			if a >= n || b >= n || c >= n {
				continue
			}
			face(a, b, c)
		}
	} else {
		for i := 0; i+2 < n; i += 3 {
			face(i, i+1, i+2)
		}
	}

	for i := 0; i < n; i++ {
		x, y, z := normals[i*3], normals[i*3+1], normals[i*3+2]
		l := math32.Sqrt(x*x + y*y + z*z)
		if l > 0 {
			normals[i*3] = x / l
			normals[i*3+1] = y / l
			normals[i*3+2] = z / l
		}
	}
	g.Normals = normals
}
