package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry_Sizes(t *testing.T) {
	g := unitTriangle()
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, int64(36), g.PositionBytes())
	assert.False(t, g.HasNormals())

	var nilGeo *Geometry
	assert.Zero(t, nilGeo.VertexCount())
	assert.Zero(t, nilGeo.PositionBytes())
}

func TestGeometry_ComputeVertexNormals_NonIndexed(t *testing.T) {
	g := unitTriangle()
	g.ComputeVertexNormals()

	require.True(t, g.HasNormals())
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, g.Normals[i*3], 1e-6)
		assert.InDelta(t, 0, g.Normals[i*3+1], 1e-6)
		assert.InDelta(t, 1, g.Normals[i*3+2], 1e-6)
	}
}

func TestGeometry_ComputeVertexNormals_Indexed(t *testing.T) {
	// two triangles of a unit quad sharing the diagonal
	g := NewGeometry(
		[]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		[]uint32{0, 1, 2, 0, 2, 3},
	)
	g.ComputeVertexNormals()

	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1, g.Normals[i*3+2], 1e-6, "vertex %d", i)
	}
}

func TestGeometry_ComputeVertexNormals_TrailingVertices(t *testing.T) {
	g := NewGeometry([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 5}, nil)
	g.ComputeVertexNormals()

	assert.InDelta(t, 1, g.Normals[2], 1e-6)
	assert.Equal(t, []float32{0, 0, 0}, g.Normals[9:12])
}

func TestGeometry_BoundingBox(t *testing.T) {
	g := NewGeometry([]float32{-1, 2, 3, 4, -5, 6, 0, 0, -7}, nil)
	box := g.BoundingBox()
	assert.Equal(t, mgl64.Vec3{-1, -5, -7}, box.Min)
	assert.Equal(t, mgl64.Vec3{4, 2, 6}, box.Max)
	assert.Equal(t, mgl64.Vec3{5, 7, 13}, box.Size())
	assert.Equal(t, mgl64.Vec3{1.5, -1.5, -0.5}, box.Center())
}

func TestBox3(t *testing.T) {
	empty := EmptyBox()
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, mgl64.Vec3{}, empty.Size())
	assert.Equal(t, mgl64.Vec3{}, empty.Center())

	b := empty.ExpandByPoint(mgl64.Vec3{1, 1, 1})
	assert.False(t, b.IsEmpty())
	assert.True(t, b.ContainsPoint(mgl64.Vec3{1, 1, 1}))

	u := b.Union(Box3{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{0, 0, 0}})
	assert.Equal(t, mgl64.Vec3{-1, -1, -1}, u.Min)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, u.Max)
	assert.Equal(t, u, u.Union(EmptyBox()))

	moved := u.Transform(mgl64.Translate3D(10, 0, 0))
	assert.Equal(t, mgl64.Vec3{9, -1, -1}, moved.Min)
	assert.True(t, empty.Transform(mgl64.Translate3D(1, 1, 1)).IsEmpty())
}

func TestRay_IntersectSphere(t *testing.T) {
	r := NewRay(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, -5})

	d, ok := r.IntersectSphere(mgl64.Vec3{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 9, d, 1e-12)
	assert.True(t, r.At(d).ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-12))

	_, ok = r.IntersectSphere(mgl64.Vec3{5, 0, 0}, 1)
	assert.False(t, ok)

	_, ok = r.IntersectSphere(mgl64.Vec3{0, 0, 20}, 1)
	assert.False(t, ok, "sphere behind the origin")

	inside, ok := r.IntersectSphere(mgl64.Vec3{0, 0, 10}, 2)
	require.True(t, ok)
	assert.InDelta(t, 2, inside, 1e-12)

	_, ok = NewRay(mgl64.Vec3{}, mgl64.Vec3{}).IntersectSphere(mgl64.Vec3{}, 1)
	assert.False(t, ok)
}

func TestRay_IntersectBox(t *testing.T) {
	box := Box3{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	d, ok := NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}).IntersectBox(box)
	require.True(t, ok)
	assert.InDelta(t, 4, d, 1e-12)

	_, ok = NewRay(mgl64.Vec3{-5, 3, 0}, mgl64.Vec3{1, 0, 0}).IntersectBox(box)
	assert.False(t, ok)

	d, ok = NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}).IntersectBox(box)
	require.True(t, ok)
	assert.Zero(t, d)

	diag := NewRay(mgl64.Vec3{-5, -5, -5}, mgl64.Vec3{1, 1, 1})
	d, ok = diag.IntersectBox(box)
	require.True(t, ok)
	assert.InDelta(t, 4*math.Sqrt(3), d, 1e-9)
}

func TestMaterial_Clone(t *testing.T) {
	m := &Material{Name: "flag", Map: &Texture{Width: 4096}}
	cp := m.Clone()
	cp.Map.Width = 1
	cp.Name = "other"
	assert.Equal(t, 4096, m.Map.Width)
	assert.Equal(t, "flag", m.Name)

	var nilMat *Material
	assert.Nil(t, nilMat.Clone())
}
