package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitTriangle is one triangle in the XY plane facing +Z.
func unitTriangle() *Geometry {
	return NewGeometry([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, nil)
}

func TestNode_AddReparents(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	child := NewGroup("child")

	a.Add(child)
	require.Equal(t, a, child.Parent())
	assert.Equal(t, 1, a.NumChildren())

	b.Add(child)
	assert.Equal(t, b, child.Parent())
	assert.Equal(t, 0, a.NumChildren())
	assert.Equal(t, 1, b.NumChildren())

	assert.True(t, b.Remove(child))
	assert.Nil(t, child.Parent())
	assert.False(t, b.Remove(child))
}

func TestNode_AddIgnoresSelfAndNil(t *testing.T) {
	a := NewGroup("a")
	a.Add(a, nil)
	assert.Equal(t, 0, a.NumChildren())
}

func TestNode_FindAndTraverse(t *testing.T) {
	root := NewGroup("root")
	hidden := NewGroup("hidden")
	hidden.Visible = false
	leaf := NewMesh("leaf", unitTriangle(), &Material{})
	hidden.Add(leaf)
	root.Add(NewGroup("empty"), hidden)

	assert.Equal(t, leaf, root.FindByName("leaf"))
	assert.Nil(t, root.FindByName("missing"))

	var all, visible int
	root.Traverse(func(*Node) { all++ })
	root.TraverseVisible(func(*Node) { visible++ })
	assert.Equal(t, 4, all)
	assert.Equal(t, 2, visible)

	assert.Equal(t, leaf, root.FirstMesh())
	assert.Len(t, root.Meshes(), 1)
}

func TestNode_WorldMatrix(t *testing.T) {
	parent := NewGroup("parent")
	parent.Position = mgl64.Vec3{10, 0, 0}
	parent.SetEuler(0, math.Pi/2, 0)
	parent.SetUniformScale(2)

	child := NewGroup("child")
	child.Position = mgl64.Vec3{1, 0, 0}
	parent.Add(child)

	// rotating +x by 90 degrees about y yields -z
	got := child.WorldPosition()
	assert.True(t, got.ApproxEqualThreshold(mgl64.Vec3{10, 0, -2}, 1e-9), "got %v", got)
}

func TestNode_WorldBounds(t *testing.T) {
	root := NewGroup("root")
	root.Position = mgl64.Vec3{5, 0, 0}
	mesh := NewMesh("tri", unitTriangle(), &Material{})
	mesh.SetUniformScale(3)
	root.Add(mesh)

	box := root.WorldBounds()
	assert.True(t, box.Min.ApproxEqualThreshold(mgl64.Vec3{5, 0, 0}, 1e-9))
	assert.True(t, box.Max.ApproxEqualThreshold(mgl64.Vec3{8, 3, 0}, 1e-9))

	inst := NewInstanced("crowd", &Mesh{Geometry: unitTriangle()}, []mgl64.Mat4{
		mgl64.Translate3D(-10, 0, 0),
		mgl64.Translate3D(10, 0, 0),
	})
	ib := inst.WorldBounds()
	assert.InDelta(t, -10, ib.Min.X(), 1e-9)
	assert.InDelta(t, 11, ib.Max.X(), 1e-9)

	assert.True(t, NewGroup("empty").WorldBounds().IsEmpty())
}

func TestNode_CloneIsIndependent(t *testing.T) {
	geo := unitTriangle()
	src := NewGroup("model")
	mesh := NewMesh("body", geo, &Material{Name: "skin"})
	mesh.UserData = map[string]any{"k": 1}
	src.Add(mesh)

	cp := src.Clone()
	require.Equal(t, 1, cp.NumChildren())
	cm := cp.Children()[0]

	assert.NotSame(t, mesh, cm)
	assert.Same(t, geo, cm.Mesh.Geometry, "geometry is shared")
	assert.Equal(t, cp, cm.Parent())

	cm.Position = mgl64.Vec3{1, 2, 3}
	cm.UserData["k"] = 2
	assert.Equal(t, mgl64.Vec3{}, mesh.Position)
	assert.Equal(t, 1, mesh.UserData["k"])

	// releasing the source leaves the clone usable
	src.Release()
	assert.Equal(t, 0, src.NumChildren())
	assert.Nil(t, mesh.Mesh)
	require.NotNil(t, cm.Mesh)
	assert.Equal(t, 3, cm.Mesh.Geometry.VertexCount())
}

func TestNode_LODLevels(t *testing.T) {
	lod := NewLOD("lod")
	high := NewGroup("high")
	mid := NewGroup("mid")
	low := NewGroup("low")
	lod.AddLevel(low, 50)
	lod.AddLevel(high, 0)
	lod.AddLevel(mid, 20)

	require.Len(t, lod.Levels, 3)
	assert.Equal(t, high, lod.Levels[0].Node)
	assert.Equal(t, low, lod.Levels[2].Node)

	assert.Equal(t, 0, lod.UpdateLevel(mgl64.Vec3{5, 0, 0}))
	assert.True(t, high.Visible)
	assert.False(t, mid.Visible)

	assert.Equal(t, 1, lod.UpdateLevel(mgl64.Vec3{0, 0, 30}))
	assert.True(t, mid.Visible)
	assert.False(t, high.Visible)

	assert.Equal(t, 2, lod.UpdateLevel(mgl64.Vec3{0, 100, 0}))
	assert.True(t, low.Visible)
	assert.Equal(t, 2, lod.CurrentLevel())

	cp := lod.Clone()
	require.Len(t, cp.Levels, 3)
	assert.Equal(t, "low", cp.Levels[2].Node.Name)
	assert.NotSame(t, low, cp.Levels[2].Node)
	assert.Equal(t, cp, cp.Levels[2].Node.Parent())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "instanced", KindInstanced.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
