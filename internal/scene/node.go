package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind tells the renderer how to draw a node.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindInstanced
	KindLOD
	KindPoints
	KindSprite
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindInstanced:
		return "instanced"
	case KindLOD:
		return "lod"
	case KindPoints:
		return "points"
	case KindSprite:
		return "sprite"
	default:
		return "unknown"
	}
}

// Mesh pairs shared geometry with a material.
type Mesh struct {
	Geometry *Geometry
	Material *Material
}

// Level is one detail tier of a KindLOD node.
type Level struct {
	Distance float64
	Node     *Node
}

// Node is an element of the scene tree. Each node has at most one parent;
// adding a node elsewhere detaches it first.
type Node struct {
	Name     string
	Kind     Kind
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
	Visible  bool

	CastShadow    bool
	ReceiveShadow bool
	FrustumCulled bool

	Mesh      *Mesh
	Instances []mgl64.Mat4
	Levels    []Level
	Label     string
	UserData  map[string]any

	parent   *Node
	children []*Node
	level    int
}

// NewNode returns a visible node with identity transform.
func NewNode(name string, kind Kind) *Node {
	return &Node{
		Name:          name,
		Kind:          kind,
		Rotation:      mgl64.QuatIdent(),
		Scale:         mgl64.Vec3{1, 1, 1},
		Visible:       true,
		FrustumCulled: true,
	}
}

// NewGroup returns an empty container node.
func NewGroup(name string) *Node {
	return NewNode(name, KindGroup)
}

// NewMesh returns a mesh node drawing geo with mat.
func NewMesh(name string, geo *Geometry, mat *Material) *Node {
	n := NewNode(name, KindMesh)
	n.Mesh = &Mesh{Geometry: geo, Material: mat}
	return n
}

// NewInstanced returns one draw batch of mesh placed at every matrix.
func NewInstanced(name string, mesh *Mesh, matrices []mgl64.Mat4) *Node {
	n := NewNode(name, KindInstanced)
	n.Mesh = mesh
	n.Instances = matrices
	return n
}

// NewPoints returns a point cloud node.
func NewPoints(name string, geo *Geometry, mat *Material) *Node {
	n := NewNode(name, KindPoints)
	n.Mesh = &Mesh{Geometry: geo, Material: mat}
	return n
}

// NewSprite returns a camera-facing text label.
func NewSprite(name, label string) *Node {
	n := NewNode(name, KindSprite)
	n.Label = label
	return n
}

// NewLOD returns an empty level-of-detail switch.
func NewLOD(name string) *Node {
	return NewNode(name, KindLOD)
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// Add attaches children, detaching each from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		c.RemoveFromParent()
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches child and reports whether it was a direct child.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseVisible is Traverse restricted to visible subtrees.
func (n *Node) TraverseVisible(fn func(*Node)) {
	if !n.Visible {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.TraverseVisible(fn)
	}
}

// FindByName returns the first node in the subtree with the given name.
func (n *Node) FindByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// Meshes returns every node in the subtree carrying geometry.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.Mesh != nil && c.Mesh.Geometry != nil {
			out = append(out, c)
		}
	})
	return out
}

// FirstMesh returns the first mesh node in depth-first order, or nil.
func (n *Node) FirstMesh() *Node {
	if n.Kind == KindMesh && n.Mesh != nil && n.Mesh.Geometry != nil {
		return n
	}
	for _, c := range n.children {
		if m := c.FirstMesh(); m != nil {
			return m
		}
	}
	return nil
}

// SetEuler sets the rotation from XYZ Euler angles in radians.
func (n *Node) SetEuler(x, y, z float64) {
	n.Rotation = mgl64.AnglesToQuat(x, y, z, mgl64.XYZ)
}

// SetUniformScale sets the same scale on all axes.
func (n *Node) SetUniformScale(s float64) {
	n.Scale = mgl64.Vec3{s, s, s}
}

// LocalMatrix composes translation, rotation and scale.
func (n *Node) LocalMatrix() mgl64.Mat4 {
	return Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix multiplies local matrices up to the root.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return mgl64.TransformCoordinate(mgl64.Vec3{}, n.WorldMatrix())
}

// WorldBounds returns the world-space box of every geometry in the subtree.
func (n *Node) WorldBounds() Box3 {
	box := EmptyBox()
	n.Traverse(func(c *Node) {
		if c.Mesh == nil || c.Mesh.Geometry == nil {
			return
		}
		local := c.Mesh.Geometry.BoundingBox()
		world := c.WorldMatrix()
		if c.Kind == KindInstanced {
			for _, inst := range c.Instances {
				box = box.Union(local.Transform(world.Mul4(inst)))
			}
			return
		}
		box = box.Union(local.Transform(world))
	})
	return box
}

// Clone deep-copies the subtree. Geometry and materials are shared with the
// source; transforms, flags, instances and user data are copied.
func (n *Node) Clone() *Node {
	cp := &Node{
		Name:          n.Name,
		Kind:          n.Kind,
		Position:      n.Position,
		Rotation:      n.Rotation,
		Scale:         n.Scale,
		Visible:       n.Visible,
		CastShadow:    n.CastShadow,
		ReceiveShadow: n.ReceiveShadow,
		FrustumCulled: n.FrustumCulled,
		Label:         n.Label,
		level:         n.level,
	}
	if n.Mesh != nil {
		m := *n.Mesh
		cp.Mesh = &m
	}
	if n.Instances != nil {
		cp.Instances = append([]mgl64.Mat4(nil), n.Instances...)
	}
	if n.UserData != nil {
		cp.UserData = make(map[string]any, len(n.UserData))
		for k, v := range n.UserData {
			cp.UserData[k] = v
		}
	}

	mapped := make(map[*Node]*Node, len(n.children))
	for _, c := range n.children {
		cc := c.Clone()
		mapped[c] = cc
		cp.Add(cc)
	}
	for _, lvl := range n.Levels {
		cp.Levels = append(cp.Levels, Level{Distance: lvl.Distance, Node: mapped[lvl.Node]})
	}
	return cp
}

// Release drops every reference held by the subtree so shared buffers can be
// reclaimed once no clone uses them.
func (n *Node) Release() {
	for _, c := range n.children {
		c.Release()
		c.parent = nil
	}
	n.children = nil
	n.Mesh = nil
	n.Instances = nil
	n.Levels = nil
	n.UserData = nil
}

// AddLevel attaches node as the detail tier used from distance onwards.
func (n *Node) AddLevel(node *Node, distance float64) {
	n.Add(node)
	n.Levels = append(n.Levels, Level{Distance: distance, Node: node})
	sort.SliceStable(n.Levels, func(i, j int) bool {
		return n.Levels[i].Distance < n.Levels[j].Distance
	})
	n.applyLevel()
}

// UpdateLevel shows the tier matching the camera distance and hides the rest.
func (n *Node) UpdateLevel(camera mgl64.Vec3) int {
	if len(n.Levels) == 0 {
		return -1
	}
	d := camera.Sub(n.WorldPosition()).Len()
	idx := 0
	for i := 1; i < len(n.Levels); i++ {
		if d >= n.Levels[i].Distance {
			idx = i
		} else {
			break
		}
	}
	n.level = idx
	n.applyLevel()
	return idx
}

// CurrentLevel returns the index of the visible tier.
func (n *Node) CurrentLevel() int {
	return n.level
}

func (n *Node) applyLevel() {
	for i, lvl := range n.Levels {
		if lvl.Node != nil {
			lvl.Node.Visible = i == n.level
		}
	}
}

// Compose builds a transform from translation, rotation and scale.
func Compose(pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(pos.X(), pos.Y(), pos.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
}
