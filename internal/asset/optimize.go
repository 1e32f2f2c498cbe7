package asset

import (
	"github.com/vnhistory/tour3d/internal/scene"
)

// optimize prepares a decoded model for rendering and returns its estimated
// footprint and model-space bounds.
func optimize(root *scene.Node, opts Options) (int64, scene.Box3) {
	seen := make(map[*scene.Material]bool)
	root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		n.CastShadow = opts.CastShadow
		n.ReceiveShadow = opts.ReceiveShadow
		n.FrustumCulled = opts.FrustumCulled

		if geo := n.Mesh.Geometry; geo != nil {
			if n.Kind == scene.KindMesh && !geo.HasNormals() {
				geo.ComputeVertexNormals()
			}
			geo.ComputeBoundingBox()
		}
		if mat := n.Mesh.Material; mat != nil && !seen[mat] {
			seen[mat] = true
			optimizeMaterial(mat, opts.maxTextureSize())
		}
	})
	return footprint(root), root.WorldBounds()
}

func optimizeMaterial(m *scene.Material, maxSize int) {
	if m.Map == nil {
		return
	}
	if m.Map.Width > maxSize || m.Map.Height > maxSize {
		m.Map.Downscale = true
		m.Map.TargetSize = maxSize
		m.Map.GenerateMipmaps = true
	}
	m.Map.Anisotropy = DefaultAnisotropy
}
