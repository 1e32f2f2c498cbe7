package asset

import (
	"sync"

	"github.com/vnhistory/tour3d/internal/scene"
)

// LoadedAsset is a decoded, optimized model owned by the Loader's cache.
// Clones of Root placed in a scene are independent of the cache and are not
// counted against the memory budget.
type LoadedAsset struct {
	Path       string
	Root       *scene.Node
	Animations []scene.AnimationClip
	// Size is the estimated footprint in bytes: the sum of every mesh's
	// raw position buffer.
	Size   int64
	Bounds scene.Box3

	once sync.Once
}

// Release drops the asset's scene graph. It is safe to call more than once.
func (a *LoadedAsset) Release() {
	if a == nil {
		return
	}
	a.once.Do(func() {
		if a.Root != nil {
			a.Root.Release()
		}
		a.Root = nil
		a.Animations = nil
	})
}

// Released reports whether Release has run.
func (a *LoadedAsset) Released() bool {
	return a == nil || a.Root == nil
}

// Instantiate returns an independent deep copy of the asset's scene graph.
func (a *LoadedAsset) Instantiate() *scene.Node {
	if a.Released() {
		return nil
	}
	return a.Root.Clone()
}

// footprint sums the position buffers of all meshes below root.
func footprint(root *scene.Node) int64 {
	var total int64
	root.Traverse(func(n *scene.Node) {
		if n.Mesh != nil {
			total += n.Mesh.Geometry.PositionBytes()
		}
	})
	return total
}
