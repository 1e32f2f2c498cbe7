package asset

import (
	"errors"
	"fmt"
	"math"

	"github.com/vnhistory/tour3d/internal/scene"
)

// DefaultLODDistances are the camera distances at which the full, medium
// and low detail tiers take over.
var DefaultLODDistances = []float64{0, 20, 50}

// lodFactors is the fraction of vertices each tier keeps.
var lodFactors = []float64{1, 0.5, 0.2}

// minDecimateVertices is the smallest mesh that gets reduced tiers; smaller
// meshes keep full detail at every distance.
const minDecimateVertices = 100

// CreateLOD builds a three-tier level-of-detail switch from clones of the
// asset. distances defaults to DefaultLODDistances and must hold one
// ascending threshold per tier.
func CreateLOD(a *LoadedAsset, distances []float64) (*scene.Node, error) {
	if a.Released() {
		return nil, errors.New("asset released")
	}
	if len(distances) == 0 {
		distances = DefaultLODDistances
	}
	if len(distances) != len(lodFactors) {
		return nil, fmt.Errorf("want %d lod distances, got %d", len(lodFactors), len(distances))
	}
	for i := 1; i < len(distances); i++ {
		if distances[i] < distances[i-1] {
			return nil, fmt.Errorf("lod distances not ascending: %v", distances)
		}
	}

	lod := scene.NewLOD(a.Path + "_lod")
	for i, factor := range lodFactors {
		tier := a.Root.Clone()
		tier.Name = fmt.Sprintf("%s_lod%d", a.Path, i)
		if factor < 1 {
			reduceDetail(tier, factor)
		}
		lod.AddLevel(tier, distances[i])
	}
	return lod, nil
}

func reduceDetail(root *scene.Node, factor float64) {
	root.Traverse(func(n *scene.Node) {
		if n.Kind != scene.KindMesh || n.Mesh == nil {
			return
		}
		if n.Mesh.Geometry.VertexCount() > minDecimateVertices {
			n.Mesh.Geometry = decimate(n.Mesh.Geometry, factor)
		}
	})
}

// decimate keeps every 1/factor-th vertex as a non-indexed triangle list and
// recomputes normals. The source geometry is not modified.
func decimate(g *scene.Geometry, factor float64) *scene.Geometry {
	count := g.VertexCount()
	n := int(math.Floor(float64(count) * factor))
	n -= n % 3
	if n <= 0 {
		return g
	}

	hasUV := len(g.UVs) >= count*2
	pos := make([]float32, 0, n*3)
	var uvs []float32
	if hasUV {
		uvs = make([]float32, 0, n*2)
	}
	for i := 0; i < n; i++ {
		src := int(math.Floor(float64(i) / float64(n) * float64(count)))
		pos = append(pos, g.Positions[src*3:src*3+3]...)
		if hasUV {
			uvs = append(uvs, g.UVs[src*2:src*2+2]...)
		}
	}

	out := scene.NewGeometry(pos, nil)
	out.UVs = uvs
	out.ComputeVertexNormals()
	out.ComputeBoundingBox()
	return out
}
