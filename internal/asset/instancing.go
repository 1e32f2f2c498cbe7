package asset

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/scene"
)

// Scale sets instance scale for CreateInstancedMesh. Use UniformScale or
// PerInstanceScale; nil means unit scale.
type Scale interface {
	at(i int) float64
}

// UniformScale applies one factor to every instance.
type UniformScale float64

func (s UniformScale) at(int) float64 { return float64(s) }

// PerInstanceScale gives each instance its own uniform factor. Missing or
// zero entries mean 1.
type PerInstanceScale []float64

func (s PerInstanceScale) at(i int) float64 {
	if i < len(s) && s[i] != 0 {
		return s[i]
	}
	return 1
}

// CreateInstancedMesh draws the asset's first mesh count times in one batch.
// Missing positions default to the origin and missing rotations to identity.
func CreateInstancedMesh(a *LoadedAsset, count int, positions []mgl64.Vec3, rotations []mgl64.Quat, scale Scale) (*scene.Node, error) {
	if a.Released() {
		return nil, errors.New("asset released")
	}
	if count <= 0 {
		return nil, fmt.Errorf("instance count must be positive, got %d", count)
	}
	src := a.Root.FirstMesh()
	if src == nil || src.Mesh == nil || src.Mesh.Geometry == nil {
		return nil, &AssetShapeError{Path: a.Path}
	}

	matrices := make([]mgl64.Mat4, count)
	for i := range matrices {
		var pos mgl64.Vec3
		if i < len(positions) {
			pos = positions[i]
		}
		rot := mgl64.QuatIdent()
		if i < len(rotations) {
			rot = rotations[i]
		}
		s := 1.0
		if scale != nil {
			s = scale.at(i)
		}
		matrices[i] = scene.Compose(pos, rot, mgl64.Vec3{s, s, s})
	}

	n := scene.NewInstanced(a.Path+"_instanced", &scene.Mesh{
		Geometry: src.Mesh.Geometry,
		Material: src.Mesh.Material,
	}, matrices)
	n.CastShadow = true
	n.ReceiveShadow = true
	n.FrustumCulled = true
	return n, nil
}
