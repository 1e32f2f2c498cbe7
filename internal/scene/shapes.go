package scene

import (
	"github.com/chewxy/math32"
)

// NewPlaneGeometry returns a width x depth grid in the XZ plane centered on
// the origin and facing +Y. Vertices are laid out row by row from -Z to +Z,
// each row running from -X to +X.
func NewPlaneGeometry(width, depth float32, segX, segZ int) *Geometry {
	segX, segZ = max(segX, 1), max(segZ, 1)
	cols, rows := segX+1, segZ+1

	positions := make([]float32, 0, cols*rows*3)
	uvs := make([]float32, 0, cols*rows*2)
	for iz := 0; iz < rows; iz++ {
		z := float32(iz)/float32(segZ)*depth - depth/2
		for ix := 0; ix < cols; ix++ {
			x := float32(ix)/float32(segX)*width - width/2
			positions = append(positions, x, 0, z)
			uvs = append(uvs, float32(ix)/float32(segX), 1-float32(iz)/float32(segZ))
		}
	}

	indices := make([]uint32, 0, segX*segZ*6)
	for iz := 0; iz < segZ; iz++ {
		for ix := 0; ix < segX; ix++ {
			a := uint32(iz*cols + ix)
			b := uint32((iz+1)*cols + ix)
			c := b + 1
			d := a + 1
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	normals := make([]float32, len(positions))
	for i := 1; i < len(normals); i += 3 {
		normals[i] = 1
	}
	g := NewGeometry(positions, indices)
	g.Normals = normals
	g.UVs = uvs
	return g
}

// NewSphereGeometry returns a UV sphere of radius r.
func NewSphereGeometry(r float32, widthSegments, heightSegments int) *Geometry {
	ws, hs := max(widthSegments, 3), max(heightSegments, 2)

	positions := make([]float32, 0, (ws+1)*(hs+1)*3)
	normals := make([]float32, 0, (ws+1)*(hs+1)*3)
	for iy := 0; iy <= hs; iy++ {
		v := float32(iy) / float32(hs)
		for ix := 0; ix <= ws; ix++ {
			u := float32(ix) / float32(ws)
			nx := -math32.Cos(u*2*math32.Pi) * math32.Sin(v*math32.Pi)
			ny := math32.Cos(v * math32.Pi)
			nz := math32.Sin(u*2*math32.Pi) * math32.Sin(v*math32.Pi)
			positions = append(positions, nx*r, ny*r, nz*r)
			normals = append(normals, nx, ny, nz)
		}
	}

	var indices []uint32
	for iy := 0; iy < hs; iy++ {
		for ix := 0; ix < ws; ix++ {
			a := uint32(iy*(ws+1) + ix + 1)
			b := uint32(iy*(ws+1) + ix)
			c := uint32((iy+1)*(ws+1) + ix)
			d := uint32((iy+1)*(ws+1) + ix + 1)
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != hs-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	g := NewGeometry(positions, indices)
	g.Normals = normals
	return g
}

// NewCylinderGeometry returns an open tube centered on the origin along Y.
func NewCylinderGeometry(radiusTop, radiusBottom, height float32, radialSegments int) *Geometry {
	rs := max(radialSegments, 3)

	positions := make([]float32, 0, (rs+1)*2*3)
	for iy := 0; iy <= 1; iy++ {
		v := float32(iy)
		radius := v*(radiusBottom-radiusTop) + radiusTop
		y := -v*height + height/2
		for ix := 0; ix <= rs; ix++ {
			theta := float32(ix) / float32(rs) * 2 * math32.Pi
			positions = append(positions, radius*math32.Sin(theta), y, radius*math32.Cos(theta))
		}
	}

	indices := make([]uint32, 0, rs*6)
	for ix := 0; ix < rs; ix++ {
		a := uint32(ix)
		b := uint32(rs + 1 + ix)
		c := b + 1
		d := a + 1
		indices = append(indices, a, b, d, b, c, d)
	}

	g := NewGeometry(positions, indices)
	g.ComputeVertexNormals()
	return g
}
