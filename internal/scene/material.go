package scene

// Side selects which triangle faces are rendered.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Texture describes an image bound to a material.
type Texture struct {
	Name   string
	Width  int
	Height int

	GenerateMipmaps bool
	Anisotropy      int

	// Downscale is set when the image exceeds the loader's size limit and
	// should be resampled to TargetSize on upload.
	Downscale  bool
	TargetSize int
}

// Material holds the surface settings the renderer needs.
type Material struct {
	Name        string
	Color       [4]float32
	Metallic    float32
	Roughness   float32
	Emissive    [3]float32
	Opacity     float32
	Transparent bool
	Side        Side
	Map         *Texture
}

// Clone returns an independent copy. The texture descriptor is copied too.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	cp := *m
	if m.Map != nil {
		tex := *m.Map
		cp.Map = &tex
	}
	return &cp
}
