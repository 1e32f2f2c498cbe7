package asset

// DefaultMaxTextureSize is the largest texture edge kept at full resolution.
const DefaultMaxTextureSize = 2048

// DefaultAnisotropy is applied to every texture.
const DefaultAnisotropy = 4

// Options controls how a model is prepared after decoding.
type Options struct {
	EnableDraco    bool
	EnableLOD      bool
	MaxTextureSize int
	CastShadow     bool
	ReceiveShadow  bool
	FrustumCulled  bool
}

// DefaultOptions enables every optimization.
func DefaultOptions() Options {
	return Options{
		EnableDraco:    true,
		EnableLOD:      true,
		MaxTextureSize: DefaultMaxTextureSize,
		CastShadow:     true,
		ReceiveShadow:  true,
		FrustumCulled:  true,
	}
}

func (o Options) maxTextureSize() int {
	if o.MaxTextureSize <= 0 {
		return DefaultMaxTextureSize
	}
	return o.MaxTextureSize
}
