package geo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wroge/wgs84"
)

// Default projection parameters, centered on Vietnam.
const (
	DefaultCenterLat      = 16.0
	DefaultCenterLng      = 106.0
	DefaultScale          = 20.0
	DefaultElevationScale = 0.5

	// DefaultMetersPerUnit keeps one degree of longitude at the equator
	// roughly as wide as in the linear projection.
	DefaultMetersPerUnit = 111319.490793 / DefaultScale
)

// Projector converts between geographic coordinates and the local scene frame.
// Longitude maps to x, latitude (negated) maps to z and altitude maps to y.
type Projector interface {
	Project(c Coordinate) mgl64.Vec3
	Unproject(p mgl64.Vec3) Coordinate
}

// Linear is an equirectangular projection around a fixed center.
type Linear struct {
	Center         Coordinate
	Scale          float64
	ElevationScale float64
}

// NewLinear returns the default linear projection.
func NewLinear() Linear {
	return Linear{
		Center:         Coordinate{Lat: DefaultCenterLat, Lng: DefaultCenterLng},
		Scale:          DefaultScale,
		ElevationScale: DefaultElevationScale,
	}
}

// Project maps c into scene units.
func (l Linear) Project(c Coordinate) mgl64.Vec3 {
	return mgl64.Vec3{
		(c.Lng - l.Center.Lng) * l.Scale,
		c.Alt * l.ElevationScale,
		-(c.Lat - l.Center.Lat) * l.Scale,
	}
}

// Unproject is the exact inverse of Project.
func (l Linear) Unproject(p mgl64.Vec3) Coordinate {
	c := Coordinate{
		Lng: p.X()/l.Scale + l.Center.Lng,
		Lat: -p.Z()/l.Scale + l.Center.Lat,
	}
	if l.ElevationScale != 0 {
		c.Alt = p.Y() / l.ElevationScale
	}
	return c
}

type transformFunc func(a, b, c float64) (float64, float64, float64)

// WebMercator projects through EPSG:3857 meters around a fixed center.
type WebMercator struct {
	Center         Coordinate
	MetersPerUnit  float64
	ElevationScale float64

	forward transformFunc
	inverse transformFunc
	cx, cy  float64
}

// NewWebMercator builds a projection centered on center.
func NewWebMercator(center Coordinate, metersPerUnit, elevationScale float64) (*WebMercator, error) {
	if metersPerUnit <= 0 {
		return nil, fmt.Errorf("meters per unit must be positive, got %f", metersPerUnit)
	}
	epsg := wgs84.EPSG()
	m := &WebMercator{
		Center:         center,
		MetersPerUnit:  metersPerUnit,
		ElevationScale: elevationScale,
		forward:        transformFunc(epsg.Transform(4326, 3857)),
		inverse:        transformFunc(epsg.Transform(3857, 4326)),
	}
	m.cx, m.cy, _ = m.forward(center.Lng, center.Lat, 0)
	return m, nil
}

// Project maps c into scene units.
func (m *WebMercator) Project(c Coordinate) mgl64.Vec3 {
	x, y, _ := m.forward(c.Lng, c.Lat, 0)
	return mgl64.Vec3{
		(x - m.cx) / m.MetersPerUnit,
		c.Alt * m.ElevationScale,
		-(y - m.cy) / m.MetersPerUnit,
	}
}

// Unproject is the inverse of Project.
func (m *WebMercator) Unproject(p mgl64.Vec3) Coordinate {
	x := p.X()*m.MetersPerUnit + m.cx
	y := -p.Z()*m.MetersPerUnit + m.cy
	lng, lat, _ := m.inverse(x, y, 0)
	c := Coordinate{Lat: lat, Lng: lng}
	if m.ElevationScale != 0 {
		c.Alt = p.Y() / m.ElevationScale
	}
	return c
}

// ProjectionKind selects a Projector implementation.
type ProjectionKind string

const (
	KindLinear      ProjectionKind = "linear"
	KindWebMercator ProjectionKind = "webmercator"
)

// ProjectionConfig describes how to build a Projector.
type ProjectionConfig struct {
	Kind           ProjectionKind
	Center         Coordinate
	Scale          float64
	ElevationScale float64
	MetersPerUnit  float64
}

// NewProjector builds the projector described by cfg.
func NewProjector(cfg ProjectionConfig) (Projector, error) {
	switch cfg.Kind {
	case KindLinear, "":
		if cfg.Scale == 0 {
			return nil, fmt.Errorf("linear projection scale must be non-zero")
		}
		return Linear{Center: cfg.Center, Scale: cfg.Scale, ElevationScale: cfg.ElevationScale}, nil
	case KindWebMercator:
		return NewWebMercator(cfg.Center, cfg.MetersPerUnit, cfg.ElevationScale)
	default:
		return nil, fmt.Errorf("unknown projection kind: %s", cfg.Kind)
	}
}
