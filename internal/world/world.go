package world

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/rng"
	"github.com/vnhistory/tour3d/internal/scene"
)

const (
	DefaultSegments       = 200
	DefaultParticles      = 500
	DefaultParticleSpread = 200.0
	DefaultParticleHeight = 100.0

	waterScale = 1.5
	waterLevel = -0.5
	waterBob   = 0.1

	// particle drift per second
	particleFall = 1.2
	particleSpin = 0.006
)

// Config controls the static world geometry.
type Config struct {
	Segments       int
	Bounds         geo.Bounds
	ElevationScale float64
	Particles      int
	ParticleSpread float64
	ParticleHeight float64
	Seed           uint64
}

// DefaultConfig returns the Vietnam map settings.
func DefaultConfig() Config {
	return Config{
		Segments:       DefaultSegments,
		Bounds:         geo.VietnamBounds,
		ElevationScale: geo.DefaultElevationScale,
		Particles:      DefaultParticles,
		ParticleSpread: DefaultParticleSpread,
		ParticleHeight: DefaultParticleHeight,
		Seed:           1,
	}
}

// Validate rejects configs that cannot produce a terrain.
func (c Config) Validate() error {
	if c.Segments <= 0 {
		return fmt.Errorf("terrain segments must be positive, got %d", c.Segments)
	}
	if c.Bounds.North <= c.Bounds.South || c.Bounds.East <= c.Bounds.West {
		return errors.New("terrain bounds are empty")
	}
	if _, err := c.Bounds.Outline(); err != nil {
		return fmt.Errorf("terrain bounds: %w", err)
	}
	if c.Particles < 0 {
		return fmt.Errorf("particle count must not be negative, got %d", c.Particles)
	}
	return nil
}

// Fog is a linear distance fog.
type Fog struct {
	Color [3]float32
	Near  float64
	Far   float64
}

// World is the static map: terrain, sea, atmosphere and site markers.
// Dioramas are attached to Root by the caller.
type World struct {
	Root      *scene.Node
	Terrain   *scene.Node
	Water     *scene.Node
	Particles *scene.Node
	Fog       Fog

	markerGroup *scene.Node
	markers     []*Marker
	bySite      map[string]*Marker
	height      *Heightfield
	cfg         Config

	mu      sync.Mutex
	elapsed float64
}

// Build creates the world once. sites get one marker each at their
// projected position.
func Build(cfg Config, projector geo.Projector, sites []catalog.Site, logger *slog.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	rnd := rng.Derive(cfg.Seed, "world")

	w := &World{
		Root:   scene.NewGroup("world"),
		bySite: make(map[string]*Marker, len(sites)),
		cfg:    cfg,
		Fog:    Fog{Color: [3]float32{0x87 / 255.0, 0xce / 255.0, 0xeb / 255.0}, Near: 50, Far: 200},
	}

	height, geom := buildTerrain(cfg, projector, rnd)
	w.height = height
	w.Terrain = scene.NewMesh("terrain", geom, &scene.Material{
		Name:      "land",
		Color:     [4]float32{0x3a / 255.0, 0x5f / 255.0, 0x3a / 255.0, 1},
		Roughness: 0.8,
		Metallic:  0.2,
		Opacity:   1,
	})
	w.Terrain.CastShadow = true
	w.Terrain.ReceiveShadow = true

	center := mgl64.Vec3{height.Min.X() + height.Width/2, 0, height.Min.Z() + height.Depth/2}
	w.Water = scene.NewMesh("water",
		scene.NewPlaneGeometry(float32(height.Width*waterScale), float32(height.Depth*waterScale), 1, 1),
		&scene.Material{
			Name:        "sea",
			Color:       [4]float32{0x1e / 255.0, 0x40 / 255.0, 0xaf / 255.0, 1},
			Roughness:   0.3,
			Metallic:    0.7,
			Opacity:     0.9,
			Transparent: true,
		})
	w.Water.Position = center.Add(mgl64.Vec3{0, waterLevel, 0})
	w.Water.ReceiveShadow = true

	w.Particles = buildParticles(cfg, rnd)

	w.markerGroup = scene.NewGroup("markers")
	for _, site := range sites {
		m := newMarker(site, projector.Project(site.Coordinates))
		w.markers = append(w.markers, m)
		w.bySite[site.ID] = m
		w.markerGroup.Add(m.Root)
	}

	w.Root.Add(w.Terrain, w.Water, w.Particles, w.markerGroup)

	logger.Info("world built",
		"segments", cfg.Segments,
		"width", math.Round(height.Width),
		"depth", math.Round(height.Depth),
		"markers", len(w.markers),
		"particles", cfg.Particles,
	)
	return w, nil
}

func buildParticles(cfg Config, rnd *rng.Rand) *scene.Node {
	positions := make([]float32, 0, cfg.Particles*3)
	for i := 0; i < cfg.Particles; i++ {
		positions = append(positions,
			float32(rnd.Signed()*cfg.ParticleSpread),
			float32(rnd.Float64()*cfg.ParticleHeight),
			float32(rnd.Signed()*cfg.ParticleSpread),
		)
	}
	n := scene.NewPoints("atmosphere", scene.NewGeometry(positions, nil), &scene.Material{
		Name:        "dust",
		Color:       [4]float32{1, 1, 1, 1},
		Opacity:     0.6,
		Transparent: true,
	})
	n.FrustumCulled = false
	return n
}

// Add attaches nodes, typically dioramas, under the world root.
func (w *World) Add(nodes ...*scene.Node) {
	w.Root.Add(nodes...)
}

// TerrainHeightAt returns the terrain height under (x, z), or 0 off the map.
func (w *World) TerrainHeightAt(x, z float64) float64 {
	return w.height.HeightAt(x, z)
}

// Heightfield exposes the sampled terrain grid.
func (w *World) Heightfield() *Heightfield {
	return w.height
}

// Markers returns the site markers in catalog order.
func (w *World) Markers() []*Marker {
	return w.markers
}

// Marker returns the marker of siteID.
func (w *World) Marker(siteID string) (*Marker, bool) {
	m, ok := w.bySite[siteID]
	return m, ok
}

// Pick returns the nearest marker hit by r. It may run concurrently with
// Update.
func (w *World) Pick(r scene.Ray) (*Marker, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		best  *Marker
		bestD = math.Inf(1)
	)
	for _, m := range w.markers {
		if d, ok := m.Intersect(r); ok && d < bestD {
			best, bestD = m, d
		}
	}
	return best, best != nil
}

// Elapsed returns the animation time accumulated by Update.
func (w *World) Elapsed() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.elapsed
}

// Update advances the ambient animation by dt seconds: the sea bobs, the
// markers pulse and the dust drifts down and wraps to the top.
func (w *World) Update(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if dt <= 0 {
		return
	}
	w.elapsed += dt
	t := w.elapsed

	w.Water.Position = mgl64.Vec3{w.Water.Position.X(), waterLevel + math.Sin(t)*waterBob, w.Water.Position.Z()}

	for _, m := range w.markers {
		m.pulse(t)
	}

	if w.Particles.Mesh == nil {
		return
	}
	w.Particles.Rotation = mgl64.QuatRotate(t*particleSpin, mgl64.Vec3{0, 1, 0})
	pos := w.Particles.Mesh.Geometry.Positions
	fall := float32(particleFall * dt)
	top := float32(w.cfg.ParticleHeight)
	for i := 1; i < len(pos); i += 3 {
		pos[i] -= fall
		if pos[i] < 0 {
			pos[i] = top
		}
	}
}

// Release drops the world's geometry.
func (w *World) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Root.Release()
	w.markers = nil
	clear(w.bySite)
}
