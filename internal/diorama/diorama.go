package diorama

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/asset"
	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/rng"
	"github.com/vnhistory/tour3d/internal/scene"
)

// ErrUnknownDiorama is returned by Show for a site without a diorama.
var ErrUnknownDiorama = errors.New("unknown diorama")

// Diorama is the assembled scene of one site. Root exclusively owns the
// clones placed in it.
type Diorama struct {
	Name   string
	SiteID string
	Root   *scene.Node
	// Missing lists recipe models that were not loaded.
	Missing []string
}

// Visible reports the diorama's visibility flag.
func (d *Diorama) Visible() bool {
	return d.Root.Visible
}

// Assembler builds dioramas once and keeps at most one of them visible.
type Assembler struct {
	recipes   map[string]Recipe
	projector geo.Projector
	logger    *slog.Logger
	seed      uint64

	mu       sync.Mutex
	dioramas map[string]*Diorama
	order    []string
	current  string
}

// NewAssembler creates an Assembler for recipes. A nil recipes slice uses
// DefaultRecipes.
func NewAssembler(projector geo.Projector, recipes []Recipe, seed uint64, logger *slog.Logger) *Assembler {
	if recipes == nil {
		recipes = DefaultRecipes()
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assembler{
		recipes:   make(map[string]Recipe, len(recipes)),
		projector: projector,
		logger:    logger,
		seed:      seed,
		dioramas:  make(map[string]*Diorama),
	}
	for _, r := range recipes {
		a.recipes[r.SiteID] = r
	}
	return a
}

// BuildAll builds one hidden diorama for every site that has a recipe,
// positioned at the site's projected location. Models missing from assets
// are left out of the diorama. Sites already built are returned unchanged.
func (a *Assembler) BuildAll(assets map[string]*asset.LoadedAsset, sites []catalog.Site) map[string]*Diorama {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]*Diorama, len(sites))
	for _, site := range sites {
		if d, ok := a.dioramas[site.ID]; ok {
			out[site.ID] = d
			continue
		}
		recipe, ok := a.recipes[site.ID]
		if !ok {
			continue
		}
		d := a.build(recipe, assets)
		d.Root.Position = a.projector.Project(site.Coordinates)
		d.Root.Visible = false

		a.dioramas[site.ID] = d
		a.order = append(a.order, site.ID)
		out[site.ID] = d

		if len(d.Missing) > 0 {
			a.logger.Warn("diorama built without some models", "site", site.ID, "missing", d.Missing)
		} else {
			a.logger.Info("diorama built", "site", site.ID, "children", d.Root.NumChildren())
		}
	}
	return out
}

func (a *Assembler) build(r Recipe, assets map[string]*asset.LoadedAsset) *Diorama {
	d := &Diorama{Name: r.Name, SiteID: r.SiteID, Root: scene.NewGroup(r.Name)}
	rnd := rng.Derive(a.seed, r.SiteID)

	have := func(key string) bool {
		m, ok := assets[key]
		return ok && !m.Released()
	}
	for _, key := range r.Models() {
		if !have(key) {
			d.Missing = append(d.Missing, key)
		}
	}

	for _, p := range r.Placements {
		if !have(p.Model) || (p.Requires != "" && !have(p.Requires)) {
			continue
		}
		n := assets[p.Model].Instantiate()
		n.Name = p.Name
		n.Position = p.Position
		yaw := p.Yaw
		if p.YawJitter != 0 {
			yaw += rnd.Float64() * p.YawJitter
		}
		n.SetEuler(0, yaw, 0)
		scale := p.Scale
		if scale == 0 {
			scale = 1
		}
		if p.ScaleJitter != 0 {
			scale += rnd.Float64() * p.ScaleJitter
		}
		n.SetUniformScale(scale)
		d.Root.Add(n)
	}

	for _, c := range r.Crowds {
		if !have(c.Model) {
			continue
		}
		n, err := a.crowd(c, assets[c.Model], rnd)
		if err != nil {
			a.logger.Error("crowd skipped", "site", r.SiteID, "crowd", c.Name, "error", err)
			continue
		}
		d.Root.Add(n)
	}
	return d
}

func (a *Assembler) crowd(c Crowd, model *asset.LoadedAsset, rnd *rng.Rand) (*scene.Node, error) {
	count := c.Rows * c.Cols
	positions := make([]mgl64.Vec3, 0, count)
	rotations := make([]mgl64.Quat, 0, count)
	for row := 0; row < c.Rows; row++ {
		for col := 0; col < c.Cols; col++ {
			p := c.Origin.Add(c.ColStep.Mul(float64(col))).Add(c.RowStep.Mul(float64(row)))
			p = p.Add(mgl64.Vec3{
				rnd.Signed() * c.Jitter.X(),
				rnd.Signed() * c.Jitter.Y(),
				rnd.Signed() * c.Jitter.Z(),
			})
			yaw := c.Yaw + rnd.Signed()*c.YawJitter
			positions = append(positions, p)
			rotations = append(rotations, mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0}))
		}
	}
	n, err := asset.CreateInstancedMesh(model, count, positions, rotations, nil)
	if err != nil {
		return nil, fmt.Errorf("instancing %s: %w", c.Model, err)
	}
	n.Name = c.Name
	return n, nil
}

// Show makes the diorama of siteID the only visible one. An unknown id
// leaves visibility unchanged and returns ErrUnknownDiorama.
func (a *Assembler) Show(siteID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	d, ok := a.dioramas[siteID]
	if !ok {
		a.logger.Warn("show: no diorama for site", "site", siteID)
		return fmt.Errorf("%w: %s", ErrUnknownDiorama, siteID)
	}
	if prev, ok := a.dioramas[a.current]; ok && prev != d {
		prev.Root.Visible = false
	}
	d.Root.Visible = true
	a.current = siteID
	a.logger.Debug("showing diorama", "site", siteID)
	return nil
}

// HideAll clears visibility on every diorama.
func (a *Assembler) HideAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, d := range a.dioramas {
		d.Root.Visible = false
	}
	a.current = ""
}

// Get returns the diorama of siteID.
func (a *Assembler) Get(siteID string) (*Diorama, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.dioramas[siteID]
	return d, ok
}

// Visible returns the site whose diorama is shown, if any.
func (a *Assembler) Visible() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.current != ""
}

// Dioramas returns every built diorama in build order.
func (a *Assembler) Dioramas() []*Diorama {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Diorama, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.dioramas[id])
	}
	return out
}

// Release drops every diorama's clones. The assembler can build again
// afterwards.
func (a *Assembler) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, d := range a.dioramas {
		d.Root.Release()
	}
	clear(a.dioramas)
	a.order = nil
	a.current = ""
}
