package diorama

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/catalog"
)

// Placement puts one clone of a model into a diorama.
type Placement struct {
	Model    string
	Name     string
	Position mgl64.Vec3
	Yaw      float64
	Scale    float64
	// YawJitter adds rand*YawJitter radians.
	YawJitter float64
	// ScaleJitter adds rand*ScaleJitter to Scale.
	ScaleJitter float64
	// Requires skips the placement unless this model is also present.
	Requires string
}

// Crowd places a grid of instances of one model in a single draw batch.
// Slot (row, col) sits at Origin + col*ColStep + row*RowStep plus a jitter
// of ±Jitter/2 per axis.
type Crowd struct {
	Model      string
	Name       string
	Rows, Cols int
	Origin     mgl64.Vec3
	ColStep    mgl64.Vec3
	RowStep    mgl64.Vec3
	Jitter     mgl64.Vec3
	Yaw        float64
	YawJitter  float64
}

// Recipe is the hand-authored layout of one diorama.
type Recipe struct {
	SiteID     string
	Name       string
	Placements []Placement
	Crowds     []Crowd
}

// Models lists every model key the recipe can use.
func (r Recipe) Models() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, p := range r.Placements {
		add(p.Model)
	}
	for _, c := range r.Crowds {
		add(c.Model)
	}
	return out
}

func at(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}

// DefaultRecipes returns the layouts of the sites that have a diorama.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			SiteID: catalog.DienBienPhu,
			Name:   "DienBienPhu",
			Placements: []Placement{
				{Model: ModelBunker, Name: "bunker", Position: at(0, 0, 0), Scale: 1},
				{Model: ModelMountains, Name: "mountains", Position: at(0, -5, -30), Scale: 2},
				{Model: ModelSandbags, Name: "sandbags-0", Position: at(-3, 0, 2), Scale: 1, YawJitter: math.Pi},
				{Model: ModelSandbags, Name: "sandbags-1", Position: at(3, 0, 2), Scale: 1, YawJitter: math.Pi},
				{Model: ModelSandbags, Name: "sandbags-2", Position: at(-4, 0, -1), Scale: 1, YawJitter: math.Pi},
				{Model: ModelSandbags, Name: "sandbags-3", Position: at(4, 0, -1), Scale: 1, YawJitter: math.Pi},
				{Model: ModelSoldierClimbing, Name: "hero-soldier", Position: at(-1, 2, 1), Scale: 1},
				{Model: ModelFlagPole, Name: "victory-flag", Position: at(0, 5, 0), Scale: 0.5},
				{Model: ModelTree, Name: "tree-0", Position: at(-8, 0, 5), Scale: 1, ScaleJitter: 0.3},
				{Model: ModelTree, Name: "tree-1", Position: at(8, 0, 5), Scale: 1, ScaleJitter: 0.3},
				{Model: ModelTree, Name: "tree-2", Position: at(-10, 0, -5), Scale: 1, ScaleJitter: 0.3},
			},
		},
		{
			SiteID: catalog.BaDinh,
			Name:   "BaDinh",
			Placements: []Placement{
				{Model: ModelBacHo, Name: "bac-ho", Position: at(0, 1, 0), Scale: 1},
				{Model: ModelFlagPole, Name: "flag-0", Position: at(-10, 0, -2), Scale: 0.8},
				{Model: ModelFlagPole, Name: "flag-1", Position: at(10, 0, -2), Scale: 0.8},
				{Model: ModelFlagPole, Name: "flag-2", Position: at(-12, 0, 8), Scale: 0.8},
				{Model: ModelFlagPole, Name: "flag-3", Position: at(12, 0, 8), Scale: 0.8},
				{Model: ModelCloud, Name: "cloud-0", Position: at(-15, 15, -10), Scale: 2, ScaleJitter: 1},
				{Model: ModelCloud, Name: "cloud-1", Position: at(10, 12, -8), Scale: 2, ScaleJitter: 1},
				{Model: ModelCloud, Name: "cloud-2", Position: at(0, 18, -12), Scale: 2, ScaleJitter: 1},
			},
			Crowds: []Crowd{{
				Model:     ModelCrowdPerson,
				Name:      "crowd",
				Rows:      5,
				Cols:      15,
				Origin:    at(-7.5*1.5, 0, 5),
				ColStep:   at(1.5, 0, 0),
				RowStep:   at(0, 0, 1.2),
				Jitter:    at(0.5, 0, 0.3),
				YawJitter: 0.4,
			}},
		},
		{
			SiteID: catalog.Saigon1975,
			Name:   "Saigon1975",
			Placements: []Placement{
				{Model: ModelPalace, Name: "palace", Position: at(0, 0, -15), Scale: 1.5},
				{Model: ModelTank, Name: "tank-390", Position: at(-10, 0, 5), Yaw: math.Pi / 6, Scale: 1},
				{Model: ModelFlagPole, Name: "tank-flag", Position: at(-10, 2, 5), Scale: 0.3, Requires: ModelTank},
				{Model: ModelTree, Name: "tree-0", Position: at(-15, 0, -5), Scale: 1.2},
				{Model: ModelTree, Name: "tree-1", Position: at(15, 0, -5), Scale: 1.2},
				{Model: ModelTree, Name: "tree-2", Position: at(-12, 0, 10), Scale: 1.2},
				{Model: ModelTree, Name: "tree-3", Position: at(12, 0, 10), Scale: 1.2},
			},
			Crowds: []Crowd{{
				Model:   ModelSoldierClimbing,
				Name:    "soldiers-following",
				Rows:    1,
				Cols:    8,
				Origin:  at(-12, 0, 5),
				ColStep: at(-1.5, 0, 0),
				Jitter:  at(1, 0, 3),
				Yaw:     math.Pi / 6,
			}},
		},
	}
}
