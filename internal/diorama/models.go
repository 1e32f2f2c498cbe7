package diorama

// Model keys used by the recipes.
const (
	ModelBacHo           = "bacHo"
	ModelSoldierClimbing = "soldierClimbing"
	ModelCrowdPerson     = "crowdPerson"
	ModelBunker          = "bunker"
	ModelPalace          = "palace"
	ModelFlagPole        = "flagPole"
	ModelTank            = "tank"
	ModelSandbags        = "sandbags"
	ModelMountains       = "mountains"
	ModelMountainPack    = "mountainPack"
	ModelCloud           = "cloud"
	ModelTree            = "tree"
)

// DefaultModelFiles maps model keys to files under the asset root.
var DefaultModelFiles = map[string]string{
	ModelBacHo:           "BacHo.glb",
	ModelSoldierClimbing: "soldier-climbing.glb",
	ModelCrowdPerson:     "crowd-person.glb",
	ModelBunker:          "de-castries-bunker.glb",
	ModelPalace:          "dinhdoclap.glb",
	ModelFlagPole:        "vietnam-flag-pole.glb",
	ModelTank:            "Tank.glb",
	ModelSandbags:        "sandbags.glb",
	ModelMountains:       "dien-bien-mountains.glb",
	ModelMountainPack:    "vietnam-mountain-pack.glb",
	ModelCloud:           "cloud.glb",
	ModelTree:            "caytre.glb",
}

// ModelOrder is the load order of the model keys.
var ModelOrder = []string{
	ModelBacHo,
	ModelSoldierClimbing,
	ModelCrowdPerson,
	ModelBunker,
	ModelPalace,
	ModelFlagPole,
	ModelTank,
	ModelSandbags,
	ModelMountains,
	ModelMountainPack,
	ModelCloud,
	ModelTree,
}
