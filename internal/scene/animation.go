package scene

// AnimationClip is a named keyframe animation shipped with a model.
type AnimationClip struct {
	Name     string
	Duration float64
	Channels int
}
