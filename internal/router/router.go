package router

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/vnhistory/tour3d/internal/camera"
	"github.com/vnhistory/tour3d/internal/dispatcher"
	"github.com/vnhistory/tour3d/internal/scene"
	"github.com/vnhistory/tour3d/internal/world"
)

// Commands understood by the engine.
const (
	CmdFly    = "fly"
	CmdShow   = "show"
	CmdHide   = "hide"
	CmdOrbit  = "orbit"
	CmdTour   = "tour"
	CmdStop   = "stop"
	CmdReset  = "reset"
	CmdShake  = "shake"
	CmdIntro  = "intro"
	CmdReplay = "keyframes"
)

// Camera supplies the pose clicks are cast from.
type Camera interface {
	Pose() camera.Pose
}

// Picker hit-tests a ray against site markers.
type Picker interface {
	Pick(r scene.Ray) (*world.Marker, bool)
}

// Sink receives routed commands.
type Sink interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// Router turns pointer input into engine commands. It never touches the
// camera or the scene graph directly; commands run on the next frame.
type Router struct {
	camera Camera
	picker Picker
	sink   Sink
	logger *slog.Logger

	mu   sync.RWMutex
	lens camera.Lens
}

// New creates a Router.
func New(cam Camera, picker Picker, sink Sink, lens camera.Lens, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{camera: cam, picker: picker, sink: sink, lens: lens, logger: logger}
}

// SetAspect updates the lens aspect after a viewport resize.
func (r *Router) SetAspect(aspect float64) {
	if aspect <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lens.Aspect = aspect
}

// Lens returns the lens used for picking.
func (r *Router) Lens() camera.Lens {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lens
}

// Click hit-tests the pointer at normalized device coordinates (x, y in
// [-1, 1], +y up). On a marker hit it queues a flight to the site followed
// by its diorama and returns the site id.
func (r *Router) Click(ndcX, ndcY float64) (string, bool, error) {
	ray := r.Lens().Ray(r.camera.Pose(), ndcX, ndcY)

	m, ok := r.picker.Pick(ray)
	if !ok {
		return "", false, nil
	}

	id := m.Site.ID
	r.logger.Debug("marker clicked", "site", id)
	if err := r.Select(id); err != nil {
		return id, true, err
	}
	return id, true, nil
}

// Select queues the same commands as clicking the site's marker.
func (r *Router) Select(siteID string) error {
	for _, cmd := range []string{CmdFly, CmdShow} {
		if _, err := r.sink.Dispatch(dispatcher.Event{Command: cmd, Args: []string{siteID}}); err != nil {
			return fmt.Errorf("routing %s %s: %w", cmd, siteID, err)
		}
	}
	return nil
}
