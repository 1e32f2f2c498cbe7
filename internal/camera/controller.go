package camera

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/rng"
)

// Fixed flight geometry.
var (
	// LandingOffset is where a flight parks the camera relative to its target.
	LandingOffset = mgl64.Vec3{15, 25, 20}

	// LookAtLift raises the look-at point above the target.
	LookAtLift = mgl64.Vec3{0, 5, 0}

	DefaultPosition = mgl64.Vec3{0, 60, 80}
	DefaultLookAt   = mgl64.Vec3{}

	introWaypoints = []mgl64.Vec3{
		{0, 80, 80},   // north
		{-20, 60, 40}, // center
		{10, 70, 0},   // central highlands
		{20, 50, -40}, // south
		{0, 60, -20},  // overview
	}
)

const (
	introDuration = 10.0
	introTension  = 0.3
	introLookFrom = 10.0

	orbitPeriod = 10.0
	orbitLift   = 20.0
	orbitBob    = 5.0
)

// Config tunes the controller. Zero fields fall back to the defaults.
type Config struct {
	FlightDuration  float64
	TourLegDuration float64
	TourPause       float64
	ArcSamples      int
	ArcHeight       float64
	Tension         float64
	Centripetal     bool
	ResetDuration   float64
	Seed            uint64
}

// DefaultConfig returns the tour's flight settings.
func DefaultConfig() Config {
	return Config{
		FlightDuration:  4,
		TourLegDuration: 5,
		TourPause:       3,
		ArcSamples:      20,
		ArcHeight:       30,
		Tension:         geo.DefaultTension,
		ResetDuration:   2,
		Seed:            1,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FlightDuration <= 0 {
		c.FlightDuration = d.FlightDuration
	}
	if c.TourLegDuration <= 0 {
		c.TourLegDuration = d.TourLegDuration
	}
	if c.TourPause < 0 {
		c.TourPause = d.TourPause
	}
	if c.ArcSamples <= 0 {
		c.ArcSamples = d.ArcSamples
	}
	if c.Tension == 0 {
		c.Tension = d.Tension
	}
	if c.ResetDuration <= 0 {
		c.ResetDuration = d.ResetDuration
	}
	return c
}

// State is a snapshot of the controller.
type State struct {
	Pose    Pose
	Mode    Mode
	Flight  string
	Flying  bool
	Shaking bool
}

// Controller owns the camera transform during scripted motion. At most one
// animation is active; starting another drops the current one, whose
// completion channel then never closes. All motion advances in Tick.
type Controller struct {
	cfg       Config
	projector geo.Projector
	logger    *slog.Logger
	metrics   *flightMetrics
	rnd       *rng.Rand

	mu       sync.Mutex
	position mgl64.Vec3
	lookAt   mgl64.Vec3
	mode     Mode
	active   *timeline
	shake    *shake
}

// NewController creates an idle controller at the default pose.
func NewController(cfg Config, projector geo.Projector, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	c := &Controller{
		cfg:       cfg,
		projector: projector,
		logger:    logger,
		rnd:       rng.Derive(cfg.Seed, "camera"),
		position:  DefaultPosition,
		lookAt:    DefaultLookAt,
	}
	m, err := newFlightMetrics(c)
	if err != nil {
		return nil, err
	}
	c.metrics = m
	return c, nil
}

// Tick advances the active animation and the shake layer by dt seconds.
func (c *Controller) Tick(dt float64) {
	if dt < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		tl := c.active
		if tl.advance(dt) && c.active == tl {
			c.active = nil
			c.mode = Idle
			close(tl.done)
			c.metrics.completed.Add(context.Background(), 1, flightAttr(tl.kind))
			c.logger.Debug("camera animation finished", "flight", tl.kind)
		}
	}
	if c.shake != nil && c.shake.advance(dt) {
		c.shake = nil
	}
}

// start cancels the active animation and installs tl. The first frame is
// applied immediately so the pose reflects progress 0.
func (c *Controller) start(tl *timeline, mode Mode) <-chan struct{} {
	c.cancelLocked()
	c.active = tl
	c.mode = mode
	c.metrics.started.Add(context.Background(), 1, flightAttr(tl.kind))
	c.logger.Debug("camera animation started", "flight", tl.kind, "mode", mode)
	if tl.advance(0) {
		c.active = nil
		c.mode = Idle
		close(tl.done)
		c.metrics.completed.Add(context.Background(), 1, flightAttr(tl.kind))
	}
	return tl.done
}

func (c *Controller) cancelLocked() {
	if c.active == nil {
		c.mode = Idle
		return
	}
	c.metrics.cancelled.Add(context.Background(), 1, flightAttr(c.active.kind))
	c.logger.Debug("camera animation cancelled", "flight", c.active.kind)
	c.active = nil
	c.mode = Idle
}

// target returns the projected site position.
func (c *Controller) target(site catalog.Site) mgl64.Vec3 {
	return c.projector.Project(site.Coordinates)
}

// flightStep builds a point-to-point leg. The path is computed from the
// camera position at the moment the step begins.
func (c *Controller) flightStep(site catalog.Site, duration float64) step {
	target := c.target(site)
	end := target.Add(LandingOffset)
	look := target.Add(LookAtLift)

	var path *geo.Spline
	return step{
		duration: duration,
		ease:     geo.Power2InOut,
		begin: func() {
			points := geo.BuildArcPath(c.position, end, c.cfg.ArcSamples, c.cfg.ArcHeight)
			curve := geo.Uniform
			if c.cfg.Centripetal {
				curve = geo.Centripetal
			}
			// BuildArcPath always yields at least two points
			path, _ = geo.NewSplineOfType(points, curve, c.cfg.Tension)
		},
		update: func(p float64) {
			if p >= 1 {
				c.position = end
			} else {
				c.position = path.PointAt(p)
			}
			c.lookAt = look
		},
	}
}

// FlyToLocation flies to the site's landing point along an arc. The
// returned channel closes once, when the camera lands. duration <= 0 uses
// the configured default.
func (c *Controller) FlyToLocation(site catalog.Site, duration float64) <-chan struct{} {
	if duration <= 0 {
		duration = c.cfg.FlightDuration
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Info("flying to site", "site", site.ID, "duration", duration)
	return c.start(newTimeline("fly", c.flightStep(site, duration)), Flying)
}

// FlyTour visits sites in order, pausing at each one. The channel closes
// after the last pause. pause < 0 uses the configured default.
func (c *Controller) FlyTour(sites []catalog.Site, pauseSeconds float64) <-chan struct{} {
	if pauseSeconds < 0 {
		pauseSeconds = c.cfg.TourPause
	}
	steps := make([]step, 0, len(sites)*2)
	for _, site := range sites {
		steps = append(steps, c.flightStep(site, c.cfg.TourLegDuration), pause(pauseSeconds))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Info("starting tour", "sites", len(sites), "pause", pauseSeconds)
	return c.start(newTimeline("tour", steps...), Flying)
}

// OrbitLocation circles the site until superseded. One lap takes
// 10/speed seconds.
func (c *Controller) OrbitLocation(site catalog.Site, radius, speed float64) {
	if speed <= 0 {
		speed = 1
	}
	target := c.target(site)
	look := target.Add(LookAtLift)
	orbit := step{
		duration: orbitPeriod / speed,
		ease:     geo.None,
		repeat:   true,
		update: func(p float64) {
			theta := p * 2 * math.Pi
			c.position = mgl64.Vec3{
				target.X() + math.Cos(theta)*radius,
				target.Y() + orbitLift + math.Sin(theta*2)*orbitBob,
				target.Z() + math.Sin(theta)*radius,
			}
			c.lookAt = look
		},
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Info("orbiting site", "site", site.ID, "radius", radius, "speed", speed)
	c.start(newTimeline("orbit", orbit), Orbiting)
}

// IntroFlight sweeps over the whole map and tilts down towards the center.
func (c *Controller) IntroFlight() <-chan struct{} {
	// five fixed waypoints always make a valid spline
	path, _ := geo.NewSpline(introWaypoints, introTension)
	end := introWaypoints[len(introWaypoints)-1]
	intro := step{
		duration: introDuration,
		ease:     geo.Power1InOut,
		update: func(p float64) {
			if p >= 1 {
				c.position = end
			} else {
				c.position = path.PointAt(p)
			}
			c.lookAt = mgl64.Vec3{0, introLookFrom - p*introLookFrom, 0}
		},
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Info("intro flight")
	return c.start(newTimeline("intro", intro), Flying)
}

// ResetCamera cancels any flight and eases back to the default pose.
func (c *Controller) ResetCamera() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	var from mgl64.Vec3
	reset := step{
		duration: c.cfg.ResetDuration,
		ease:     geo.Power2InOut,
		begin: func() {
			from = c.position
		},
		update: func(p float64) {
			if p >= 1 {
				c.position = DefaultPosition
			} else {
				c.position = geo.LerpVec(from, DefaultPosition, p)
			}
			c.lookAt = DefaultLookAt
		},
	}
	return c.start(newTimeline("reset", reset), Flying)
}

// PlayKeyframes plays the site's authored camera path. Keyframe positions
// and look-at points are relative to the site. A site without keyframes
// gets a regular flight.
func (c *Controller) PlayKeyframes(site catalog.Site) <-chan struct{} {
	if len(site.CameraPath) == 0 {
		return c.FlyToLocation(site, 0)
	}
	target := c.target(site)
	steps := make([]step, 0, len(site.CameraPath))
	for _, kf := range site.CameraPath {
		ease, ok := geo.EaseByName(kf.Ease)
		if !ok && kf.Ease != "" {
			c.logger.Warn("unknown keyframe ease, using linear", "site", site.ID, "ease", kf.Ease)
		}
		toPos := target.Add(kf.Position)
		toLook := target.Add(kf.LookAt)
		var fromPos, fromLook mgl64.Vec3
		steps = append(steps, step{
			duration: kf.Duration,
			ease:     ease,
			begin: func() {
				fromPos, fromLook = c.position, c.lookAt
			},
			update: func(p float64) {
				if p >= 1 {
					c.position, c.lookAt = toPos, toLook
					return
				}
				c.position = geo.LerpVec(fromPos, toPos, p)
				c.lookAt = geo.LerpVec(fromLook, toLook, p)
			},
		})
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Info("playing keyframes", "site", site.ID, "keyframes", len(steps))
	return c.start(newTimeline("keyframes", steps...), Flying)
}

// Shake layers a short random jitter over the pose. A new shake replaces a
// running one. It never moves the base position.
func (c *Controller) Shake(intensity, duration float64) {
	if intensity <= 0 || duration <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shake = newShake(intensity, duration, c.rnd)
}

// StopCurrentFlight cancels the active animation, if any. Safe to call
// repeatedly.
func (c *Controller) StopCurrentFlight() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// SetState places the camera directly. An active animation overwrites it
// on the next tick.
func (c *Controller) SetState(position, lookAt mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.lookAt = lookAt
}

// Pose returns the pose to render, shake included.
func (c *Controller) Pose() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poseLocked()
}

func (c *Controller) poseLocked() Pose {
	pos := c.position
	if c.shake != nil {
		pos = pos.Add(c.shake.offset())
	}
	return newPose(pos, c.lookAt)
}

// State returns a snapshot of pose and flight status.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Pose:    c.poseLocked(),
		Mode:    c.mode,
		Flying:  c.mode == Flying,
		Shaking: c.shake != nil,
	}
	if c.active != nil {
		s.Flight = c.active.kind
	}
	return s
}

// Mode returns the current flight mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsFlying reports whether a terminating flight is in progress.
func (c *Controller) IsFlying() bool {
	return c.Mode() == Flying
}
