package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vnhistory/tour3d/internal/asset"
	"github.com/vnhistory/tour3d/internal/camera"
	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/diorama"
	"github.com/vnhistory/tour3d/internal/dispatcher"
	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/router"
	"github.com/vnhistory/tour3d/internal/scene"
	"github.com/vnhistory/tour3d/internal/world"
)

var (
	ErrAlreadyInitialized = errors.New("engine already initialized")
	ErrNotInitialized     = errors.New("engine not initialized")
	ErrDisposed           = errors.New("engine disposed")
)

// ProgressFunc receives the overall load percent and the model key that
// moved it.
type ProgressFunc func(percent float64, label string)

// Dependencies holds everything the engine is built from.
type Dependencies struct {
	Catalog   *catalog.Catalog
	Projector geo.Projector

	Source  asset.Source
	Decoder asset.Decoder
	Loader  asset.Config
	Options asset.Options
	// ModelFiles maps model keys to load paths. Nil uses
	// diorama.DefaultModelFiles.
	ModelFiles map[string]string
	// ModelOrder is the order keys are queued in. Nil uses
	// diorama.ModelOrder.
	ModelOrder []string

	Recipes     []diorama.Recipe
	DioramaSeed uint64

	Camera camera.Config
	World  world.Config
	Lens   camera.Lens

	// QueueLimit bounds commands waiting for the next frame.
	QueueLimit int
	// CommandLog receives the command audit trail. Nil logs through Logger.
	CommandLog dispatcher.Logger
	// OnLanded is called from Tick when a flight started by a fly command
	// reaches its site.
	OnLanded func(site catalog.Site)
	Logger   *slog.Logger
}

type lifecycle int

const (
	created lifecycle = iota
	ready
	disposed
)

// Engine wires the loader, dioramas, world and camera together and runs
// them from a single frame loop. Commands from other goroutines are queued
// and applied at the start of the next Tick.
type Engine struct {
	deps   Dependencies
	logger *slog.Logger

	mu         sync.Mutex
	state      lifecycle
	loader     *asset.Loader
	assets     map[string]*asset.LoadedAsset
	assembler  *diorama.Assembler
	world      *world.World
	camera     *camera.Controller
	dispatcher *dispatcher.Dispatcher
	router     *router.Router

	// owned by the frame loop
	landing     <-chan struct{}
	landingSite catalog.Site
	frames      int64
	elapsed     float64
	lastLanded  string

	logCtx atomic.Pointer[logContext]
}

// New validates deps and returns an engine that still needs Initialize.
func New(deps Dependencies) (*Engine, error) {
	if deps.Catalog == nil {
		return nil, errors.New("engine needs a site catalog")
	}
	if deps.Projector == nil {
		deps.Projector = geo.NewLinear()
	}
	if deps.ModelFiles == nil {
		deps.ModelFiles = diorama.DefaultModelFiles
	}
	if deps.ModelOrder == nil {
		deps.ModelOrder = diorama.ModelOrder
	}
	if deps.Lens == (camera.Lens{}) {
		deps.Lens = camera.DefaultLens()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.CommandLog == nil {
		deps.CommandLog = deps.Logger.With("component", "dispatcher")
	}
	return &Engine{deps: deps, logger: deps.Logger}, nil
}

// Initialize loads the models, assembles the dioramas, builds the world
// and starts the intro flight. Models that fail to load are skipped and
// their diorama parts left out. On error everything acquired so far is
// released and the engine can be initialized again.
func (e *Engine) Initialize(ctx context.Context, onProgress ProgressFunc) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case ready:
		return ErrAlreadyInitialized
	case disposed:
		return ErrDisposed
	}

	start := time.Now()
	defer func() {
		if err != nil {
			e.releaseLocked()
		}
	}()

	if err = e.loadModels(ctx, onProgress); err != nil {
		return err
	}

	sites := e.deps.Catalog.All()
	e.assembler = diorama.NewAssembler(e.deps.Projector, e.deps.Recipes, e.deps.DioramaSeed, e.logger.With("component", "diorama"))
	dioramas := e.assembler.BuildAll(e.assets, sites)

	e.world, err = world.Build(e.deps.World, e.deps.Projector, sites, e.logger.With("component", "world"))
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}
	for _, d := range e.assembler.Dioramas() {
		e.world.Add(d.Root)
	}

	e.camera, err = camera.NewController(e.deps.Camera, e.deps.Projector, e.logger.With("component", "camera"))
	if err != nil {
		return fmt.Errorf("creating camera controller: %w", err)
	}

	e.dispatcher, err = dispatcher.New(e.deps.CommandLog, e.deps.QueueLimit)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}
	e.registerCommands()
	e.router = router.New(e.camera, e.world, e.dispatcher, e.deps.Lens, e.logger.With("component", "router"))

	e.camera.IntroFlight()
	e.state = ready

	e.logger.Info("engine initialized",
		"models", len(e.assets),
		"dioramas", len(dioramas),
		"sites", len(sites),
		"footprint", humanize.IBytes(uint64(e.loader.Footprint())),
		"duration", time.Since(start),
	)
	return nil
}

// loadModels loads every model key and reports progress as the mean of
// the per-model percentages, so it only ever grows. Failed models count
// as finished.
func (e *Engine) loadModels(ctx context.Context, onProgress ProgressFunc) error {
	keys := make([]string, 0, len(e.deps.ModelOrder))
	byPath := make(map[string]string, len(e.deps.ModelOrder))
	for _, key := range e.deps.ModelOrder {
		path, ok := e.deps.ModelFiles[key]
		if !ok {
			e.logger.Warn("no file for model", "model", key)
			continue
		}
		keys = append(keys, key)
		byPath[path] = key
	}

	var (
		mu      sync.Mutex
		percent = make(map[string]float64, len(keys))
	)
	report := func(key string, p float64) {
		mu.Lock()
		defer mu.Unlock()
		if p <= percent[key] {
			return
		}
		percent[key] = p
		if onProgress == nil || len(keys) == 0 {
			return
		}
		var sum float64
		for _, v := range percent {
			sum += v
		}
		onProgress(sum/float64(len(keys)), key)
	}

	loader, err := asset.NewLoader(e.deps.Loader, asset.Dependencies{
		Source:  e.deps.Source,
		Decoder: e.deps.Decoder,
		Logger:  e.logger.With("component", "asset"),
		OnProgress: func(path string, p float64) {
			if key, ok := byPath[path]; ok {
				report(key, p)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("creating loader: %w", err)
	}
	e.loader = loader

	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		paths = append(paths, e.deps.ModelFiles[key])
	}
	loaded, loadErr := loader.LoadBatch(ctx, paths, e.deps.Options)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loading models: %w", err)
	}

	e.assets = make(map[string]*asset.LoadedAsset, len(loaded))
	for path, a := range loaded {
		e.assets[byPath[path]] = a
	}
	for _, key := range keys {
		if _, ok := e.assets[key]; !ok {
			report(key, 100)
		}
	}
	if loadErr != nil {
		e.logger.Warn("some models failed to load", "loaded", len(loaded), "total", len(keys), "error", loadErr)
	}
	return nil
}

func (e *Engine) registerCommands() {
	reg := func(cmd string, h dispatcher.HandlerFunc) {
		e.dispatcher.Register(cmd, h, dispatcher.Deferred(), dispatcher.Logged())
	}
	reg(router.CmdFly, e.handleFly)
	reg(router.CmdShow, e.handleShow)
	reg(router.CmdHide, func(dispatcher.Event) (any, error) {
		e.assembler.HideAll()
		return nil, nil
	})
	reg(router.CmdOrbit, e.handleOrbit)
	reg(router.CmdTour, e.handleTour)
	reg(router.CmdStop, func(dispatcher.Event) (any, error) {
		e.camera.StopCurrentFlight()
		e.landing = nil
		return nil, nil
	})
	reg(router.CmdReset, func(dispatcher.Event) (any, error) {
		e.landing = nil
		return e.camera.ResetCamera(), nil
	})
	reg(router.CmdShake, e.handleShake)
	reg(router.CmdIntro, func(dispatcher.Event) (any, error) {
		e.landing = nil
		return e.camera.IntroFlight(), nil
	})
	reg(router.CmdReplay, e.handleReplay)
}

// Enqueue queues a command for the next frame.
func (e *Engine) Enqueue(command string, args ...string) error {
	d, err := e.commands()
	if err != nil {
		return err
	}
	if _, err := d.Dispatch(dispatcher.Event{Command: command, Args: args}); err != nil {
		return fmt.Errorf("enqueueing %s: %w", command, err)
	}
	return nil
}

// Click hit-tests the pointer against the site markers and, on a hit,
// queues a flight to the site and its diorama.
func (e *Engine) Click(ndcX, ndcY float64) (string, bool, error) {
	r, err := e.input()
	if err != nil {
		return "", false, err
	}
	return r.Click(ndcX, ndcY)
}

// Select queues the same commands as clicking the site's marker.
func (e *Engine) Select(siteID string) error {
	if _, err := e.deps.Catalog.Get(siteID); err != nil {
		return err
	}
	r, err := e.input()
	if err != nil {
		return err
	}
	return r.Select(siteID)
}

// SetAspect updates the picking lens after a viewport resize.
func (e *Engine) SetAspect(aspect float64) {
	if r, err := e.input(); err == nil {
		r.SetAspect(aspect)
	}
}

func (e *Engine) commands() (*dispatcher.Dispatcher, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.readyLocked(); err != nil {
		return nil, err
	}
	return e.dispatcher, nil
}

func (e *Engine) input() (*router.Router, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.readyLocked(); err != nil {
		return nil, err
	}
	return e.router, nil
}

func (e *Engine) readyLocked() error {
	switch e.state {
	case created:
		return ErrNotInitialized
	case disposed:
		return ErrDisposed
	}
	return nil
}

// Tick runs one frame: queued commands first, then the camera, then the
// world. It must only be called from the frame loop goroutine.
func (e *Engine) Tick(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != ready {
		return
	}

	if n, err := e.dispatcher.Flush(); err != nil {
		e.logger.Warn("commands failed", "count", n, "error", err)
	}
	e.camera.Tick(dt)
	e.world.Update(dt)

	e.frames++
	e.elapsed += max(dt, 0)
	e.checkLandingLocked()
	e.publishLogContextLocked()
}

func (e *Engine) checkLandingLocked() {
	if e.landing == nil {
		return
	}
	select {
	case <-e.landing:
	default:
		return
	}
	site := e.landingSite
	e.landing = nil
	e.lastLanded = site.ID
	e.logger.Info("landed", "site", site.ID, "name", site.Name, "year", site.Year)
	if e.deps.OnLanded != nil {
		e.deps.OnLanded(site)
	}
}

// Pose returns the camera pose to render this frame.
func (e *Engine) Pose() camera.Pose {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.camera == nil {
		return camera.Pose{}
	}
	return e.camera.Pose()
}

// Scene returns the world root, or nil before Initialize.
func (e *Engine) Scene() *scene.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.world == nil {
		return nil
	}
	return e.world.Root
}

// Dispose releases the dioramas, the world and every cached model. It is
// safe to call more than once; the engine cannot be reused afterwards.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == disposed {
		return
	}
	e.releaseLocked()
	e.state = disposed
	e.logger.Info("engine disposed", "frames", e.frames)
}

func (e *Engine) releaseLocked() {
	if e.camera != nil {
		e.camera.StopCurrentFlight()
	}
	if e.dispatcher != nil {
		e.dispatcher.Clear()
	}
	if e.assembler != nil {
		e.assembler.Release()
	}
	if e.world != nil {
		e.world.Release()
	}
	if e.loader != nil {
		if err := e.loader.Close(); err != nil {
			e.logger.Warn("closing loader", "error", err)
		}
	}
	e.loader, e.assets, e.assembler, e.world = nil, nil, nil, nil
	e.camera, e.dispatcher, e.router = nil, nil, nil
	e.landing = nil
	e.logCtx.Store(nil)
}
