package engine

import (
	"fmt"
	"strconv"

	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/dispatcher"
)

// Argument defaults for commands that leave them out.
const (
	DefaultOrbitRadius    = 20.0
	DefaultOrbitSpeed     = 1.0
	DefaultShakeIntensity = 1.0
	DefaultShakeDuration  = 0.5
)

// Command handlers run inside Tick, on the frame loop.

func (e *Engine) site(ev dispatcher.Event) (catalog.Site, error) {
	id := ev.Arg(0)
	if id == "" {
		return catalog.Site{}, fmt.Errorf("%s needs a site id", ev.Command)
	}
	return e.deps.Catalog.Get(id)
}

// floatArg parses argument i, returning def when it is absent.
func floatArg(ev dispatcher.Event, i int, def float64) (float64, error) {
	s := ev.Arg(i)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %d of %s: %w", i, ev.Command, err)
	}
	return v, nil
}

// fly <site> [duration]
func (e *Engine) handleFly(ev dispatcher.Event) (any, error) {
	site, err := e.site(ev)
	if err != nil {
		return nil, err
	}
	duration, err := floatArg(ev, 1, 0)
	if err != nil {
		return nil, err
	}
	done := e.camera.FlyToLocation(site, duration)
	e.landing, e.landingSite = done, site
	return done, nil
}

// show <site>
func (e *Engine) handleShow(ev dispatcher.Event) (any, error) {
	id := ev.Arg(0)
	if err := e.assembler.Show(id); err != nil {
		return nil, fmt.Errorf("showing %s: %w", id, err)
	}
	return nil, nil
}

// orbit <site> [radius] [speed]
func (e *Engine) handleOrbit(ev dispatcher.Event) (any, error) {
	site, err := e.site(ev)
	if err != nil {
		return nil, err
	}
	radius, err := floatArg(ev, 1, DefaultOrbitRadius)
	if err != nil {
		return nil, err
	}
	speed, err := floatArg(ev, 2, DefaultOrbitSpeed)
	if err != nil {
		return nil, err
	}
	e.landing = nil
	e.camera.OrbitLocation(site, radius, speed)
	return nil, nil
}

// tour [pause] [site...]; no sites means the whole catalog.
func (e *Engine) handleTour(ev dispatcher.Event) (any, error) {
	pause, err := floatArg(ev, 0, -1)
	if err != nil {
		return nil, err
	}
	sites := e.deps.Catalog.All()
	if len(ev.Args) > 1 {
		sites = make([]catalog.Site, 0, len(ev.Args)-1)
		for _, id := range ev.Args[1:] {
			s, err := e.deps.Catalog.Get(id)
			if err != nil {
				return nil, err
			}
			sites = append(sites, s)
		}
	}
	e.landing = nil
	return e.camera.FlyTour(sites, pause), nil
}

// shake [intensity] [duration]
func (e *Engine) handleShake(ev dispatcher.Event) (any, error) {
	intensity, err := floatArg(ev, 0, DefaultShakeIntensity)
	if err != nil {
		return nil, err
	}
	duration, err := floatArg(ev, 1, DefaultShakeDuration)
	if err != nil {
		return nil, err
	}
	e.camera.Shake(intensity, duration)
	return nil, nil
}

// keyframes <site>
func (e *Engine) handleReplay(ev dispatcher.Event) (any, error) {
	site, err := e.site(ev)
	if err != nil {
		return nil, err
	}
	e.landing = nil
	return e.camera.PlayKeyframes(site), nil
}
