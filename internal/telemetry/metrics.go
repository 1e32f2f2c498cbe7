package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vnhistory/tour3d/internal/engine"
)

// Collector bundles the Prometheus gauges fed from engine snapshots.
type Collector struct {
	gatherer prometheus.Gatherer

	Frames         prometheus.Gauge
	PendingEvents  prometheus.Gauge
	CameraMode     prometheus.Gauge
	AssetsCached   prometheus.Gauge
	AssetFootprint prometheus.Gauge
	AssetBudget    prometheus.Gauge
	AssetEvictions prometheus.Gauge
	LoadProgress   prometheus.Gauge
}

// NewCollector registers the tour gauges against reg, defaulting to the
// global Prometheus registry when nil. Registering twice reuses the
// existing gauges.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Frames, "tour_frames", "Frames ticked since the engine started."},
		{&c.PendingEvents, "tour_commands_pending", "Commands waiting for the next frame."},
		{&c.CameraMode, "tour_camera_mode", "Camera mode: 0 idle, 1 flying, 2 orbiting."},
		{&c.AssetsCached, "tour_assets_cached", "Models resident in the cache."},
		{&c.AssetFootprint, "tour_asset_footprint_bytes", "Estimated bytes held by cached models."},
		{&c.AssetBudget, "tour_asset_budget_bytes", "Memory budget of the model cache."},
		{&c.AssetEvictions, "tour_asset_evictions", "Models evicted to stay within budget."},
		{&c.LoadProgress, "tour_load_progress_percent", "Average load progress of tracked models."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: g.name,
			Help: g.help,
		}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return c, nil
}

// Record sets every gauge from a snapshot.
func (c *Collector) Record(s engine.Status) {
	if c == nil {
		return
	}
	c.Frames.Set(float64(s.Frames))
	c.PendingEvents.Set(float64(s.Pending))
	c.CameraMode.Set(float64(s.Camera))
	c.AssetsCached.Set(float64(s.Assets.Cached))
	c.AssetFootprint.Set(float64(s.Assets.Footprint))
	c.AssetBudget.Set(float64(s.Assets.Budget))
	c.AssetEvictions.Set(float64(s.Assets.Evictions))
	c.LoadProgress.Set(s.Assets.Progress)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
