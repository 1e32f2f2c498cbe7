package engine

import (
	"time"

	"github.com/vnhistory/tour3d/internal/camera"
)

// AssetStatus summarizes the model cache.
type AssetStatus struct {
	Loaded    int     `json:"loaded"`
	Cached    int     `json:"cached"`
	Footprint int64   `json:"footprintBytes"`
	Budget    int64   `json:"budgetBytes"`
	Evictions int64   `json:"evictions"`
	Progress  float64 `json:"progress"`
}

// Status is a point-in-time snapshot of the engine for telemetry.
type Status struct {
	Time       time.Time   `json:"time"`
	Ready      bool        `json:"ready"`
	Frames     int64       `json:"frames"`
	Elapsed    float64     `json:"elapsed"`
	Camera     camera.Mode `json:"-"`
	CameraMode string      `json:"cameraMode"`
	Flight     string      `json:"flight,omitempty"`
	Shaking    bool        `json:"shaking"`
	Position   [3]float64  `json:"position"`
	Diorama    string      `json:"diorama,omitempty"`
	LastLanded string      `json:"lastLanded,omitempty"`
	Pending    int         `json:"pending"`
	Assets     AssetStatus `json:"assets"`
}

// Status returns a snapshot. It is safe to call from any goroutine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		Time:       time.Now(),
		Ready:      e.state == ready,
		Frames:     e.frames,
		Elapsed:    e.elapsed,
		LastLanded: e.lastLanded,
	}
	if e.camera != nil {
		cs := e.camera.State()
		s.Camera = cs.Mode
		s.CameraMode = cs.Mode.String()
		s.Flight = cs.Flight
		s.Shaking = cs.Shaking
		s.Position = [3]float64(cs.Pose.Position)
	}
	if e.assembler != nil {
		s.Diorama, _ = e.assembler.Visible()
	}
	if e.dispatcher != nil {
		s.Pending = e.dispatcher.Pending()
	}
	if e.loader != nil {
		s.Assets = AssetStatus{
			Loaded:    len(e.assets),
			Cached:    e.loader.Len(),
			Footprint: e.loader.Footprint(),
			Budget:    e.loader.Budget(),
			Evictions: e.loader.Evictions(),
			Progress:  e.loader.TotalProgress(),
		}
	}
	return s
}

// LogAttrs returns the visible diorama and flight mode as of the last
// frame. It never blocks, so log handlers may call it while the engine
// holds its lock.
func (e *Engine) LogAttrs() (site, flight string) {
	if c := e.logCtx.Load(); c != nil {
		return c.site, c.flight
	}
	return "", ""
}

type logContext struct {
	site   string
	flight string
}

func (e *Engine) publishLogContextLocked() {
	c := &logContext{}
	if e.assembler != nil {
		c.site, _ = e.assembler.Visible()
	}
	if e.camera != nil {
		c.flight = e.camera.Mode().String()
	}
	e.logCtx.Store(c)
}
