package router

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnhistory/tour3d/internal/camera"
	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/dispatcher"
	"github.com/vnhistory/tour3d/internal/scene"
	"github.com/vnhistory/tour3d/internal/world"
)

type fixedCamera struct{ pose camera.Pose }

func (c fixedCamera) Pose() camera.Pose { return c.pose }

type fakePicker struct {
	rays   []scene.Ray
	marker *world.Marker
}

func (p *fakePicker) Pick(r scene.Ray) (*world.Marker, bool) {
	p.rays = append(p.rays, r)
	return p.marker, p.marker != nil
}

type recordingSink struct {
	events []dispatcher.Event
	err    error
}

func (s *recordingSink) Dispatch(e dispatcher.Event) (any, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.events = append(s.events, e)
	return dispatcher.Queued, nil
}

func newTestRouter(marker *world.Marker) (*Router, *fakePicker, *recordingSink) {
	cam := fixedCamera{pose: camera.Pose{Position: mgl64.Vec3{0, 60, 80}, LookAt: mgl64.Vec3{}}}
	picker := &fakePicker{marker: marker}
	sink := &recordingSink{}
	return New(cam, picker, sink, camera.DefaultLens(), nil), picker, sink
}

func TestClick_HitQueuesFlyThenShow(t *testing.T) {
	m := &world.Marker{Site: catalog.Site{ID: catalog.DienBienPhu}}
	r, picker, sink := newTestRouter(m)

	id, hit, err := r.Click(0, 0)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, catalog.DienBienPhu, id)

	require.Len(t, sink.events, 2)
	assert.Equal(t, CmdFly, sink.events[0].Command)
	assert.Equal(t, CmdShow, sink.events[1].Command)
	assert.Equal(t, []string{catalog.DienBienPhu}, sink.events[0].Args)

	require.Len(t, picker.rays, 1)
	ray := picker.rays[0]
	assert.True(t, ray.Origin.ApproxEqual(mgl64.Vec3{0, 60, 80}))
	want := mgl64.Vec3{0, -60, -80}.Normalize()
	assert.True(t, ray.Direction.ApproxEqualThreshold(want, 1e-6), "center click follows the view direction, got %v", ray.Direction)
}

func TestClick_Miss(t *testing.T) {
	r, _, sink := newTestRouter(nil)

	id, hit, err := r.Click(0.9, -0.9)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, id)
	assert.Empty(t, sink.events)
}

func TestClick_SinkError(t *testing.T) {
	m := &world.Marker{Site: catalog.Site{ID: catalog.BaDinh}}
	r, _, sink := newTestRouter(m)
	sink.err = dispatcher.ErrQueueFull

	id, hit, err := r.Click(0, 0)
	assert.True(t, hit)
	assert.Equal(t, catalog.BaDinh, id)
	assert.True(t, errors.Is(err, dispatcher.ErrQueueFull))
}

func TestSetAspect(t *testing.T) {
	r, _, _ := newTestRouter(nil)

	r.SetAspect(4.0 / 3.0)
	assert.InDelta(t, 4.0/3.0, r.Lens().Aspect, 1e-12)

	r.SetAspect(0)
	assert.InDelta(t, 4.0/3.0, r.Lens().Aspect, 1e-12, "non-positive aspects are ignored")
}
