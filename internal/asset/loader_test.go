package asset

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnhistory/tour3d/internal/cache"
	"github.com/vnhistory/tour3d/internal/scene"
)

// spyDecoder builds a one-mesh model per path and counts decodes.
type spyDecoder struct {
	mu       sync.Mutex
	calls    map[string]int
	vertices map[string]int
	fail     map[string]error
	gate     chan struct{}
	lastData []byte
}

func newSpyDecoder() *spyDecoder {
	return &spyDecoder{
		calls:    make(map[string]int),
		vertices: make(map[string]int),
		fail:     make(map[string]error),
	}
}

func (d *spyDecoder) Decode(_ context.Context, req Request) (*Model, error) {
	d.mu.Lock()
	d.calls[req.Path]++
	d.lastData = req.Data
	gate := d.gate
	err := d.fail[req.Path]
	n := d.vertices[req.Path]
	d.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		n = 3
	}
	root := scene.NewGroup(req.Path)
	root.Add(scene.NewMesh("body", scene.NewGeometry(make([]float32, n*3), nil), &scene.Material{}))
	return &Model{Root: root}, nil
}

func (d *spyDecoder) count(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[path]
}

func newTestLoader(t *testing.T, budget int64, policy cache.Policy, paths ...string) (*Loader, *spyDecoder) {
	t.Helper()
	src := NewMemorySource()
	for _, p := range paths {
		src.Put(p, []byte("model:"+p))
	}
	dec := newSpyDecoder()
	l, err := NewLoader(Config{Budget: budget, Policy: policy}, Dependencies{Source: src, Decoder: dec})
	require.NoError(t, err)
	return l, dec
}

func TestLoader_LoadDedupesSequential(t *testing.T) {
	l, dec := newTestLoader(t, 1<<20, cache.FIFO, "a.glb")
	ctx := context.Background()

	first, err := l.Load(ctx, "a.glb", DefaultOptions())
	require.NoError(t, err)
	second, err := l.Load(ctx, "a.glb", DefaultOptions())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, dec.count("a.glb"))
	assert.Equal(t, int64(36), first.Size)
	assert.Equal(t, int64(36), l.Footprint())
}

func TestLoader_LoadDedupesConcurrent(t *testing.T) {
	l, dec := newTestLoader(t, 1<<20, cache.FIFO, "a.glb")
	dec.gate = make(chan struct{})

	const callers = 8
	results := make([]*LoadedAsset, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := l.Load(context.Background(), "a.glb", DefaultOptions())
			assert.NoError(t, err)
			results[i] = a
		}()
	}

	require.Eventually(t, func() bool { return dec.count("a.glb") == 1 }, time.Second, time.Millisecond)
	close(dec.gate)
	wg.Wait()

	assert.Equal(t, 1, dec.count("a.glb"))
	for _, a := range results {
		assert.Same(t, results[0], a)
	}
}

func TestLoader_FIFOEviction(t *testing.T) {
	// each model is 10 vertices = 120 bytes
	l, dec := newTestLoader(t, 250, cache.FIFO, "a", "b", "c")
	for _, p := range []string{"a", "b", "c"} {
		dec.vertices[p] = 10
	}
	ctx := context.Background()

	a, err := l.Load(ctx, "a", DefaultOptions())
	require.NoError(t, err)
	_, err = l.Load(ctx, "b", DefaultOptions())
	require.NoError(t, err)
	// re-requesting a does not protect it under FIFO
	_, err = l.Load(ctx, "a", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, int64(240), l.Footprint())

	_, err = l.Load(ctx, "c", DefaultOptions())
	require.NoError(t, err)

	assert.False(t, l.Cached("a"))
	assert.True(t, l.Cached("b"))
	assert.True(t, l.Cached("c"))
	assert.True(t, a.Released())
	assert.Equal(t, int64(240), l.Footprint())
	assert.Equal(t, int64(1), l.Evictions())
	assert.Zero(t, l.Progress("a"), "evicted paths are no longer tracked")
}

func TestLoader_LRUEviction(t *testing.T) {
	l, dec := newTestLoader(t, 250, cache.LRU, "a", "b", "c")
	for _, p := range []string{"a", "b", "c"} {
		dec.vertices[p] = 10
	}
	ctx := context.Background()

	for _, p := range []string{"a", "b", "a", "c"} {
		_, err := l.Load(ctx, p, DefaultOptions())
		require.NoError(t, err)
	}

	assert.True(t, l.Cached("a"))
	assert.False(t, l.Cached("b"))
}

func TestLoader_BudgetScenario(t *testing.T) {
	src := NewMemorySource()
	src.Put("a", []byte("a"))
	src.Put("b", []byte("b"))
	dec := newSpyDecoder()
	dec.vertices["a"] = 10
	dec.vertices["b"] = 20
	sizeA := int64(10 * 12)
	sizeB := int64(20 * 12)

	l, err := NewLoader(Config{Budget: sizeA + 1}, Dependencies{Source: src, Decoder: dec})
	require.NoError(t, err)

	ctx := context.Background()
	a, err := l.Load(ctx, "a", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, sizeA, a.Size)

	b, err := l.Load(ctx, "b", DefaultOptions())
	require.NoError(t, err)

	assert.False(t, l.Cached("a"))
	assert.True(t, a.Released())
	assert.True(t, l.Cached("b"))
	assert.False(t, b.Released())
	assert.Equal(t, sizeB, l.Footprint())
}

func TestLoader_FailedLoadIsNotCached(t *testing.T) {
	l, dec := newTestLoader(t, 1<<20, cache.FIFO, "a", "broken")
	dec.fail["broken"] = errors.New("bad magic")
	ctx := context.Background()

	_, err := l.Load(ctx, "a", DefaultOptions())
	require.NoError(t, err)

	_, err = l.Load(ctx, "broken", DefaultOptions())
	var loadErr *AssetLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "broken", loadErr.Path)
	assert.ErrorContains(t, err, "bad magic")

	assert.False(t, l.Cached("broken"))
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, int64(36), l.Footprint())
	assert.Zero(t, l.Progress("broken"))

	// a retry decodes again
	_, _ = l.Load(ctx, "broken", DefaultOptions())
	assert.Equal(t, 2, dec.count("broken"))
}

func TestLoader_MissingSource(t *testing.T) {
	l, dec := newTestLoader(t, 1<<20, cache.FIFO)

	_, err := l.Load(context.Background(), "nowhere.glb", DefaultOptions())
	var loadErr *AssetLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "nowhere.glb", loadErr.Path)
	assert.Zero(t, dec.count("nowhere.glb"))
}

func TestLoader_LoadBatchIsolatesFailures(t *testing.T) {
	l, dec := newTestLoader(t, 1<<20, cache.FIFO, "a", "b", "broken")
	dec.fail["broken"] = errors.New("truncated")

	assets, err := l.LoadBatch(context.Background(), []string{"a", "missing", "broken", "b"}, DefaultOptions())
	require.Error(t, err)

	assert.Len(t, assets, 2)
	assert.Contains(t, assets, "a")
	assert.Contains(t, assets, "b")

	var loadErr *AssetLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorContains(t, err, "missing")
	assert.ErrorContains(t, err, "truncated")
	assert.Equal(t, 2, l.Len())
}

func TestLoader_LoadBatchAllSucceed(t *testing.T) {
	l, _ := newTestLoader(t, 1<<20, cache.FIFO, "a", "b", "c")

	assets, err := l.LoadBatch(context.Background(), []string{"a", "b", "c", "a"}, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, assets, 3)
}

func TestLoader_Progress(t *testing.T) {
	l, dec := newTestLoader(t, 1<<20, cache.FIFO, "a", "b")
	assert.Equal(t, float64(100), l.TotalProgress(), "nothing tracked")
	assert.Zero(t, l.Progress("a"))

	var mu sync.Mutex
	reported := map[string]float64{}
	l.deps.OnProgress = func(path string, p float64) {
		mu.Lock()
		reported[path] = p
		mu.Unlock()
	}

	ctx := context.Background()
	_, err := l.Load(ctx, "a", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, float64(100), l.Progress("a"))

	dec.gate = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = l.Load(ctx, "b", DefaultOptions())
	}()

	// b is read but still decoding
	require.Eventually(t, func() bool { return l.Progress("b") == 99 }, time.Second, time.Millisecond)
	assert.InDelta(t, 99.5, l.TotalProgress(), 1e-9)

	close(dec.gate)
	<-done
	assert.Equal(t, float64(100), l.TotalProgress())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, float64(100), reported["a"])
	assert.Equal(t, float64(100), reported["b"])
}

func TestLoader_CancelledCallerDoesNotAbortLoad(t *testing.T) {
	l, dec := newTestLoader(t, 1<<20, cache.FIFO, "a")
	dec.gate = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, "a", DefaultOptions())
		errc <- err
	}()
	require.Eventually(t, func() bool { return dec.count("a") == 1 }, time.Second, time.Millisecond)

	cancel()
	err := <-errc
	assert.ErrorIs(t, err, context.Canceled)

	close(dec.gate)
	require.Eventually(t, func() bool { return l.Cached("a") }, time.Second, time.Millisecond)

	_, err = l.Load(context.Background(), "a", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, dec.count("a"))
}

func TestLoader_Dispose(t *testing.T) {
	l, _ := newTestLoader(t, 1<<20, cache.FIFO, "a", "b")
	ctx := context.Background()

	a, err := l.Load(ctx, "a", DefaultOptions())
	require.NoError(t, err)
	b, err := l.Load(ctx, "b", DefaultOptions())
	require.NoError(t, err)

	assert.True(t, l.Dispose("a"))
	assert.False(t, l.Dispose("a"))
	assert.True(t, a.Released())
	assert.Equal(t, int64(36), l.Footprint())
	assert.Zero(t, l.Evictions(), "explicit disposal is not an eviction")

	require.NoError(t, l.Close())
	assert.True(t, b.Released())
	assert.Zero(t, l.Footprint())
	assert.Zero(t, l.Len())
	assert.Equal(t, float64(100), l.TotalProgress())
}

func TestLoader_CloneSurvivesEviction(t *testing.T) {
	l, _ := newTestLoader(t, 1<<20, cache.FIFO, "a")

	a, err := l.Load(context.Background(), "a", DefaultOptions())
	require.NoError(t, err)
	clone := a.Instantiate()
	require.NotNil(t, clone)

	l.DisposeAll()
	assert.Nil(t, a.Instantiate())
	require.NotNil(t, clone.FirstMesh())
	assert.Equal(t, 3, clone.FirstMesh().Mesh.Geometry.VertexCount())
}
