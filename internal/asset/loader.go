package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vnhistory/tour3d/internal/cache"
)

// DefaultBudget is the memory budget for cached models.
const DefaultBudget int64 = 200 << 20

// DefaultMaxConcurrent bounds parallel decodes in LoadBatch.
const DefaultMaxConcurrent = 4

// Config holds the loader's cache settings.
type Config struct {
	Budget        int64
	Policy        cache.Policy
	MaxConcurrent int
}

// Dependencies are the collaborators a Loader needs. Zero values fall back
// to AutoSource, GLTFDecoder and slog.Default.
type Dependencies struct {
	Source  Source
	Decoder Decoder
	Logger  *slog.Logger
	// OnProgress is called with the percent loaded of one path whenever it
	// changes. It may be called from several goroutines at once.
	OnProgress func(path string, percent float64)
}

// Loader loads, optimizes and caches models. Loads of the same path are
// decoded once; concurrent callers share the result.
type Loader struct {
	cfg     Config
	deps    Dependencies
	cache   *cache.Budgeted[string, *LoadedAsset]
	flights singleflight.Group
	metrics *loaderMetrics

	mu       sync.Mutex
	progress map[string]float64
}

// NewLoader creates a Loader with an empty cache.
func NewLoader(cfg Config, deps Dependencies) (*Loader, error) {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.Policy == "" {
		cfg.Policy = cache.FIFO
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Source == nil {
		deps.Source = AutoSource{}
	}
	if deps.Decoder == nil {
		deps.Decoder = GLTFDecoder{Logger: deps.Logger}
	}

	l := &Loader{
		cfg:      cfg,
		deps:     deps,
		progress: make(map[string]float64),
	}
	c, err := cache.New[string, *LoadedAsset](cfg.Policy, cfg.Budget, func(_ string, a *LoadedAsset, _ int64) {
		a.Release()
	})
	if err != nil {
		return nil, fmt.Errorf("creating asset cache: %w", err)
	}
	l.cache = c

	if l.metrics, err = newLoaderMetrics(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Load returns the cached asset for path, decoding it on a miss. Before a
// miss starts, the single oldest entry is evicted if the cache is over
// budget; once the new asset is cached, older entries are evicted oldest
// first until the footprint fits again. Failed loads are never cached.
func (l *Loader) Load(ctx context.Context, path string, opts Options) (*LoadedAsset, error) {
	if a, ok := l.cache.Get(path); ok {
		l.metrics.hits.Add(ctx, 1)
		return a, nil
	}

	ch := l.flights.DoChan(path, func() (any, error) {
		return l.load(context.WithoutCancel(ctx), path, opts)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			l.metrics.hits.Add(ctx, 1)
		}
		return res.Val.(*LoadedAsset), nil
	case <-ctx.Done():
		return nil, &AssetLoadError{Path: path, Err: ctx.Err()}
	}
}

func (l *Loader) load(ctx context.Context, path string, opts Options) (*LoadedAsset, error) {
	if a, ok := l.cache.Get(path); ok {
		return a, nil
	}
	if key, size, ok := l.cache.EvictOldest(); ok {
		l.evicted(ctx, key, size)
	}

	start := time.Now()
	l.setProgress(path, 0)
	a, err := l.decode(ctx, path, opts)
	if err != nil {
		l.forgetProgress(path)
		l.metrics.loads.Add(ctx, 1, resultError)
		l.deps.Logger.Error("model load failed", "path", path, "error", err)
		return nil, &AssetLoadError{Path: path, Err: err}
	}

	l.cache.Add(path, a, a.Size)
	for _, e := range l.cache.Trim(path) {
		l.evicted(ctx, e.Key, e.Size)
	}
	l.setProgress(path, 100)
	l.metrics.loads.Add(ctx, 1, resultOK)
	l.deps.Logger.Info("loaded model",
		"path", path,
		"size", humanize.IBytes(uint64(a.Size)),
		"footprint", humanize.IBytes(uint64(l.cache.Footprint())),
		"duration", time.Since(start),
	)
	return a, nil
}

func (l *Loader) evicted(ctx context.Context, path string, size int64) {
	l.metrics.evictions.Add(ctx, 1)
	l.forgetProgress(path)
	l.deps.Logger.Info("evicted model",
		"path", path,
		"size", humanize.IBytes(uint64(size)),
		"footprint", humanize.IBytes(uint64(l.cache.Footprint())),
	)
}

func (l *Loader) decode(ctx context.Context, path string, opts Options) (*LoadedAsset, error) {
	res, err := l.deps.Source.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	data, err := readAll(path, res, func(p float64) {
		// the final 100 is set once the model is cached
		l.setProgress(path, min(p, 99))
	})
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}
	model, err := l.deps.Decoder.Decode(ctx, Request{Path: path, Data: data, Dir: res.Dir, Options: opts})
	if err != nil {
		return nil, err
	}
	if model == nil || model.Root == nil {
		return nil, errors.New("decoder returned no scene")
	}

	size, bounds := optimize(model.Root, opts)
	return &LoadedAsset{
		Path:       path,
		Root:       model.Root,
		Animations: model.Animations,
		Size:       size,
		Bounds:     bounds,
	}, nil
}

// LoadBatch loads every path concurrently and waits for all of them. A
// failed path does not stop the others; the returned map holds the assets
// that loaded and the error joins one *AssetLoadError per failure.
func (l *Loader) LoadBatch(ctx context.Context, paths []string, opts Options) (map[string]*LoadedAsset, error) {
	var (
		mu     sync.Mutex
		assets = make(map[string]*LoadedAsset, len(paths))
		errs   = make([]error, len(paths))
	)

	var eg errgroup.Group
	eg.SetLimit(l.cfg.MaxConcurrent)
	for i, p := range paths {
		eg.Go(func() error {
			a, err := l.Load(ctx, p, opts)
			if err != nil {
				errs[i] = err
				return nil
			}
			mu.Lock()
			assets[p] = a
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return assets, errors.Join(errs...)
}

// Progress returns the percent loaded of path, 0 when it is not tracked.
func (l *Loader) Progress(path string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progress[path]
}

// TotalProgress averages the progress of every tracked path. With nothing
// tracked it reports 100.
func (l *Loader) TotalProgress() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.progress) == 0 {
		return 100
	}
	var sum float64
	for _, p := range l.progress {
		sum += p
	}
	return sum / float64(len(l.progress))
}

func (l *Loader) setProgress(path string, percent float64) {
	l.mu.Lock()
	l.progress[path] = percent
	l.mu.Unlock()
	if l.deps.OnProgress != nil {
		l.deps.OnProgress(path, percent)
	}
}

func (l *Loader) forgetProgress(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.progress, path)
}

// Cached reports whether path is resident without touching recency.
func (l *Loader) Cached(path string) bool {
	return l.cache.Contains(path)
}

// Dispose releases one cached asset and reports whether it was resident.
func (l *Loader) Dispose(path string) bool {
	l.forgetProgress(path)
	ok := l.cache.Remove(path)
	if ok {
		l.deps.Logger.Debug("disposed model", "path", path)
	}
	return ok
}

// DisposeAll releases every cached asset and zeroes the footprint.
func (l *Loader) DisposeAll() {
	n := l.cache.Len()
	l.cache.Purge()
	l.mu.Lock()
	clear(l.progress)
	l.mu.Unlock()
	l.deps.Logger.Debug("disposed all models", "count", n)
}

// Close releases everything. The Loader stays usable.
func (l *Loader) Close() error {
	l.DisposeAll()
	return nil
}

// Footprint returns the estimated bytes held by cached assets.
func (l *Loader) Footprint() int64 {
	return l.cache.Footprint()
}

// Budget returns the memory budget in bytes.
func (l *Loader) Budget() int64 {
	return l.cfg.Budget
}

// Len returns the number of cached assets.
func (l *Loader) Len() int {
	return l.cache.Len()
}

// Evictions returns how many assets were evicted for budget reasons.
func (l *Loader) Evictions() int64 {
	return l.cache.Evictions()
}
