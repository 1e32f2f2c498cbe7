package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/vnhistory/tour3d/internal/engine"
	"github.com/vnhistory/tour3d/internal/influx"
)

// DefaultInterval is how often the engine is sampled.
const DefaultInterval = time.Second

// StatusSource provides engine snapshots.
type StatusSource interface {
	Status() engine.Status
}

// PointWriter stores time series points. *influx.Manager satisfies it.
type PointWriter interface {
	WritePoint(bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the telemetry service
type Dependencies struct {
	Engine StatusSource
	// Points is optional.
	Points PointWriter
	// Metrics is optional.
	Metrics *Collector
	// StatusPath receives the latest snapshot as JSON; empty disables it.
	StatusPath string
	Interval   time.Duration
	Logger     zerolog.Logger
}

// Service samples the engine on a fixed interval.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new telemetry service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the sampler is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample takes one snapshot and sends it to every configured sink. Sink
// errors are joined; a failing sink does not stop the others.
func (s *Service) Sample() (engine.Status, error) {
	st := s.deps.Engine.Status()
	s.deps.Metrics.Record(st)

	var errs []error
	if s.deps.Points != nil {
		for bucket, p := range Points(st) {
			if err := s.deps.Points.WritePoint(bucket, p); err != nil {
				errs = append(errs, fmt.Errorf("writing %s point: %w", bucket, err))
			}
		}
	}
	if s.deps.StatusPath != "" {
		if err := writeStatusFile(s.deps.StatusPath, st); err != nil {
			errs = append(errs, err)
		}
	}
	return st, errors.Join(errs...)
}

// Points converts a snapshot to one point per influx bucket.
func Points(st engine.Status) map[string]*influxdb2_write.Point {
	frame := influxdb2.NewPoint("frame",
		map[string]string{"camera": st.CameraMode},
		map[string]any{
			"frames":  st.Frames,
			"elapsed": st.Elapsed,
			"pending": st.Pending,
			"x":       st.Position[0],
			"y":       st.Position[1],
			"z":       st.Position[2],
			"shaking": st.Shaking,
		},
		st.Time,
	)
	if st.Diorama != "" {
		frame.AddTag("diorama", st.Diorama)
	}
	assets := influxdb2.NewPoint("assets",
		map[string]string{},
		map[string]any{
			"loaded":    st.Assets.Loaded,
			"cached":    st.Assets.Cached,
			"footprint": st.Assets.Footprint,
			"budget":    st.Assets.Budget,
			"evictions": st.Assets.Evictions,
			"progress":  st.Assets.Progress,
		},
		st.Time,
	)
	return map[string]*influxdb2_write.Point{
		influx.BucketFrames: frame,
		influx.BucketAssets: assets,
	}
}

func writeStatusFile(path string, st engine.Status) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding status: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("writing status file: %w", err)
	}
	return nil
}

// Start starts the sampler goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(done)
		}()

		logger := s.deps.Logger
		logger.Debug().Dur("interval", s.deps.Interval).Msg("Starting telemetry sampler")

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := s.Sample(); err != nil {
					logger.Error().Err(err).Msg("Error recording telemetry")
				}
			}
		}
	}()

	return nil
}

// Stop stops the sampler and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
