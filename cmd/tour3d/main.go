package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/vnhistory/tour3d/internal/asset"
	"github.com/vnhistory/tour3d/internal/catalog"
	"github.com/vnhistory/tour3d/internal/clock"
	"github.com/vnhistory/tour3d/internal/config"
	"github.com/vnhistory/tour3d/internal/diorama"
	"github.com/vnhistory/tour3d/internal/engine"
	"github.com/vnhistory/tour3d/internal/geo"
	"github.com/vnhistory/tour3d/internal/logging"
	intOtel "github.com/vnhistory/tour3d/internal/otel"
	"github.com/vnhistory/tour3d/internal/router"
)

// BuildVersion and BuildDate can be set at build time via ldflags
var (
	BuildVersion string = "0.0.1"
	BuildDate    string = "unknown"

	AppName string = "tour3d"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	tour *engine.Engine
)

func main() {
	configDir := flag.String("config", ".", "directory containing "+config.FileName)
	duration := flag.Duration("duration", -1, "stop after this much simulated time (0 runs until interrupted)")
	accelerated := flag.Bool("accelerated", false, "step frames back to back instead of in real time")
	flag.Parse()

	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(logging.Options{Level: "info"})
	Logger = SlogManager.Logger()

	if err := config.Load(*configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", *configDir)
	}
	if *duration >= 0 {
		viper.Set("run.duration", duration.String())
	}
	if *accelerated {
		viper.Set("run.mode", "accelerated")
	}

	if err := run(); err != nil {
		Logger.Error("tour3d stopped with error", "error", err)
		flushLogs()
		os.Exit(1)
	}
	flushLogs()
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logFile, err := setupLogging(ctx)
	if err != nil {
		return err
	}
	defer logFile.Close()

	level := viper.GetString("logLevel")
	managerLog := func(component string) zerolog.Logger {
		return logging.NewZerolog(logFile, level, component)
	}

	sites, err := catalog.Load(config.GetCatalogConfig(), managerLog("catalog"))
	if err != nil {
		return fmt.Errorf("loading site catalog: %w", err)
	}
	Logger.Info("Loaded site catalog", "sites", sites.Len(), "source", config.GetCatalogConfig().Source)

	projector, err := geo.NewProjector(config.GetProjectionConfig())
	if err != nil {
		return fmt.Errorf("creating projector: %w", err)
	}

	assetCfg, err := config.GetAssetConfig()
	if err != nil {
		return fmt.Errorf("reading asset config: %w", err)
	}
	files := make(map[string]string, len(diorama.DefaultModelFiles))
	for key, file := range diorama.DefaultModelFiles {
		files[key] = assetCfg.Path(file)
	}

	runCfg := config.GetRunConfig()
	tour, err = engine.New(engine.Dependencies{
		Catalog:     sites,
		Projector:   projector,
		Source:      asset.AutoSource{Files: asset.FileSource{Root: assetCfg.Root}},
		Loader:      assetCfg.Loader,
		Options:     assetCfg.Options,
		ModelFiles:  files,
		Camera:      config.GetCameraConfig(),
		World:       config.GetWorldConfig(),
		DioramaSeed: config.GetDioramaSeed(),
		QueueLimit:  runCfg.QueueLimit,
		CommandLog:  logging.NewEventLogger(managerLog("commands")),
		OnLanded: func(s catalog.Site) {
			Logger.Info("Reached site", "site", s.ID, "title", s.Title, "year", s.Year)
		},
		Logger: SlogManager.Component("engine"),
	})
	if err != nil {
		return err
	}
	defer tour.Dispose()

	lastLogged := -1
	err = tour.Initialize(ctx, func(percent float64, label string) {
		if step := int(percent) / 10; step > lastLogged {
			lastLogged = step
			Logger.Info("Loading models", "percent", int(percent), "model", label)
		}
	})
	if err != nil {
		return fmt.Errorf("initializing tour: %w", err)
	}

	stopTelemetry, err := startTelemetry(ctx, tour, managerLog)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	mode := clock.RealTime
	if runCfg.Mode == "accelerated" {
		mode = clock.Accelerated
	}
	frames := clock.New(runCfg.Tick(), mode)

	toured := !runCfg.Tour
	frames.AddListener(func(dt float64) {
		tour.Tick(dt)
		// the tour starts once the intro has landed
		if !toured && tour.Status().CameraMode == "idle" {
			toured = true
			if err := tour.Enqueue(router.CmdTour); err != nil {
				Logger.Error("Failed to start tour", "error", err)
			}
		}
	})

	Logger.Info("Running tour", "frameRate", runCfg.FrameRate, "mode", runCfg.Mode, "duration", runCfg.Duration)
	<-frames.Run(ctx, runCfg.Duration)

	st := tour.Status()
	Logger.Info("Tour finished",
		"frames", st.Frames,
		"simulated", time.Duration(st.Elapsed*float64(time.Second)).Round(time.Millisecond),
		"lastLanded", st.LastLanded,
		"interrupted", ctx.Err() != nil,
	)
	return nil
}

// setupLogging opens the session log file and rebuilds the logger with the
// configured sinks.
func setupLogging(ctx context.Context) (io.WriteCloser, error) {
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	logFile := logging.NewRotatingFile(logsDir, AppName, SessionStartTime)

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var err error
		OTelProvider, err = intOtel.New(ctx, intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			ServiceVersion: BuildVersion,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      logFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var graylog io.Writer
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, AppName)
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			graylog = w
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	SlogManager.Setup(logging.Options{
		File:     logFile,
		Level:    viper.GetString("logLevel"),
		Provider: otelLogProvider,
		Graylog:  graylog,
		Context: func() []slog.Attr {
			if tour == nil {
				return nil
			}
			return logging.TourAttrs(tour.LogAttrs())
		},
	})
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", logFile.Filename, "version", BuildVersion, "build", BuildDate)
	return logFile, nil
}

func flushLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "flushing logs: %v\n", err)
	}
	if OTelProvider == nil {
		return
	}
	if err := OTelProvider.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		fmt.Fprintf(os.Stderr, "shutting down otel: %v\n", err)
	}
}
