package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/vnhistory/tour3d/internal/config"
	"github.com/vnhistory/tour3d/internal/engine"
	"github.com/vnhistory/tour3d/internal/influx"
	"github.com/vnhistory/tour3d/internal/telemetry"
)

// startTelemetry wires the optional influx sink and /metrics endpoint to a
// sampler. The returned func stops everything that was started.
func startTelemetry(ctx context.Context, eng *engine.Engine, managerLog func(string) zerolog.Logger) (func(), error) {
	logsDir := viper.GetString("logsDir")
	var closers []func()

	deps := telemetry.Dependencies{
		Engine:     eng,
		StatusPath: filepath.Join(logsDir, "status.json"),
		Interval:   config.GetInfluxConfig().Interval,
		Logger:     managerLog("telemetry"),
	}

	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		manager := influx.NewManager(managerLog("influx"), influx.Config{
			Enabled: influxCfg.Enabled,
			URL:     influxCfg.URL,
			Token:   influxCfg.Token,
			Org:     influxCfg.Org,
		}, filepath.Join(logsDir, fmt.Sprintf("%s.%s.lp.gz", AppName, SessionStartTime.Format("20060102_150405"))))

		if err := manager.Connect(ctx); err != nil {
			Logger.Error("Failed to set up InfluxDB, frame telemetry disabled", "error", err)
		} else {
			deps.Points = manager
			closers = append(closers, func() {
				if err := manager.Close(); err != nil {
					Logger.Error("Error closing InfluxDB", "error", err)
				}
			})
		}
	}

	if metricsCfg := config.GetMetricsConfig(); metricsCfg.Enabled {
		collector, err := telemetry.NewCollector(prometheus.NewRegistry())
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		deps.Metrics = collector

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: metricsCfg.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Logger.Error("Metrics endpoint stopped", "error", err)
			}
		}()
		Logger.Info("Serving metrics", "address", metricsCfg.Address)

		closers = append(closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		})
	}

	sampler := telemetry.NewService(deps)
	if err := sampler.Start(); err != nil {
		return nil, err
	}

	return func() {
		sampler.Stop()
		// one last snapshot so the status file reflects the end of the run
		if _, err := sampler.Sample(); err != nil {
			Logger.Warn("Final telemetry sample failed", "error", err)
		}
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
