package camera

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vnhistory/tour3d/internal/camera"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type flightMetrics struct {
	started   metric.Int64Counter
	completed metric.Int64Counter
	cancelled metric.Int64Counter
	mode      metric.Int64ObservableGauge
}

func flightAttr(kind string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("flight", kind))
}

func newFlightMetrics(c *Controller) (*flightMetrics, error) {
	m := meter()
	fm := &flightMetrics{}

	var err error
	fm.started, err = m.Int64Counter(
		"camera.flights.started",
		metric.WithDescription("Scripted camera animations started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating started counter: %w", err)
	}

	fm.completed, err = m.Int64Counter(
		"camera.flights.completed",
		metric.WithDescription("Scripted camera animations that reached their end"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completed counter: %w", err)
	}

	fm.cancelled, err = m.Int64Counter(
		"camera.flights.cancelled",
		metric.WithDescription("Scripted camera animations superseded or stopped"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cancelled counter: %w", err)
	}

	fm.mode, err = m.Int64ObservableGauge(
		"camera.mode",
		metric.WithDescription("Current flight mode (0 idle, 1 flying, 2 orbiting)"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating mode gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(fm.mode, int64(c.Mode()))
			return nil
		},
		fm.mode,
	)
	if err != nil {
		return nil, fmt.Errorf("registering mode callback: %w", err)
	}

	return fm, nil
}
