package asset

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vnhistory/tour3d/internal/asset"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type loaderMetrics struct {
	loads     metric.Int64Counter
	hits      metric.Int64Counter
	evictions metric.Int64Counter
	footprint metric.Int64ObservableGauge
}

var (
	resultOK    = metric.WithAttributes(attribute.String("result", "ok"))
	resultError = metric.WithAttributes(attribute.String("result", "error"))
)

func newLoaderMetrics(l *Loader) (*loaderMetrics, error) {
	m := meter()
	lm := &loaderMetrics{}

	var err error
	lm.loads, err = m.Int64Counter(
		"asset.loads",
		metric.WithDescription("Model decodes by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating loads counter: %w", err)
	}

	lm.hits, err = m.Int64Counter(
		"asset.cache.hits",
		metric.WithDescription("Loads served from the cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hits counter: %w", err)
	}

	lm.evictions, err = m.Int64Counter(
		"asset.cache.evictions",
		metric.WithDescription("Entries evicted to stay within the memory budget"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evictions counter: %w", err)
	}

	lm.footprint, err = m.Int64ObservableGauge(
		"asset.cache.bytes",
		metric.WithDescription("Estimated bytes held by cached models"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating footprint gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(lm.footprint, l.Footprint())
			return nil
		},
		lm.footprint,
	)
	if err != nil {
		return nil, fmt.Errorf("registering footprint callback: %w", err)
	}

	return lm, nil
}
