package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName is the scope name used for projectd spans and meters.
const InstrumentationName = "github.com/fyrsmithlabs/projectd"

// Telemetry owns the OpenTelemetry providers for the process.
type Telemetry struct {
	config         *Config
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	shutdownFuncs  []func(context.Context) error

	degraded atomic.Bool
}

// Health reports telemetry state.
type Health struct {
	Enabled  bool   `json:"enabled"`
	Degraded bool   `json:"degraded"`
	Endpoint string `json:"endpoint,omitempty"`
}

// New builds providers from cfg. A disabled config yields noop providers.
// Exporter setup failures leave telemetry degraded instead of failing.
func New(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}

	t := &Telemetry{
		config:         cfg,
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
	}
	if !cfg.Enabled {
		return t, nil
	}

	res := newResource(cfg)

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		t.degraded.Store(true)
	} else {
		t.tracerProvider = tp
		t.shutdownFuncs = append(t.shutdownFuncs, tp.Shutdown)
	}

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		t.degraded.Store(true)
	} else {
		t.meterProvider = mp
		t.shutdownFuncs = append(t.shutdownFuncs, mp.Shutdown)
	}

	otel.SetTracerProvider(t.tracerProvider)
	otel.SetMeterProvider(t.meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return t, nil
}

// Tracer returns a named tracer from the owned provider.
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return t.tracerProvider.Tracer(name)
}

// Meter returns a named meter from the owned provider.
func (t *Telemetry) Meter(name string) metric.Meter {
	return t.meterProvider.Meter(name)
}

// TracerProvider exposes the provider for components that take one explicitly.
func (t *Telemetry) TracerProvider() trace.TracerProvider { return t.tracerProvider }

// MeterProvider exposes the provider for components that take one explicitly.
func (t *Telemetry) MeterProvider() metric.MeterProvider { return t.meterProvider }

// Health returns the current telemetry health.
func (t *Telemetry) Health() Health {
	return Health{
		Enabled:  t.config.Enabled,
		Degraded: t.degraded.Load(),
		Endpoint: t.config.Endpoint,
	}
}

// ForceFlush flushes pending spans and metrics.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	var errs []error
	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		errs = append(errs, tp.ForceFlush(ctx))
	}
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		errs = append(errs, mp.ForceFlush(ctx))
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops all providers, bounded by the configured timeout.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if d := t.config.ShutdownAfter.Duration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	var errs []error
	for i := len(t.shutdownFuncs) - 1; i >= 0; i-- {
		if err := t.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdownFuncs = nil
	return errors.Join(errs...)
}
