package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTelemetry records spans and metrics in memory for assertions.
type TestTelemetry struct {
	*Telemetry
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

// NewTestTelemetry returns telemetry backed by in-memory recorders.
// It does not touch the otel globals.
func NewTestTelemetry() *TestTelemetry {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	cfg := NewDefaultConfig()
	cfg.Enabled = true

	return &TestTelemetry{
		Telemetry: &Telemetry{
			config:         cfg,
			tracerProvider: tp,
			meterProvider:  mp,
			shutdownFuncs:  []func(context.Context) error{tp.Shutdown, mp.Shutdown},
		},
		spans:  spans,
		reader: reader,
	}
}

// Spans returns the ended spans.
func (tt *TestTelemetry) Spans() []sdktrace.ReadOnlySpan {
	return tt.spans.Ended()
}

// SpanNamed returns the first ended span with the given name.
func (tt *TestTelemetry) SpanNamed(name string) (sdktrace.ReadOnlySpan, bool) {
	for _, s := range tt.spans.Ended() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// AssertSpan fails the test unless a span with the given name ended.
func (tt *TestTelemetry) AssertSpan(tb testing.TB, name string) sdktrace.ReadOnlySpan {
	tb.Helper()
	s, ok := tt.SpanNamed(name)
	if !ok {
		names := make([]string, 0, len(tt.spans.Ended()))
		for _, s := range tt.spans.Ended() {
			names = append(names, s.Name())
		}
		tb.Fatalf("span %q not found; recorded: %v", name, names)
	}
	return s
}

// SpanAttr returns the string value of a span attribute.
func SpanAttr(s sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range s.Attributes() {
		if kv.Key == attribute.Key(key) {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

// CounterValue sums an int64 counter's data points matching attrs.
func (tt *TestTelemetry) CounterValue(tb testing.TB, name string, attrs ...attribute.KeyValue) int64 {
	tb.Helper()
	var rm metricdata.ResourceMetrics
	if err := tt.reader.Collect(context.Background(), &rm); err != nil {
		tb.Fatalf("collect metrics: %v", err)
	}
	want := attribute.NewSet(attrs...)
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if len(attrs) == 0 || containsAll(dp.Attributes, want) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func containsAll(have attribute.Set, want attribute.Set) bool {
	for _, kv := range want.ToSlice() {
		v, ok := have.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}
