package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fyrsmithlabs/projectd/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	h := tel.Health()
	assert.False(t, h.Enabled)
	assert.False(t, h.Degraded)

	_, span := tel.Tracer("test").Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Protocol = "carrier-pigeon"

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"disabled ignores fields", func(c *Config) { c.Endpoint = "" }, ""},
		{"enabled local insecure", func(c *Config) { c.Enabled = true }, ""},
		{"enabled loopback ip", func(c *Config) { c.Enabled = true; c.Endpoint = "127.0.0.1:4317" }, ""},
		{"missing endpoint", func(c *Config) { c.Enabled = true; c.Endpoint = "" }, "endpoint"},
		{"missing service", func(c *Config) { c.Enabled = true; c.ServiceName = "" }, "service_name"},
		{"remote insecure", func(c *Config) { c.Enabled = true; c.Endpoint = "otel.example.com:4317" }, "insecure"},
		{"remote tls", func(c *Config) { c.Enabled = true; c.Endpoint = "otel.example.com:4317"; c.Insecure = false }, ""},
		{"sample rate", func(c *Config) { c.Enabled = true; c.SampleRate = 1.5 }, "sample rate"},
		{"export interval", func(c *Config) { c.Enabled = true; c.ExportInterval = 0 }, "export interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.TelemetryConfig{
		Enabled:     true,
		Endpoint:    "http://localhost:4318",
		Protocol:    "http/protobuf",
		Insecure:    true,
		ServiceName: "projectd-test",
		SampleRate:  0.5,
	}, "1.2.3")

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http/protobuf", cfg.Protocol)
	assert.Equal(t, "projectd-test", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.InDelta(t, 0.5, cfg.SampleRate, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "localhost:4318", stripScheme("http://localhost:4318"))
	assert.Equal(t, "otel:4318", stripScheme("https://otel:4318"))
	assert.Equal(t, "otel:4317", stripScheme("otel:4317"))
}

func TestTestTelemetry_RecordsSpansAndCounters(t *testing.T) {
	tt := NewTestTelemetry()
	defer func() { _ = tt.Shutdown(context.Background()) }()

	_, span := tt.Tracer("test").Start(context.Background(), "lifecycle.create")
	span.SetAttributes(attribute.String("project.id", "p1"))
	span.End()

	counter, err := tt.Meter("test").Int64Counter("projectd.test.events")
	require.NoError(t, err)
	counter.Add(context.Background(), 2, metricAttr("event", "switch_project"))
	counter.Add(context.Background(), 1, metricAttr("event", "delete_project"))

	s := tt.AssertSpan(t, "lifecycle.create")
	v, ok := SpanAttr(s, "project.id")
	require.True(t, ok)
	assert.Equal(t, "p1", v)

	assert.Equal(t, int64(3), tt.CounterValue(t, "projectd.test.events"))
	assert.Equal(t, int64(2), tt.CounterValue(t, "projectd.test.events", attribute.String("event", "switch_project")))
}
