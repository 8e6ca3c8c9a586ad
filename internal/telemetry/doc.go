// Package telemetry wires OpenTelemetry tracing and metrics for projectd.
//
// Telemetry is disabled by default. When enabled, traces and metrics are
// exported over OTLP (gRPC by default, or http/protobuf) and the providers are
// installed as the otel globals so packages can call otel.Tracer/otel.Meter.
// Exporter failures degrade telemetry; they never stop the service.
package telemetry
