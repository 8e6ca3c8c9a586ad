// Package logging provides structured logging for projectd.
//
// The package wraps Zap with:
//   - a custom Trace level (-2, below Debug)
//   - stdout output with an optional OpenTelemetry bridge
//   - automatic context fields (trace_id, request.id, project.id, surface)
//   - secret redaction by field name and value pattern
//   - level-aware sampling (errors are never sampled)
//
// Create a logger from config and log with a context:
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
//	ctx = logging.WithRequestID(ctx, "req-1")
//	logger.Info(ctx, "project created", zap.String("project_id", id))
//
// Passwords reach the logs only through Secret or RedactedString fields,
// and the encoder redacts any field named like a credential.
//
// Tests use TestLogger to assert on what was logged:
//
//	tl := logging.NewTestLogger()
//	tl.AssertLogged(t, zapcore.InfoLevel, "project created")
//	tl.AssertNoSecrets(t)
package logging
