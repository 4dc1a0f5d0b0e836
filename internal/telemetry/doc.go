// Package telemetry adapts execshell instrumentation scopes to OpenTelemetry spans
// and provides a span processor that writes finished spans to zap.
package telemetry
