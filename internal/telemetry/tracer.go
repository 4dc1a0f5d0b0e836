package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/temirov/cmdrun/internal/execshell"
)

const (
	instrumentationNameConstant       = "github.com/temirov/cmdrun/internal/execshell"
	attributeWorkingDirectoryConstant = "cwd"
	attributeShellConstant            = "shell"
	attributeCommandConstant          = "command"
	attributeStandardOutputConstant   = "stdout"
	attributeStandardErrorConstant    = "stderr"
	attributeExitStatusConstant       = "exitCode"
)

// OpenTelemetryTracer implements execshell.Tracer on top of an OpenTelemetry tracer provider.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer constructs a tracer; a nil provider uses the global provider.
func NewOpenTelemetryTracer(provider trace.TracerProvider) *OpenTelemetryTracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &OpenTelemetryTracer{tracer: provider.Tracer(instrumentationNameConstant)}
}

// StartScope implements execshell.Tracer by starting a span.
func (tracer *OpenTelemetryTracer) StartScope(parentContext context.Context, name string) (context.Context, execshell.Scope) {
	spanContext, span := tracer.tracer.Start(parentContext, name)
	return spanContext, spanScope{span: span}
}

type spanScope struct {
	span trace.Span
}

func (scope spanScope) SetAttributes(attributes execshell.InstrumentationAttributes) {
	scope.span.SetAttributes(
		attribute.String(attributeWorkingDirectoryConstant, attributes.WorkingDirectory),
		attribute.String(attributeShellConstant, attributes.Shell),
		attribute.String(attributeCommandConstant, attributes.Command),
		attribute.String(attributeStandardOutputConstant, attributes.StandardOutput),
		attribute.String(attributeStandardErrorConstant, attributes.StandardError),
		attribute.Int(attributeExitStatusConstant, attributes.ExitStatus),
	)
}

func (scope spanScope) SetStatus(status execshell.ScopeStatus, description string) {
	switch status {
	case execshell.ScopeStatusOK:
		scope.span.SetStatus(codes.Ok, description)
	case execshell.ScopeStatusError:
		scope.span.SetStatus(codes.Error, description)
	default:
		scope.span.SetStatus(codes.Unset, description)
	}
}

func (scope spanScope) RecordError(failure error) {
	if failure == nil {
		return
	}
	scope.span.RecordError(failure)
}

func (scope spanScope) End() {
	scope.span.End()
}
