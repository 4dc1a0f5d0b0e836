package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/temirov/cmdrun/internal/execshell"
)

const (
	spanEndedMessageConstant          = "span ended"
	logFieldSpanNameConstant          = "span"
	logFieldDurationConstant          = "duration"
	logFieldStatusConstant            = "status"
	logFieldTraceIDConstant           = "trace_id"
	logFieldStatusDescriptionConstant = "status_description"
)

// LoggingSpanProcessor writes every ended span to a zap logger at debug level.
// String attributes pass through the formatter's home directory redaction.
type LoggingSpanProcessor struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewLoggingSpanProcessor constructs a LoggingSpanProcessor.
func NewLoggingSpanProcessor(logger *zap.Logger, formatter execshell.CommandMessageFormatter) *LoggingSpanProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingSpanProcessor{logger: logger, formatter: formatter}
}

// NewLoggingTracerProvider builds an SDK tracer provider that only logs spans.
func NewLoggingTracerProvider(logger *zap.Logger, formatter execshell.CommandMessageFormatter) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewLoggingSpanProcessor(logger, formatter)))
}

// OnStart implements sdktrace.SpanProcessor.
func (processor *LoggingSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd implements sdktrace.SpanProcessor.
func (processor *LoggingSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if !processor.logger.Core().Enabled(zap.DebugLevel) {
		return
	}

	status := span.Status()
	fields := []zap.Field{
		zap.String(logFieldSpanNameConstant, span.Name()),
		zap.String(logFieldTraceIDConstant, span.SpanContext().TraceID().String()),
		zap.Duration(logFieldDurationConstant, span.EndTime().Sub(span.StartTime())),
		zap.String(logFieldStatusConstant, status.Code.String()),
	}
	if len(status.Description) > 0 {
		fields = append(fields, zap.String(logFieldStatusDescriptionConstant, processor.formatter.Redact(status.Description)))
	}
	for _, keyValue := range span.Attributes() {
		fields = append(fields, processor.attributeField(keyValue))
	}

	processor.logger.Debug(spanEndedMessageConstant, fields...)
}

// Shutdown implements sdktrace.SpanProcessor.
func (processor *LoggingSpanProcessor) Shutdown(context.Context) error {
	return nil
}

// ForceFlush implements sdktrace.SpanProcessor.
func (processor *LoggingSpanProcessor) ForceFlush(context.Context) error {
	return processor.logger.Sync()
}

func (processor *LoggingSpanProcessor) attributeField(keyValue attribute.KeyValue) zap.Field {
	key := string(keyValue.Key)
	switch keyValue.Value.Type() {
	case attribute.STRING:
		return zap.String(key, processor.formatter.Redact(keyValue.Value.AsString()))
	case attribute.INT64:
		return zap.Int64(key, keyValue.Value.AsInt64())
	case attribute.BOOL:
		return zap.Bool(key, keyValue.Value.AsBool())
	default:
		return zap.String(key, keyValue.Value.Emit())
	}
}
