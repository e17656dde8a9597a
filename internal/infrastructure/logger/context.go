package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for the HTTP request ID
	RequestIDKey contextKey = "request_id"
	// RunIDKey is the context key for the reconciliation run ID
	RunIDKey contextKey = "run_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithRunID stores the reconciliation run ID and returns the enriched logger
func WithRunID(ctx context.Context, logger *zap.Logger, runID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RunIDKey, runID)
	enriched := logger.With(zap.String("run_id", runID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// GetRunID retrieves the reconciliation run ID from context
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// GetTraceID extracts the trace ID from the active span, or ""
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// ContextLogger injects trace_id, span_id, request_id and run_id from the
// context into every entry.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L returns a ContextLogger backed by the logger stored in ctx.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger returns a ContextLogger using the provided logger
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enriched() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}

	var fields []zap.Field
	if spanCtx := trace.SpanContextFromContext(cl.ctx); spanCtx.IsValid() {
		fields = append(fields,
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if id := GetRequestID(cl.ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetRunID(cl.ctx); id != "" {
		fields = append(fields, zap.String("run_id", id))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// With creates a child ContextLogger with additional fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}
	return &ContextLogger{ctx: cl.ctx, logger: l.With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) { cl.enriched().Debug(msg, fields...) }

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) { cl.enriched().Info(msg, fields...) }

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) { cl.enriched().Warn(msg, fields...) }

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) { cl.enriched().Error(msg, fields...) }

// Zap returns the enriched underlying logger
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enriched()
}
