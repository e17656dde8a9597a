package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing wraps otelgin. Spans are named after the route pattern, carry the
// request id, and are marked as errors for 5xx responses.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cashbook"
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanEnricher annotates the active span once the handler has run. It must be
// registered after Tracing and RequestID.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := c.GetString(RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.StringSlice("gin.errors", c.Errors.Errors()))
		}
	}
}
