package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func newTracedRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing(TracingConfig{Enabled: true, ServiceName: "cashbook-test"}), SpanEnricher())
	router.GET("/api/v1/accounts", handler)
	return router
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_RecordsRequestID(t *testing.T) {
	sr := setupTestTracer(t)

	router := newTracedRouter(func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(RequestIDHeader, "trace-me")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "trace-me", attrs["request_id"])
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestSpanEnricher_ServerError(t *testing.T) {
	sr := setupTestTracer(t)

	router := newTracedRouter(func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestSpanEnricher_NoSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanEnricher())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
