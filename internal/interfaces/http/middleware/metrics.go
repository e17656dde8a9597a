package middleware

import (
	"context"
	"time"

	"github.com/erp/cashbook/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	requestSizeBuckets  = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000}
	responseSizeBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}
)

type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	requestSize     *telemetry.Histogram
	responseSize    *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	requestSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_size_bytes",
		Description: "HTTP request body size distribution in bytes",
		Unit:        "By",
		Boundaries:  requestSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	responseSize, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestSize:     requestSize,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests. It is a pass-through when the provider is nil or disabled.
func HTTPMetrics(mp *telemetry.MeterProvider) gin.HandlerFunc {
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(mp.Meter("http.server"))
}

// HTTPMetricsWithMeter records HTTP metrics on meter
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		requestSize := c.Request.ContentLength

		m.activeRequests.Add(ctx, 1)
		c.Next()
		m.activeRequests.Add(ctx, -1)

		m.record(ctx, c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start), requestSize, c.Writer.Size())
	}
}

func (m *httpMetrics) record(
	ctx context.Context,
	method, route string,
	statusCode int,
	elapsed time.Duration,
	requestSize int64,
	responseSize int,
) {
	m.requestTotal.Inc(ctx,
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPRoute.String(route),
		telemetry.AttrHTTPStatusCode.Int(statusCode),
	)

	// status_code is left off the histograms to keep cardinality down
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPRoute.String(route),
	}
	m.requestDuration.RecordDuration(ctx, elapsed, attrs...)
	if requestSize > 0 {
		m.requestSize.Record(ctx, float64(requestSize), attrs...)
	}
	if responseSize > 0 {
		m.responseSize.Record(ctx, float64(responseSize), attrs...)
	}
}

// routePattern returns the matched route (e.g. /api/v1/transactions/:id)
// rather than the raw path
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}

func passThrough(c *gin.Context) {
	c.Next()
}
