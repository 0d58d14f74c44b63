package monitoring

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"mentormatch_api_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"mentormatch_api_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"mentormatch_api_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		activeRequests:  activeRequests,
	}, nil
}

// GinMiddleware combines OpenTelemetry tracing with request counting and
// latency recording for every handled route.
func (m *Monitor) GinMiddleware() gin.HandlerFunc {
	if m == nil || m.httpMetrics == nil {
		return func(c *gin.Context) { c.Next() }
	}

	tracing := otelgin.Middleware(m.config.serviceName)
	metrics := m.httpMetrics

	return func(c *gin.Context) {
		tracing(c)
		if c.IsAborted() {
			return
		}

		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		attrs := []attribute.KeyValue{
			attribute.String("method", c.Request.Method),
			attribute.String("path", path),
		}

		metrics.activeRequests.Add(c.Request.Context(), 1, metric.WithAttributes(attrs...))
		c.Next()
		metrics.activeRequests.Add(c.Request.Context(), -1, metric.WithAttributes(attrs...))

		status := strconv.Itoa(c.Writer.Status())
		m.RecordHTTPRequest(c.Request.Context(), c.Request.Method, path, status, time.Since(start))
	}
}

// RecordHTTPRequest records one completed HTTP request's status and
// latency through the worker pool.
func (m *Monitor) RecordHTTPRequest(ctx context.Context, method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}

	event := newHTTPRequestEvent(ctx, method, path, status, duration)

	select {
	case m.eventChan <- event:
	case <-ctx.Done():
		m.log.Debug().Str("event_type", "http_request").Msg("context cancelled, abandoning metric")
	}
}
