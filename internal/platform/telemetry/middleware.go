package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/jsamuelsen/scopestore/telemetry"
)

// ScopeCounter reports how many values the calling request's scope holds.
// *scope.Store satisfies it.
type ScopeCounter interface {
	Count() int
}

// Metrics holds HTTP server metrics.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	scopeKeys       metric.Int64Histogram
}

// NewMetrics creates HTTP server metrics.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	scopeKeys, err := meter.Int64Histogram(
		"scope.request.keys",
		metric.WithDescription("Values held by a request scope when the request completes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
		scopeKeys:       scopeKeys,
	}, nil
}

// Middleware returns Gin middleware that records request metrics. When
// scopes is non-nil the size of each request's scope is recorded too, so it
// must run inside the scope middleware.
func Middleware(scopes ScopeCounter) gin.HandlerFunc {
	// errors are reported to otel but don't disable the middleware
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		ctx := c.Request.Context()

		active := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
		)

		metrics.activeRequests.Add(ctx, 1, active)
		defer metrics.activeRequests.Add(ctx, -1, active)

		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
			attribute.Int("http.status_code", c.Writer.Status()),
		)

		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		metrics.requestTotal.Add(ctx, 1, attrs)

		if scopes != nil {
			metrics.scopeKeys.Record(ctx, int64(scopes.Count()), attrs)
		}
	}
}

// TracingMiddleware returns the otelgin tracing middleware. Spans it starts
// are picked up as the request's trace id.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
