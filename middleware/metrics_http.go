package middleware

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/KOMKZ/yogan-property/component"
)

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

// HTTPMetrics records request counts and latency per route. Until
// RegisterMetrics is called the middleware only passes through.
type HTTPMetrics struct {
	inst atomic.Pointer[httpInstruments]
}

var _ component.MetricsProvider = (*HTTPMetrics)(nil)

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{}
}

func (m *HTTPMetrics) MetricsName() string {
	return component.HTTP
}

func (m *HTTPMetrics) RegisterMetrics(meter metric.Meter) error {
	requests, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return err
	}
	duration, err := meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}
	inFlight, err := meter.Int64UpDownCounter("http_requests_in_flight",
		metric.WithDescription("HTTP requests being served"),
		metric.WithUnit("{request}"))
	if err != nil {
		return err
	}
	m.inst.Store(&httpInstruments{requests: requests, duration: duration, inFlight: inFlight})
	return nil
}

func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		inst := m.inst.Load()
		if inst == nil {
			c.Next()
			return
		}

		start := time.Now()
		ctx := c.Request.Context()
		inst.inFlight.Add(ctx, 1)
		defer inst.inFlight.Add(ctx, -1)

		c.Next()

		// route pattern, not the raw path, to bound cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.Int("status_code", status),
			attribute.String("status_class", statusClass(status)),
		)
		inst.requests.Add(ctx, 1, attrs)
		inst.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
