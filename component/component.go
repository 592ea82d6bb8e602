// Package component holds the small interfaces shared across packages.
// It imports nothing from this module so every package can depend on it.
package component

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Names used for loggers, health checks and metric scopes
const (
	Config    = "config"
	Logger    = "logger"
	Database  = "database"
	Redis     = "redis"
	Cache     = "cache"
	Property  = "property"
	HTTP      = "http_server"
	Telemetry = "telemetry"
	Health    = "health"
	Scheduler = "scheduler"
)

// HealthChecker is implemented by anything that can report its health.
// Check returns nil when healthy.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// MetricsProvider registers OpenTelemetry instruments on a meter
type MetricsProvider interface {
	MetricsName() string
	RegisterMetrics(meter metric.Meter) error
}
