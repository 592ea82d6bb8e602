package database

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

const startInstance = "metrics:start"

type queryInstruments struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
	slow     metric.Int64Counter
}

func newQueryInstruments(meter metric.Meter) (*queryInstruments, error) {
	total, err := meter.Int64Counter("db_queries_total",
		metric.WithDescription("Statements executed"),
		metric.WithUnit("{query}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("db_query_duration_seconds",
		metric.WithDescription("Statement latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	slow, err := meter.Int64Counter("db_slow_queries_total",
		metric.WithDescription("Statements slower than slow_threshold"),
		metric.WithUnit("{query}"))
	if err != nil {
		return nil, err
	}
	return &queryInstruments{total: total, duration: duration, slow: slow}, nil
}

// metricsPlugin implements gorm.Plugin
type metricsPlugin struct {
	inst     *queryInstruments
	instance string
	slow     float64 // seconds
}

func newMetricsPlugin(inst *queryInstruments, instance string, slowSeconds float64) *metricsPlugin {
	return &metricsPlugin{inst: inst, instance: instance, slow: slowSeconds}
}

func (p *metricsPlugin) Name() string {
	return "property:metrics"
}

func (p *metricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "metrics", p.before, p.after)
}

func (p *metricsPlugin) before(db *gorm.DB) {
	db.InstanceSet(startInstance, time.Now())
}

func (p *metricsPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(startInstance)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start).Seconds()

	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := metric.WithAttributes(
		attribute.String("instance", p.instance),
		attribute.String("operation", operationName(db)),
		attribute.String("table", tableName(db)),
	)
	p.inst.total.Add(ctx, 1, attrs)
	p.inst.duration.Record(ctx, elapsed, attrs)
	if elapsed >= p.slow {
		p.inst.slow.Add(ctx, 1, attrs)
	}
}

// registerPoolGauges observes sql.DBStats of every instance on collection
func registerPoolGauges(meter metric.Meter, m *Manager) error {
	open, err := meter.Int64ObservableGauge("db_connections_open",
		metric.WithDescription("Open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	idle, err := meter.Int64ObservableGauge("db_connections_idle",
		metric.WithDescription("Idle connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("db_connections_in_use",
		metric.WithDescription("Connections in use"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, name := range m.Names() {
			stats, err := m.Stats(name)
			if err != nil {
				continue
			}
			attrs := metric.WithAttributes(attribute.String("instance", name))
			o.ObserveInt64(open, int64(stats.OpenConnections), attrs)
			o.ObserveInt64(idle, int64(stats.Idle), attrs)
			o.ObserveInt64(inUse, int64(stats.InUse), attrs)
		}
		return nil
	}, open, idle, inUse)
	return err
}
