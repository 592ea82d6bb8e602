package database

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	tracerName   = "github.com/KOMKZ/yogan-property/database"
	spanInstance = "tracing:span"
)

// TracingPlugin opens a client span per statement (implements gorm.Plugin)
type TracingPlugin struct {
	tracer    trace.Tracer
	traceSQL  bool
	sqlMaxLen int
}

// NewTracingPlugin uses the global TracerProvider when tp is nil
func NewTracingPlugin(tp trace.TracerProvider) *TracingPlugin {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingPlugin{
		tracer:    tp.Tracer(tracerName),
		sqlMaxLen: 1000,
	}
}

func (p *TracingPlugin) WithTraceSQL(enabled bool) *TracingPlugin {
	p.traceSQL = enabled
	return p
}

func (p *TracingPlugin) WithSQLMaxLen(maxLen int) *TracingPlugin {
	if maxLen > 0 {
		p.sqlMaxLen = maxLen
	}
	return p
}

func (p *TracingPlugin) Name() string {
	return "property:tracing"
}

func (p *TracingPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "tracing", p.before, p.after)
}

func (p *TracingPlugin) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := p.tracer.Start(ctx, "gorm", trace.WithSpanKind(trace.SpanKindClient))
	db.Statement.Context = ctx
	db.InstanceSet(spanInstance, span)
}

func (p *TracingPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(spanInstance)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	op := operationName(db)
	table := tableName(db)
	span.SetName("gorm." + op + " " + table)
	span.SetAttributes(
		attribute.String("db.system", db.Dialector.Name()),
		attribute.String("db.operation", op),
		attribute.String("db.table", table),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)

	if p.traceSQL {
		if sql := db.Statement.SQL.String(); sql != "" {
			if len(sql) > p.sqlMaxLen {
				sql = sql[:p.sqlMaxLen] + "..."
			}
			span.SetAttributes(attribute.String("db.statement", sql))
		}
	}

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}
}
