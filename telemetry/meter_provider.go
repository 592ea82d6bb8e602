package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// newMeterProvider builds a provider with a periodic reader over the
// configured exporter. extra readers (tests use a manual one) are added
// alongside it.
func newMeterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource, extra ...sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	exporter, err := newMetricExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(cfg.ExportInterval),
			sdkmetric.WithTimeout(cfg.ExportTimeout),
		)))
	}
	for _, r := range extra {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// newMetricExporter returns nil for noop
func newMetricExporter(ctx context.Context, cfg ExporterConfig) (sdkmetric.Exporter, error) {
	switch cfg.Type {
	case ExporterOTLP:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithTimeout(cfg.Timeout),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp metrics exporter: %w", err)
		}
		return exp, nil
	case ExporterStdout:
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("create stdout metrics exporter: %w", err)
		}
		return exp, nil
	case ExporterNoop:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported metrics exporter: %s", cfg.Type)
	}
}
