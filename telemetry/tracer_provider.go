package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newTracerProvider(cfg TracesConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.Sampler)),
	}

	if cfg.Exporter == ExporterStdout {
		exporter, err := stdouttrace.New()
		if err != nil {
			return nil, err
		}
		if cfg.Batch {
			opts = append(opts, sdktrace.WithBatcher(exporter))
		} else {
			opts = append(opts, sdktrace.WithSyncer(exporter))
		}
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newSampler(cfg SamplerConfig) sdktrace.Sampler {
	switch cfg.Type {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "trace_id_ratio":
		return sdktrace.TraceIDRatioBased(cfg.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

func shutdownTracer(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
