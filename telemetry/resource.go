package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
)

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	}
	for key, value := range flattenMap(cfg.ResourceAttrs, "") {
		attrs = append(attrs, attribute.String(key, os.ExpandEnv(value)))
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
	)
	// partial detection or a schema mismatch still leaves usable attributes
	if err != nil && !errors.Is(err, resource.ErrPartialResource) && !errors.Is(err, resource.ErrSchemaURLConflict) {
		return nil, err
	}
	return res, nil
}

// flattenMap turns {"deployment": {"environment": "test"}} into
// {"deployment.environment": "test"}
func flattenMap(m map[string]interface{}, prefix string) map[string]string {
	out := make(map[string]string)
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[full] = v
		case map[string]interface{}:
			for k, nested := range flattenMap(v, full) {
				out[k] = nested
			}
		default:
			out[full] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
