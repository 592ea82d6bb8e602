package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/component"
	"github.com/KOMKZ/yogan-property/logger"
)

// MetricsRegistry gives every MetricsProvider its own meter, named
// {namespace}_{provider}, and registers each provider once
type MetricsRegistry struct {
	mu            sync.Mutex
	meterProvider metric.MeterProvider
	namespace     string
	providers     map[string]component.MetricsProvider
	log           logger.CtxLogger
}

func NewMetricsRegistry(mp metric.MeterProvider, namespace string, log logger.CtxLogger) *MetricsRegistry {
	if log == nil {
		log = logger.GetLogger("telemetry")
	}
	return &MetricsRegistry{
		meterProvider: mp,
		namespace:     namespace,
		providers:     make(map[string]component.MetricsProvider),
		log:           log,
	}
}

func (r *MetricsRegistry) Register(provider component.MetricsProvider) error {
	if provider == nil {
		return fmt.Errorf("metrics provider is nil")
	}
	name := provider.MetricsName()
	if name == "" {
		return fmt.Errorf("metrics provider name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; ok {
		return fmt.Errorf("metrics provider %q already registered", name)
	}
	if err := provider.RegisterMetrics(r.meter(name)); err != nil {
		return fmt.Errorf("register metrics for %q failed: %w", name, err)
	}
	r.providers[name] = provider
	r.log.DebugCtx(context.Background(), "metrics provider registered", zap.String("provider", name))
	return nil
}

func (r *MetricsRegistry) meter(name string) metric.Meter {
	if r.namespace != "" {
		name = r.namespace + "_" + name
	}
	return r.meterProvider.Meter(name)
}

func (r *MetricsRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.providers)
}

// Provider returns the provider registered under name
func (r *MetricsRegistry) Provider(name string) (component.MetricsProvider, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[name]
	return p, ok
}
