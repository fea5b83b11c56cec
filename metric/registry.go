package metric

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/joelkoz/signalk-plugin-base/errors"
)

// Registrar defines the interface for registering plugin-specific metrics
type Registrar interface {
	RegisterCounter(pluginID, metricName string, counter prometheus.Counter) error
	RegisterGauge(pluginID, metricName string, gauge prometheus.Gauge) error
	RegisterHistogram(pluginID, metricName string, histogram prometheus.Histogram) error
	Unregister(pluginID, metricName string) bool
}

// Registry manages the registration and lifecycle of metrics
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
	registeredMetrics  map[string]prometheus.Collector
	mu                 sync.RWMutex
}

// NewRegistry creates a new metrics registry with the core plugin metrics
// plus Go runtime and process collectors.
func NewRegistry() *Registry {
	prometheusRegistry := prometheus.NewRegistry()

	registry := &Registry{
		prometheusRegistry: prometheusRegistry,
		registeredMetrics:  make(map[string]prometheus.Collector),
		Metrics:            NewMetrics(),
	}
	registry.registerCore()

	registry.prometheusRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return registry
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// CoreMetrics returns the core plugin metrics. Nil-safe so call sites can
// hold an optional registry.
func (r *Registry) CoreMetrics() *Metrics {
	if r == nil {
		return nil
	}
	return r.Metrics
}

// RegisterCounter registers a counter metric for a plugin
func (r *Registry) RegisterCounter(pluginID, metricName string, counter prometheus.Counter) error {
	return r.register(pluginID, metricName, "RegisterCounter", counter)
}

// RegisterGauge registers a gauge metric for a plugin
func (r *Registry) RegisterGauge(pluginID, metricName string, gauge prometheus.Gauge) error {
	return r.register(pluginID, metricName, "RegisterGauge", gauge)
}

// RegisterHistogram registers a histogram metric for a plugin
func (r *Registry) RegisterHistogram(pluginID, metricName string, histogram prometheus.Histogram) error {
	return r.register(pluginID, metricName, "RegisterHistogram", histogram)
}

func (r *Registry) register(pluginID, metricName, method string, collector prometheus.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", pluginID, metricName)

	if _, exists := r.registeredMetrics[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("metric %s already registered for plugin %s", metricName, pluginID),
			"Registry", method, "duplicate metric registration")
	}

	if err := r.prometheusRegistry.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if stderrors.As(err, &alreadyRegErr) {
			return errors.WrapInvalid(err, "Registry", method,
				fmt.Sprintf("prometheus conflict for metric %s", metricName))
		}
		return errors.WrapFatal(err, "Registry", method, "prometheus registration")
	}

	r.registeredMetrics[key] = collector
	return nil
}

// Unregister removes a metric from the registry
func (r *Registry) Unregister(pluginID, metricName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s.%s", pluginID, metricName)

	collector, exists := r.registeredMetrics[key]
	if !exists {
		return false
	}

	success := r.prometheusRegistry.Unregister(collector)
	if success {
		delete(r.registeredMetrics, key)
	}

	return success
}

// registerCore registers the shared plugin lifecycle metrics
func (r *Registry) registerCore() {
	r.prometheusRegistry.MustRegister(
		r.Metrics.PluginStarts,
		r.Metrics.PluginStops,
		r.Metrics.PluginRunning,
		r.Metrics.ActiveSubscriptions,
		r.Metrics.DeltasPublished,
		r.Metrics.StartDuration,
	)
}
