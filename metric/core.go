// Package metric provides Prometheus metric registration for the plugin base
// layer. A nil *Registry disables metrics entirely; every call site treats the
// registry as optional.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the core plugin lifecycle metrics shared by every plugin
// instance running in the process.
type Metrics struct {
	PluginStarts        *prometheus.CounterVec
	PluginStops         *prometheus.CounterVec
	PluginRunning       *prometheus.GaugeVec
	ActiveSubscriptions *prometheus.GaugeVec
	DeltasPublished     *prometheus.CounterVec
	StartDuration       *prometheus.HistogramVec
}

// NewMetrics creates the core metric set. Collectors are registered by the
// Registry constructor.
func NewMetrics() *Metrics {
	return &Metrics{
		PluginStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalk",
			Subsystem: "plugin",
			Name:      "starts_total",
			Help:      "Total successful plugin starts",
		}, []string{"plugin"}),
		PluginStops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalk",
			Subsystem: "plugin",
			Name:      "stops_total",
			Help:      "Total plugin stops",
		}, []string{"plugin"}),
		PluginRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signalk",
			Subsystem: "plugin",
			Name:      "running",
			Help:      "Whether the plugin is currently running (0 or 1)",
		}, []string{"plugin"}),
		ActiveSubscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "signalk",
			Subsystem: "plugin",
			Name:      "active_subscriptions",
			Help:      "Stream subscriptions currently tracked by the plugin",
		}, []string{"plugin"}),
		DeltasPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "signalk",
			Subsystem: "plugin",
			Name:      "deltas_published_total",
			Help:      "Delta envelopes published to the host bus",
		}, []string{"plugin"}),
		StartDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "signalk",
			Subsystem: "plugin",
			Name:      "start_duration_seconds",
			Help:      "Time spent inside plugin start, including the OnStarted hook",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"plugin"}),
	}
}

// RecordStart records one successful plugin start.
func (m *Metrics) RecordStart(plugin string, duration time.Duration) {
	m.PluginStarts.WithLabelValues(plugin).Inc()
	m.PluginRunning.WithLabelValues(plugin).Set(1)
	m.StartDuration.WithLabelValues(plugin).Observe(duration.Seconds())
}

// RecordStop records one plugin stop.
func (m *Metrics) RecordStop(plugin string) {
	m.PluginStops.WithLabelValues(plugin).Inc()
	m.PluginRunning.WithLabelValues(plugin).Set(0)
	m.ActiveSubscriptions.WithLabelValues(plugin).Set(0)
}

// RecordSubscriptions sets the current tracked subscription count.
func (m *Metrics) RecordSubscriptions(plugin string, count int) {
	m.ActiveSubscriptions.WithLabelValues(plugin).Set(float64(count))
}

// RecordDelta records one published delta envelope.
func (m *Metrics) RecordDelta(plugin string) {
	m.DeltasPublished.WithLabelValues(plugin).Inc()
}
