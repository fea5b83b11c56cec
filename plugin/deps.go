package plugin

import (
	"log/slog"

	"github.com/joelkoz/signalk-plugin-base/delta"
	"github.com/joelkoz/signalk-plugin-base/metric"
)

// StatusSink receives plugin status and error reports for display by the
// host. Both calls are fire-and-forget.
type StatusSink interface {
	ReportStatus(message string)
	ReportError(message string)
}

// DirectoryResolver supplies the host's data directory. The path is stable
// for the process lifetime.
type DirectoryResolver interface {
	DataDirectory() string
}

// MessageSink accepts delta envelopes for the host's data bus.
type MessageSink interface {
	Publish(pluginID string, envelope delta.Delta) error
}

// Dependencies provides the host collaborators a plugin needs. Status, Bus,
// Metrics, and Logger may be nil; the plugin degrades to no-ops for the
// missing pieces.
type Dependencies struct {
	Status  StatusSink
	Dirs    DirectoryResolver
	Bus     MessageSink
	Logger  *slog.Logger
	Metrics *metric.Registry
}

// GetLogger returns the configured logger or a default logger if none is
// provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithPlugin returns a logger configured with plugin context
func (d *Dependencies) GetLoggerWithPlugin(pluginID string) *slog.Logger {
	return d.GetLogger().With("plugin", pluginID)
}
