// Package plugin implements the lifecycle and subscription-tracking engine of
// the base layer. A Plugin moves between stopped and running under host
// control; every stream subscription registered while running is torn down
// exactly once, in registration order, when the plugin stops.
//
// The controller is callback-driven and assumes a single logical thread of
// control: the host never invokes Start, Stop, or Subscribe concurrently for
// the same instance. Stop is safe to call from inside a subscription handler.
package plugin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joelkoz/signalk-plugin-base/delta"
	"github.com/joelkoz/signalk-plugin-base/errors"
	"github.com/joelkoz/signalk-plugin-base/schema"
	"github.com/joelkoz/signalk-plugin-base/stream"
)

// NotStarted is the sentinel StartedOn value before a successful start and
// after any stop.
const NotStarted int64 = -1

// Definition describes a plugin to the host.
type Definition struct {
	ID          string // unique, stable identifier (e.g. "anchor-watch")
	Name        string // human-readable display name
	Description string
	Version     string
	Schema      *schema.Builder // configuration schema; may be nil
}

// Plugin is the reusable base a concrete plugin embeds or wraps. The host
// drives it through Start and Stop; the plugin author supplies the hooks and
// calls Subscribe and SendDelta from them.
type Plugin struct {
	def    Definition
	deps   Dependencies
	logger *slog.Logger

	// OnStarted runs during Start, after defaults are filled. The plugin is
	// expected to register its stream subscriptions here. When nil, a
	// warning is logged that no streams were set up.
	OnStarted func(ctx context.Context) error

	// OnStopped runs during Stop, after every subscription has been torn
	// down. Nil means no teardown beyond the base cleanup.
	OnStopped func() error

	mu        sync.Mutex
	running   bool
	startedOn int64 // unix milliseconds, NotStarted when not running
	subs      []stream.Subscription
	restart   func()
	options   map[string]any
	dataDir   string
}

// New creates a stopped plugin from its definition and host collaborators.
func New(def Definition, deps Dependencies) *Plugin {
	return &Plugin{
		def:       def,
		deps:      deps,
		logger:    deps.GetLoggerWithPlugin(def.ID),
		startedOn: NotStarted,
	}
}

// Definition returns the plugin's static description.
func (p *Plugin) Definition() Definition {
	return p.def
}

// ID returns the plugin's unique identifier.
func (p *Plugin) ID() string {
	return p.def.ID
}

// Schema returns the finished schema document, or an error when the builder
// was left with open objects.
func (p *Plugin) Schema() (*schema.Document, error) {
	if p.def.Schema == nil {
		return &schema.Document{Properties: schema.NewProperties()}, nil
	}
	doc, err := p.def.Schema.Schema()
	if err != nil {
		return nil, errors.Wrap(err, "Plugin", "Schema", "schema construction")
	}
	return doc, nil
}

// Start transitions the plugin from stopped to running.
//
// It clears any stale subscription bookkeeping, merges declared defaults into
// the options record (present keys are never overwritten), resolves the data
// directory, and invokes OnStarted. The start timestamp is recorded only
// after the hook returns nil: a hook fault propagates to the host unmodified
// and leaves the timestamp at the sentinel, signalling an incomplete startup.
func (p *Plugin) Start(ctx context.Context, options map[string]any, restart func()) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Plugin", "Start", "state check")
	}

	began := time.Now()
	p.running = true
	p.subs = nil
	p.restart = restart

	if p.def.Schema != nil {
		options = p.def.Schema.FillDefaults(options)
	} else if options == nil {
		options = make(map[string]any)
	}
	p.options = options

	if p.deps.Dirs != nil {
		p.dataDir = p.deps.Dirs.DataDirectory()
	}
	p.mu.Unlock()

	if err := p.runStartedHook(ctx); err != nil {
		return errors.Wrap(err, "Plugin", "Start", "OnStarted hook")
	}

	p.mu.Lock()
	p.startedOn = time.Now().UnixMilli()
	p.mu.Unlock()

	if m := p.deps.Metrics.CoreMetrics(); m != nil {
		m.RecordStart(p.def.ID, time.Since(began))
	}
	p.logger.Debug("plugin started")
	return nil
}

func (p *Plugin) runStartedHook(ctx context.Context) error {
	if p.OnStarted == nil {
		p.logger.Warn("plugin started without an OnStarted hook; no streams were set up")
		return nil
	}
	return p.OnStarted(ctx)
}

// Stop transitions the plugin back to stopped. Calling it while already
// stopped is a no-op.
//
// Every tracked subscription is unsubscribed exactly once, in registration
// order. The tracked list is emptied before OnStopped runs so observers see
// a clean slate. The teardown iterates a snapshot, so a handler that calls
// Stop on its own plugin (or unsubscribes its own source) cannot corrupt the
// bookkeeping. Unsubscribe failures are logged and do not abort the
// teardown; an OnStopped fault propagates to the host.
func (p *Plugin) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	snapshot := p.subs
	p.subs = nil
	p.restart = nil
	p.startedOn = NotStarted
	p.mu.Unlock()

	for _, sub := range snapshot {
		if err := sub.Unsubscribe(); err != nil {
			p.logger.Error("unsubscribe failed during stop", "error", err)
		}
	}

	if m := p.deps.Metrics.CoreMetrics(); m != nil {
		m.RecordStop(p.def.ID)
	}

	if p.OnStopped != nil {
		if err := p.OnStopped(); err != nil {
			return errors.Wrap(err, "Plugin", "Stop", "OnStopped hook")
		}
	}

	p.logger.Debug("plugin stopped")
	return nil
}

// Restart invokes the restart callback supplied at start time, if any. It
// does not itself transition state; the host is expected to drive the
// subsequent stop/start cycle. Without a callback this is a silent no-op.
func (p *Plugin) Restart() {
	p.mu.Lock()
	restart := p.restart
	p.mu.Unlock()

	if restart != nil {
		restart()
	}
}

// Subscribe attaches handler to source and tracks the returned capability
// for teardown at the next Stop. It is meant to be called from OnStarted;
// a subscription made while stopped is only cleaned up because Start clears
// the tracked list.
func (p *Plugin) Subscribe(source stream.Source, handler stream.Handler) error {
	sub, err := source.Subscribe(handler)
	if err != nil {
		return errors.WrapTransient(err, "Plugin", "Subscribe", "source attachment")
	}

	p.mu.Lock()
	p.subs = append(p.subs, sub)
	count := len(p.subs)
	p.mu.Unlock()

	if m := p.deps.Metrics.CoreMetrics(); m != nil {
		m.RecordSubscriptions(p.def.ID, count)
	}
	return nil
}

// SendDelta publishes exactly one envelope carrying the given values to the
// host bus, labelled with this plugin's ID.
func (p *Plugin) SendDelta(values []delta.PathValue) error {
	if p.deps.Bus == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"Plugin", "SendDelta", "message sink availability")
	}

	if err := p.deps.Bus.Publish(p.def.ID, delta.New(p.def.ID, values)); err != nil {
		return errors.WrapTransient(err, "Plugin", "SendDelta", "bus publish")
	}

	if m := p.deps.Metrics.CoreMetrics(); m != nil {
		m.RecordDelta(p.def.ID)
	}
	return nil
}

// ReportStatus forwards a human-readable status line to the host. No-op
// without a status sink.
func (p *Plugin) ReportStatus(message string) {
	if p.deps.Status != nil {
		p.deps.Status.ReportStatus(message)
	}
}

// ReportError forwards an error line to the host. No-op without a status
// sink.
func (p *Plugin) ReportError(message string) {
	if p.deps.Status != nil {
		p.deps.Status.ReportError(message)
	}
}

// Debug emits a best-effort diagnostic line.
func (p *Plugin) Debug(message string) {
	p.logger.Debug(message)
}

// Running reports whether the plugin is between a Start and its matching
// Stop.
func (p *Plugin) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// StartedOn returns the unix-millisecond timestamp recorded after the last
// successful start, or NotStarted.
func (p *Plugin) StartedOn() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startedOn
}

// Options returns the options record as filled during the last Start. The
// base layer treats it as read-only; the plugin may mutate its own copy.
func (p *Plugin) Options() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.options
}

// DataDir returns the data directory resolved during the last Start.
func (p *Plugin) DataDir() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dataDir
}

// SubscriptionCount reports how many subscriptions are currently tracked.
func (p *Plugin) SubscriptionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
