// Package pluginbase is the reusable base layer for SignalK-style server
// plugins. It has two halves that plugin authors combine:
//
// # Configuration schema
//
// The schema package builds the declarative option schema a plugin publishes
// to its host. Schemas are declared with a flat builder API: scalars and
// arrays are declared in place, nested objects open with BeginObject and
// close with EndObject, and the finished document marshals to a
// JSON-Schema-shaped object the host UI renders. The same builder fills
// declared defaults into an option record at start time.
//
// # Lifecycle engine
//
// The plugin package drives a plugin between stopped and running. Start
// fills defaults, resolves the data directory, and runs the plugin's
// OnStarted hook; every stream subscription the hook registers is tracked
// and torn down exactly once, in registration order, at the next Stop.
// Supporting packages provide the rest of the plumbing:
//
//   - stream: the abstract subscription contract plus an in-memory source
//   - delta: the envelope format plugins publish onto the host bus
//   - natsbridge: NATS-backed stream sources and a delta sink
//   - registry: plugin factories, instances, and host-side shutdown
//   - store: per-plugin JSON configuration persistence
//   - metric: Prometheus counters for plugin lifecycle activity
//   - errors: classified errors shared by every package
//
// examples/positionlogger is a complete worked plugin, and
// cmd/schema-export renders every registered plugin's schema to versioned
// JSON Schema files with a YAML catalog.
package pluginbase
