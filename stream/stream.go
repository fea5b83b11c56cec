// Package stream defines the capability contracts between the plugin base
// layer and value-producing sources. The transport behind a Source is
// deliberately abstract: the base layer only needs to attach a handler and
// hold on to the returned cancellation capability.
package stream

// Handler receives one value from a source. Handlers run one at a time in
// the delivery order imposed by the source.
type Handler func(value any)

// Source is anything a plugin can register interest in.
type Source interface {
	// Subscribe attaches the handler and returns the capability used to
	// cancel delivery. The handler keeps receiving values until the
	// subscription is cancelled.
	Subscribe(handler Handler) (Subscription, error)
}

// Subscription is the capability to cancel a live registration.
type Subscription interface {
	Unsubscribe() error
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(handler Handler) (Subscription, error)

// Subscribe implements Source.
func (f SourceFunc) Subscribe(handler Handler) (Subscription, error) {
	return f(handler)
}

// UnsubscribeFunc adapts a plain function to the Subscription interface.
type UnsubscribeFunc func() error

// Unsubscribe implements Subscription.
func (f UnsubscribeFunc) Unsubscribe() error {
	return f()
}
