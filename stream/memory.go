package stream

import "sync"

// MemorySource is an in-process Source backed by a handler list. It exists so
// plugins can be exercised without a transport: tests and examples publish
// values directly with Emit.
type MemorySource struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

// NewMemorySource creates an empty in-process source.
func NewMemorySource() *MemorySource {
	return &MemorySource{handlers: make(map[int]Handler)}
}

// Subscribe implements Source.
func (s *MemorySource) Subscribe(handler Handler) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.handlers[id] = handler

	return UnsubscribeFunc(func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
		return nil
	}), nil
}

// Emit delivers a value to every live handler in subscription order.
func (s *MemorySource) Emit(value any) {
	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.handlers))
	for id := 0; id < s.nextID; id++ {
		if h, ok := s.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	s.mu.Unlock()

	// Invoke outside the lock so a handler may unsubscribe its own source
	for _, h := range handlers {
		h(value)
	}
}

// HandlerCount reports the number of live subscriptions.
func (s *MemorySource) HandlerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}
