// Package eventbus provides a small fan-out publish/subscribe bus used to
// decouple the solve pipeline from its observers.
package eventbus

import "sync"

// Bus fans published events out to all subscribers. Delivery is non-blocking:
// a slow subscriber drops events rather than stalling the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan any
	closed bool
}

// New creates an empty Bus.
func New() *Bus { return &Bus{} }

// Publish sends the event to all subscribers.
func (b *Bus) Publish(e any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber with the given channel buffer size.
func (b *Bus) Subscribe(buf int) <-chan any {
	if buf <= 0 {
		buf = 8
	}
	ch := make(chan any, buf)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Close closes all subscriber channels and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
