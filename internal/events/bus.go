package events

import (
	"fmt"
	"sync"
)

// Bus distributes events to subscribers through buffered channels.
//
// Thread safety: all methods are safe for concurrent use. Publish is
// non-blocking; if a subscriber's buffer is full the event is dropped for
// that subscriber only, so slow consumers never stall the runner.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	nextID      int
	closed      bool

	defaultBufferSize int
}

type subscription struct {
	ch chan Event
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithDefaultBufferSize sets the buffer size used when Subscribe is called
// with size 0. Default: 100.
func WithDefaultBufferSize(size int) BusOption {
	return func(b *Bus) {
		if size > 0 {
			b.defaultBufferSize = size
		}
	}
}

// NewBus creates an event bus.
func NewBus(options ...BusOption) *Bus {
	b := &Bus{
		subscribers:       make(map[int]*subscription),
		defaultBufferSize: 100,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Publish sends an event to all subscribers without blocking. Events are
// dropped for subscribers whose buffers are full. Returns an error only if
// the bus is closed.
func (b *Bus) Publish(event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("event bus is closed")
	}

	for _, sub := range b.subscribers {
		select {
		case sub.ch <- event:
		default:
			// Buffer full: drop for this subscriber.
		}
	}

	return nil
}

// Subscribe registers a new subscriber and returns its event channel plus a
// cancel function. The cancel function must be called to release the
// subscription; the channel is closed on cancel and on bus Close.
func (b *Bus) Subscribe(bufferSize int) (<-chan Event, func()) {
	if bufferSize <= 0 {
		bufferSize = b.defaultBufferSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	sub := &subscription{ch: make(chan Event, bufferSize)}
	if b.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	b.subscribers[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(sub.ch)
			}
		})
	}

	return sub.ch, cancel
}

// Close shuts down the bus and all subscriptions. After Close, Publish
// returns an error.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for id, sub := range b.subscribers {
		delete(b.subscribers, id)
		close(sub.ch)
	}

	return nil
}
