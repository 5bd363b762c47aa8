// Package events implements the queue that carries application events raised
// by systems between the two drain points of a frame.
package events

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Event is the kind half of a raised event. Kinds are used as map keys when
// handlers are looked up, so a kind must be a comparable value; two kinds are
// equal only when they are the same concrete type holding equal values.
type Event any

// Payload is the data half of a raised event. Handlers receive it as-is and
// are expected to assert it back to its concrete type.
type Payload any

// Raised is one queued (kind, payload) pair.
type Raised struct {
	Kind    Event
	Payload Payload
}

// Bus is a FIFO queue of raised events. Raising is cheap and never blocks on
// dispatch; dispatch is pulled by draining the queue.
type Bus struct {
	mu     sync.RWMutex
	queue  []Raised
	logger zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Raise appends an event to the queue.
func (b *Bus) Raise(kind Event, payload Payload) {
	if e := b.logger.Trace(); e.Enabled() {
		if data, err := json.Marshal(payload); err == nil {
			e.Str("kind", fmt.Sprintf("%T", kind)).RawJSON("payload", data).Msg("event raised")
		} else {
			e.Str("kind", fmt.Sprintf("%T", kind)).Msg("event raised")
		}
	}
	b.mu.Lock()
	b.queue = append(b.queue, Raised{Kind: kind, Payload: payload})
	b.mu.Unlock()
}

// Len returns the number of queued events.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.queue)
}

// Drain removes and returns all queued events in the order they were raised.
// An empty queue is detected under the shared lock so the common no-event
// case never takes the exclusive lock.
func (b *Bus) Drain() []Raised {
	b.mu.RLock()
	empty := len(b.queue) == 0
	b.mu.RUnlock()
	if empty {
		return nil
	}

	b.mu.Lock()
	drained := b.queue
	b.queue = nil
	b.mu.Unlock()
	return drained
}
