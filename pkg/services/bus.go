// Package services contains the business logic for hourbook.
package services

import (
	"sync"

	"github.com/google/uuid"
)

// ChangeEvent describes a mutation to an entity, published to live feeds.
type ChangeEvent struct {
	Entity string    `json:"entity"` // "project" or "time_log"
	Action string    `json:"action"` // "created", "updated", "archived", "deleted"
	ID     uuid.UUID `json:"id"`
}

// ChangeBus is a best-effort in-process publish/subscribe bus feeding the
// live event stream. Slow subscribers drop events rather than block writers.
type ChangeBus struct {
	mu   sync.Mutex
	subs map[chan ChangeEvent]struct{}
}

// NewChangeBus creates an empty change bus.
func NewChangeBus() *ChangeBus {
	return &ChangeBus{subs: make(map[chan ChangeEvent]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called to release the subscription.
func (b *ChangeBus) Subscribe() (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, 16)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with room in its buffer.
func (b *ChangeBus) Publish(event ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Subscriber is not keeping up; drop the event.
		}
	}
}
