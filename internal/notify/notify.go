// Package notify tells interested observers that a collection changed.
// Events are emitted only after the change is durably committed.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one committed change.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Collection string    `json:"collection"`
	Op         Op        `json:"op"`
	RecordID   int64     `json:"record_id"`
	Month      string    `json:"month,omitempty"`
	At         time.Time `json:"at"`
}

// NewEvent stamps a change with a fresh id and the current time.
func NewEvent(collection string, op Op, recordID int64, month string) Event {
	return Event{
		ID:         uuid.New(),
		Collection: collection,
		Op:         op,
		RecordID:   recordID,
		Month:      month,
		At:         time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, e Event)

func (f Func) Notify(ctx context.Context, e Event) {
	f(ctx, e)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, e)
		}
	}
}

// Hub delivers events synchronously to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it again.
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Notify(_ context.Context, e Event) {
	h.mu.RLock()
	subs := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Subscribers returns the number of registered observers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
