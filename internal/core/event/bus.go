package event

import (
	"fmt"
	"strings"
)

// TurnSuffix marks an action that waits for the turn scheduler.
const TurnSuffix = "_TURN"

// Type names an event kind, e.g. "MoveAction" or "MoveAction_TURN".
type Type string

// Turn returns the deferred variant of t.
func (t Type) Turn() Type {
	if t.IsTurn() {
		return t
	}
	return t + TurnSuffix
}

func (t Type) IsTurn() bool { return strings.HasSuffix(string(t), TurnSuffix) }

// Immediate strips the turn suffix.
func (t Type) Immediate() Type { return Type(strings.TrimSuffix(string(t), TurnSuffix)) }

// Event is a type tag plus its payload. Treat it as immutable once thrown.
type Event struct {
	Type Type
	Data Payload
}

// Handler reacts to one event. A returned error aborts the current drain.
type Handler func(Event) error

// ListenerID identifies one registration on a Bus.
type ListenerID uint64

// Observer is notified after every dispatched event.
type Observer interface {
	EventDispatched(ev Event, handlers int)
}

type listener struct {
	id ListenerID
	fn Handler
}

// Bus is a FIFO event queue with a per-type listener table.
// Accessed only from the game loop goroutine, no locks.
type Bus struct {
	handlers  map[Type][]listener
	queue     []Event
	head      int
	nextID    ListenerID
	observers []Observer
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]listener),
		queue:    make([]Event, 0, 64),
	}
}

// RegisterListener appends fn to the handlers of t. Handlers run in
// registration order.
func (b *Bus) RegisterListener(t Type, fn Handler) ListenerID {
	b.nextID++
	b.handlers[t] = append(b.handlers[t], listener{id: b.nextID, fn: fn})
	return b.nextID
}

// RemoveListener drops the registration id from t. Unknown ids are ignored.
func (b *Bus) RemoveListener(t Type, id ListenerID) {
	ls := b.handlers[t]
	for i, l := range ls {
		if l.id == id {
			b.handlers[t] = append(ls[:i:i], ls[i+1:]...)
			if len(b.handlers[t]) == 0 {
				delete(b.handlers, t)
			}
			return
		}
	}
}

// Listeners returns the number of handlers registered for t.
func (b *Bus) Listeners(t Type) int { return len(b.handlers[t]) }

// Observe adds an observer notified after each dispatch.
func (b *Bus) Observe(o Observer) {
	b.observers = append(b.observers, o)
}

// Throw enqueues a new event. It never dispatches synchronously.
func (b *Bus) Throw(t Type, data Payload) {
	b.Forward(Event{Type: t, Data: data})
}

// Forward enqueues an existing event.
func (b *Bus) Forward(ev Event) {
	b.queue = append(b.queue, ev)
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int { return len(b.queue) - b.head }

// ProcessEvents pops and dispatches events until the queue is empty.
// Events thrown by handlers during the drain are dispatched in the same
// call. The first handler error stops the drain; the remaining events
// stay queued for the next call.
func (b *Bus) ProcessEvents() (int, error) {
	n := 0
	for b.head < len(b.queue) {
		ev := b.queue[b.head]
		b.queue[b.head] = Event{}
		b.head++
		n++

		ls := b.handlers[ev.Type]
		for _, l := range ls {
			if err := l.fn(ev); err != nil {
				b.compact()
				return n, fmt.Errorf("dispatch %s: %w", ev.Type, err)
			}
		}
		for _, o := range b.observers {
			o.EventDispatched(ev, len(ls))
		}
	}
	b.compact()
	return n, nil
}

func (b *Bus) compact() {
	if b.head == 0 {
		return
	}
	rest := copy(b.queue, b.queue[b.head:])
	clear(b.queue[rest:])
	b.queue = b.queue[:rest]
	b.head = 0
}
