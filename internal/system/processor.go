package system

import (
	"fmt"

	"github.com/nightcaste/nightcaste/internal/core/event"
)

// Processor is an event handler set registered on the bus. Processors
// register themselves when built; Close removes their handlers.
type Processor interface {
	Close()
}

// listeners tracks the registrations of one processor.
type listeners struct {
	bus *event.Bus
	ids map[event.Type]event.ListenerID
}

func newListeners(bus *event.Bus) listeners {
	return listeners{bus: bus, ids: make(map[event.Type]event.ListenerID)}
}

func (l *listeners) listen(t event.Type, h event.Handler) {
	l.ids[t] = l.bus.RegisterListener(t, h)
}

func (l *listeners) Close() {
	for t, id := range l.ids {
		l.bus.RemoveListener(t, id)
	}
	clear(l.ids)
}

// payload extracts the typed data of ev.
func payload[T event.Payload](ev event.Event) (T, error) {
	p, ok := ev.Data.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: unexpected payload %T", ev.Type, ev.Data)
	}
	return p, nil
}
