package system

import (
	"time"

	"github.com/nightcaste/nightcaste/internal/core/event"
	coresys "github.com/nightcaste/nightcaste/internal/core/system"
)

// EventDispatchSystem drains the bus once per logic step, after the
// behaviours produced their intents. Phase 2 (Dispatch).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *EventDispatchSystem) Update(_ time.Duration) error {
	_, err := s.bus.ProcessEvents()
	return err
}
