package turn

import (
	"time"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/core/event"
	coresys "github.com/nightcaste/nightcaste/internal/core/system"
)

// Scheduler collects deferred turn actions and replays them one per update
// as immediate events. A round lasts at least minTurnTime.
//
// Accessed only from the game loop goroutine, no locks.
type Scheduler struct {
	bus         *event.Bus
	state       *State
	minTurnTime time.Duration
	queue       []event.Event
	pause       bool
	listeners   map[event.Type]event.ListenerID
	log         *zap.Logger
}

func NewScheduler(bus *event.Bus, state *State, minTurnTime time.Duration, log *zap.Logger) *Scheduler {
	s := &Scheduler{
		bus:         bus,
		state:       state,
		minTurnTime: minTurnTime,
		listeners:   make(map[event.Type]event.ListenerID),
		log:         log,
	}
	for _, t := range event.TurnActions {
		s.listeners[t] = bus.RegisterListener(t, s.onTurnAction)
	}
	s.listeners[event.PauseGame] = bus.RegisterListener(event.PauseGame, s.onPause)
	s.listeners[event.ResumeGame] = bus.RegisterListener(event.ResumeGame, s.onResume)
	return s
}

func (s *Scheduler) Phase() coresys.Phase { return coresys.PhaseTurn }

func (s *Scheduler) State() *State { return s.state }

// Queued returns the number of collected turn actions not yet replayed.
func (s *Scheduler) Queued() int { return len(s.queue) }

// MinTurnTime returns the minimum duration of a round.
func (s *Scheduler) MinTurnTime() time.Duration { return s.minTurnTime }

// Close unregisters the scheduler from the bus.
func (s *Scheduler) Close() {
	for t, id := range s.listeners {
		s.bus.RemoveListener(t, id)
	}
	clear(s.listeners)
}

func (s *Scheduler) onTurnAction(ev event.Event) error {
	s.queue = append(s.queue, ev)
	if s.state.Status == WaitingInput {
		s.state.Status = InputReceived
	}
	return nil
}

// onPause pauses at once between rounds, otherwise after the running round.
func (s *Scheduler) onPause(event.Event) error {
	if s.state.Status == WaitingInput {
		s.state.Status = Paused
		s.log.Debug("game paused", zap.Uint64("round", s.state.Round))
		return nil
	}
	if s.state.Status != Paused {
		s.pause = true
	}
	return nil
}

func (s *Scheduler) onResume(event.Event) error {
	s.pause = false
	if s.state.Status != Paused {
		return nil
	}
	s.state.Status = WaitingInput
	if len(s.queue) > 0 {
		s.state.Status = InputReceived
	}
	s.log.Debug("game resumed", zap.Uint64("round", s.state.Round))
	return nil
}

// Update advances the state machine by one step.
func (s *Scheduler) Update(dt time.Duration) error {
	switch s.state.Status {
	case InputReceived:
		s.state.Status = CollectTurns
	case CollectTurns:
		s.state.Status = InProgress
		s.state.Elapsed = 0
	case InProgress:
		s.state.Elapsed += dt
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue[0] = event.Event{}
			s.queue = s.queue[1:]
			s.bus.Forward(event.Event{Type: ev.Type.Immediate(), Data: ev.Data})
			return nil
		}
		if s.state.Elapsed >= s.minTurnTime {
			s.completeRound()
		}
	}
	return nil
}

func (s *Scheduler) completeRound() {
	s.state.Round++
	s.state.Elapsed = 0
	s.queue = nil
	s.bus.Throw(event.RoundCompleted, event.Round{Number: s.state.Round})
	if s.pause {
		s.pause = false
		s.state.Status = Paused
		s.log.Debug("game paused", zap.Uint64("round", s.state.Round))
		return
	}
	s.state.Status = WaitingInput
}
