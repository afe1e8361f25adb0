package system

import "time"

// Phase defines execution ordering within a single logic step.
type Phase int

const (
	PhaseInput      Phase = iota // 0: deliver polled input
	PhaseBehaviour               // 1: behaviours produce intent events
	PhaseDispatch                // 2: drain the event bus
	PhaseTurn                    // 3: advance the turn scheduler
	PhasePostUpdate              // 4: end of step bookkeeping
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseBehaviour:
		return "behaviour"
	case PhaseDispatch:
		return "dispatch"
	case PhaseTurn:
		return "turn"
	case PhasePostUpdate:
		return "post-update"
	}
	return "unknown"
}

// System is the interface every per-step system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration) error
}
