package turn

import "time"

// Status is the phase of the current round.
type Status int

const (
	WaitingInput Status = iota
	InputReceived
	CollectTurns
	InProgress
	Paused
)

func (s Status) String() string {
	switch s {
	case WaitingInput:
		return "waiting-input"
	case InputReceived:
		return "input-received"
	case CollectTurns:
		return "collect-turns"
	case InProgress:
		return "in-progress"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// State is the game state shared by the scheduler, behaviours and the
// front end. Only the Scheduler writes it.
type State struct {
	Status  Status
	Round   uint64
	Elapsed time.Duration // time spent in the current InProgress phase
}
