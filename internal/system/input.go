package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/behaviour"
	"github.com/nightcaste/nightcaste/internal/core/event"
	coresys "github.com/nightcaste/nightcaste/internal/core/system"
	"github.com/nightcaste/nightcaste/internal/turn"
)

// InputProcessor drains keys polled by the front end into KeyPressed
// events and records pressed keys for input driven behaviours. The pause
// key toggles the game between paused and running. Phase 0 (Input).
type InputProcessor struct {
	listeners
	source     <-chan event.Key
	maxPerTick int
	keys       *behaviour.KeyState
	state      *turn.State
	log        *zap.Logger
}

func NewInputProcessor(
	bus *event.Bus,
	source <-chan event.Key,
	maxPerTick int,
	keys *behaviour.KeyState,
	state *turn.State,
	log *zap.Logger,
) *InputProcessor {
	p := &InputProcessor{
		listeners:  newListeners(bus),
		source:     source,
		maxPerTick: maxPerTick,
		keys:       keys,
		state:      state,
		log:        log,
	}
	p.listen(event.KeyPressed, p.onKeyPressed)
	return p
}

func (p *InputProcessor) Phase() coresys.Phase { return coresys.PhaseInput }

// Update throws up to maxPerTick queued keys. A nil source is a no-op.
func (p *InputProcessor) Update(_ time.Duration) error {
	if p.source == nil {
		return nil
	}
	for i := 0; i < p.maxPerTick; i++ {
		select {
		case k := <-p.source:
			p.bus.Throw(event.KeyPressed, event.KeyPress{Key: k})
		default:
			return nil
		}
	}
	return nil
}

func (p *InputProcessor) onKeyPressed(ev event.Event) error {
	kp, err := payload[event.KeyPress](ev)
	if err != nil {
		return err
	}
	if kp.Key != event.KeyPause {
		p.keys.Press(kp.Key)
		return nil
	}
	if p.state.Status == turn.Paused {
		p.bus.Throw(event.ResumeGame, event.Resume{})
	} else {
		p.bus.Throw(event.PauseGame, event.Pause{})
	}
	p.log.Debug("pause toggled", zap.Stringer("status", p.state.Status))
	return nil
}
