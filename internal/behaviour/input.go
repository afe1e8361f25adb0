package behaviour

import (
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/turn"
)

// actionCost is the tick cost of a move or use.
const actionCost = 1

// InputBehaviour turns pressed keys into deferred turn actions for
// entities with an Input component. It only acts while the scheduler
// waits for input.
type InputBehaviour struct {
	bus  *event.Bus
	keys *KeyState
}

func NewInputBehaviour(bus *event.Bus, keys *KeyState) *InputBehaviour {
	return &InputBehaviour{bus: bus, keys: keys}
}

var moveKeys = []struct {
	key    event.Key
	dx, dy float64
}{
	{event.KeyLeft, -1, 0},
	{event.KeyRight, 1, 0},
	{event.KeyDown, 0, 1},
	{event.KeyUp, 0, -1},
}

func (b *InputBehaviour) Act(id ecs.EntityID, state *turn.State) (int, bool, error) {
	if state.Status != turn.WaitingInput {
		return 0, false, nil
	}
	for _, mk := range moveKeys {
		if b.keys.Pressed(mk.key) {
			b.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: id, DX: mk.dx, DY: mk.dy})
			return actionCost, true, nil
		}
	}
	if b.keys.Pressed(event.KeyUse) {
		b.bus.Throw(event.UseEntityAction.Turn(), event.Use{User: id})
		return actionCost, true, nil
	}
	return 0, false, nil
}
