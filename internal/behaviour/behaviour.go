package behaviour

import (
	"fmt"
	"sort"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/turn"
)

// Behaviour drives entities that carry a given component. Act reports
// whether the entity acted and what the action cost in ticks.
type Behaviour interface {
	Act(id ecs.EntityID, state *turn.State) (cost int, acted bool, err error)
}

// Deps are the collaborators handed to behaviour factories.
type Deps struct {
	Bus      *event.Bus
	Entities *entity.Manager
	Keys     *KeyState
}

// Factory builds a named behaviour.
type Factory func(Deps) Behaviour

var factories = map[string]Factory{
	"InputBehaviour": func(d Deps) Behaviour { return NewInputBehaviour(d.Bus, d.Keys) },
}

// New builds the behaviour registered under name.
func New(name string, d Deps) (Behaviour, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown behaviour %q", name)
	}
	return f(d), nil
}

// Names lists the registered behaviour names.
func Names() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
