package system

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/behaviour"
	"github.com/nightcaste/nightcaste/internal/collision"
	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/config"
	"github.com/nightcaste/nightcaste/internal/core/event"
	coresys "github.com/nightcaste/nightcaste/internal/core/system"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/mapgen"
	"github.com/nightcaste/nightcaste/internal/scripting"
	"github.com/nightcaste/nightcaste/internal/turn"
)

// Deps are the collaborators processors are built from.
type Deps struct {
	Bus      *event.Bus
	Entities *entity.Manager
	Maps     *mapgen.Manager
	Spatial  *collision.SpatialManager
	Scripts  *scripting.Engine
	State    *turn.State
	Keys     *behaviour.KeyState
	Keyboard <-chan event.Key
	Game     config.GameConfig
	Log      *zap.Logger
}

// Options are the per-processor settings of a [[systems]] entry.
type Options map[string]any

// Duration reads a duration option; numbers are seconds.
func (o Options) Duration(name string, def time.Duration) (time.Duration, error) {
	raw, ok := o[name]
	if !ok {
		return def, nil
	}
	v, err := component.ValueOf(raw)
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", name, err)
	}
	d, err := v.AsDuration()
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", name, err)
	}
	return d, nil
}

// Int reads an integer option.
func (o Options) Int(name string, def int) (int, error) {
	raw, ok := o[name]
	if !ok {
		return def, nil
	}
	v, err := component.ValueOf(raw)
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", name, err)
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, fmt.Errorf("option %s: %w", name, err)
	}
	return n, nil
}

// Factory builds a named processor.
type Factory func(d Deps, opts Options) (Processor, error)

const defaultKeysPerTick = 8

var factories = map[string]Factory{
	"InputProcessor": func(d Deps, o Options) (Processor, error) {
		n, err := o.Int("max_per_tick", defaultKeysPerTick)
		if err != nil {
			return nil, err
		}
		return NewInputProcessor(d.Bus, d.Keyboard, n, d.Keys, d.State, d.Log), nil
	},
	"TurnProcessor": func(d Deps, o Options) (Processor, error) {
		minTurn, err := o.Duration("min_turn_time", 0)
		if err != nil {
			return nil, err
		}
		return turn.NewScheduler(d.Bus, d.State, minTurn, d.Log), nil
	},
	"WorldInitializer": func(d Deps, _ Options) (Processor, error) {
		return NewWorldInitializer(d.Bus, d.Entities, d.Game.Player, d.Game.StartMap, d.Game.StartGenerator, d.Log), nil
	},
	"MapChangeProcessor": func(d Deps, _ Options) (Processor, error) {
		return NewMapChangeProcessor(d.Bus, d.Entities, d.Maps, d.Spatial, d.Log), nil
	},
	"MovementProcessor": func(d Deps, _ Options) (Processor, error) {
		return NewMovementProcessor(d.Bus, d.Entities, d.Spatial, d.Log), nil
	},
	"UseProcessor": func(d Deps, _ Options) (Processor, error) {
		return NewUseProcessor(d.Bus, d.Entities, d.Maps, d.Scripts, d.Log), nil
	},
}

// Manager builds the configured processors by name. Processors register
// their handlers in configuration order, which is the order they see
// each event.
type Manager struct {
	deps       Deps
	names      []string
	processors map[string]Processor
	systems    []coresys.System
	log        *zap.Logger
}

func NewManager(deps Deps) *Manager {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Keys == nil {
		deps.Keys = behaviour.NewKeyState()
	}
	if deps.State == nil {
		deps.State = &turn.State{}
	}
	return &Manager{deps: deps, processors: make(map[string]Processor), log: deps.Log}
}

// Add registers p under name. Processors that also implement
// coresys.System are run every logic step.
func (m *Manager) Add(name string, p Processor) error {
	if _, dup := m.processors[name]; dup {
		return fmt.Errorf("processor %s already added", name)
	}
	m.names = append(m.names, name)
	m.processors[name] = p
	if s, ok := p.(coresys.System); ok {
		m.systems = append(m.systems, s)
	}
	return nil
}

// AddByName builds and adds the processor registered as name.
func (m *Manager) AddByName(name string, opts Options) error {
	f, ok := factories[name]
	if !ok {
		return fmt.Errorf("unknown processor %q", name)
	}
	p, err := f(m.deps, opts)
	if err != nil {
		return fmt.Errorf("processor %s: %w", name, err)
	}
	if err := m.Add(name, p); err != nil {
		p.Close()
		return err
	}
	m.log.Debug("processor added", zap.String("name", name))
	return nil
}

// Configure adds every configured processor in order.
func (m *Manager) Configure(cfgs []config.SystemConfig) error {
	for _, c := range cfgs {
		if err := m.AddByName(c.Name, c.Options); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the processor added under name.
func (m *Manager) Get(name string) (Processor, bool) {
	p, ok := m.processors[name]
	return p, ok
}

// Names lists the added processors in order.
func (m *Manager) Names() []string { return append([]string(nil), m.names...) }

// Systems returns the processors that take part in the logic step.
func (m *Manager) Systems() []coresys.System { return m.systems }

// Keys returns the key state shared with input behaviours.
func (m *Manager) Keys() *behaviour.KeyState { return m.deps.Keys }

// State returns the game state owned by the turn processor.
func (m *Manager) State() *turn.State { return m.deps.State }

// Close unregisters every processor.
func (m *Manager) Close() {
	for _, name := range m.names {
		m.processors[name].Close()
	}
}
