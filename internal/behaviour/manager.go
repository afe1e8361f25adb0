package behaviour

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/config"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	coresys "github.com/nightcaste/nightcaste/internal/core/system"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/turn"
)

type binding struct {
	kind component.Kind
	name string
	b    Behaviour
}

// Manager runs behaviours for every entity carrying their component.
// Entities with a Turn component are gated: they act only with zero ticks
// and once MinTurnTime has passed since their last action. Entities
// without one act on every update. A Locking entity whose turn has come
// holds the lock and keeps every other entity waiting, gated or not,
// until it acts.
//
// Accessed only from the game loop goroutine, no locks.
type Manager struct {
	deps     Deps
	state    *turn.State
	bindings []binding
	lock     ecs.EntityID
	log      *zap.Logger
}

func NewManager(deps Deps, state *turn.State, log *zap.Logger) *Manager {
	if deps.Keys == nil {
		deps.Keys = NewKeyState()
	}
	return &Manager{deps: deps, state: state, log: log}
}

func (m *Manager) Phase() coresys.Phase { return coresys.PhaseBehaviour }

// Keys returns the key state read by input driven behaviours.
func (m *Manager) Keys() *KeyState { return m.deps.Keys }

// Lock returns the entity holding the turn lock, or 0.
func (m *Manager) Lock() ecs.EntityID { return m.lock }

// Add binds b to kind. A kind may carry several behaviours; they run in
// the order they were added.
func (m *Manager) Add(kind component.Kind, name string, b Behaviour) {
	m.bindings = append(m.bindings, binding{kind: kind, name: name, b: b})
}

// AddByName binds the behaviour registered as name to the component
// called kindName.
func (m *Manager) AddByName(kindName, name string) error {
	kind, err := component.ParseKind(kindName)
	if err != nil {
		return fmt.Errorf("behaviour %s: %w", name, err)
	}
	b, err := New(name, m.deps)
	if err != nil {
		return err
	}
	m.Add(kind, name, b)
	return nil
}

// Configure binds every configured behaviour.
func (m *Manager) Configure(cfgs []config.BehaviourConfig) error {
	for _, c := range cfgs {
		if err := m.AddByName(c.Component, c.Name); err != nil {
			return err
		}
		m.log.Debug("behaviour bound", zap.String("component", c.Component), zap.String("behaviour", c.Name))
	}
	return nil
}

// Update lets every eligible entity act once. Nothing acts while paused.
// Keys pressed before the update are consumed by it.
func (m *Manager) Update(dt time.Duration) error {
	defer m.deps.Keys.Clear()
	if m.state.Status == turn.Paused {
		return nil
	}
	turns := entity.Store[component.Turn](m.deps.Entities)
	turns.Each(func(_ ecs.EntityID, t *component.Turn) {
		t.Delta += dt
	})
	m.acquireLock(turns)

	for _, bd := range m.bindings {
		for _, id := range m.deps.Entities.IDs(bd.kind) {
			if m.lock != 0 && id != m.lock {
				continue
			}
			t, gated := turns.Get(id)
			if gated && (t.Ticks != 0 || t.Delta < t.MinTurnTime) {
				continue
			}
			cost, acted, err := bd.b.Act(id, m.state)
			if err != nil {
				return fmt.Errorf("behaviour %s entity %d: %w", bd.name, id, err)
			}
			if !acted || !gated {
				continue
			}
			t.Ticks += cost
			t.Delta = 0
			if id == m.lock {
				m.lock = 0
			}
		}
	}
	normalize(turns)
	return nil
}

// acquireLock hands the lock to the lowest locking entity whose turn has
// come. A holder that lost its Turn component or died releases it.
func (m *Manager) acquireLock(turns *ecs.PtrComponentStore[component.Turn]) {
	if m.lock != 0 && !turns.Has(m.lock) {
		m.lock = 0
	}
	if m.lock != 0 {
		return
	}
	for _, id := range turns.IDs() {
		if t, _ := turns.Get(id); t.Locking && t.Ticks == 0 {
			m.lock = id
			return
		}
	}
}

// normalize subtracts the lowest tick count from every Turn, keeping the
// relative order.
func normalize(turns *ecs.PtrComponentStore[component.Turn]) {
	lowest := math.MaxInt
	turns.Each(func(_ ecs.EntityID, t *component.Turn) {
		lowest = min(lowest, t.Ticks)
	})
	if lowest == math.MaxInt || lowest == 0 {
		return
	}
	turns.Each(func(_ ecs.EntityID, t *component.Turn) {
		t.Ticks -= lowest
	})
}
