package entity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

// Blueprints resolves a dotted blueprint name into a fresh configuration.
type Blueprints interface {
	Resolve(name string) (*Config, error)
}

// Manager issues entity ids, builds entities from configurations and
// blueprints, and owns the component stores.
// Accessed only from the game loop goroutine, no locks.
type Manager struct {
	world      *ecs.World
	stores     [len(kindStores)]store
	blueprints Blueprints
	log        *zap.Logger

	currentMap ecs.EntityID
	player     ecs.EntityID
	onDestroy  []func(ecs.EntityID)
}

func NewManager(blueprints Blueprints, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		world:      ecs.NewWorld(),
		stores:     newStores(),
		blueprints: blueprints,
		log:        log,
	}
	for _, s := range m.stores {
		m.world.Registry().Register(s)
	}
	return m
}

// CreateEntity allocates an empty entity.
func (m *Manager) CreateEntity() ecs.EntityID {
	return m.world.CreateEntity()
}

func (m *Manager) Alive(id ecs.EntityID) bool { return m.world.Alive(id) }

// Count returns the number of live entities.
func (m *Manager) Count() int { return m.world.Pool().Count() }

// NewFromConfig builds an entity carrying every component of cfg. All
// components are built and checked before the entity is allocated, so a
// rejected configuration leaves nothing behind.
func (m *Manager) NewFromConfig(cfg *Config) (ecs.EntityID, error) {
	comps, err := build(cfg)
	if err != nil {
		return 0, err
	}
	id := m.world.CreateEntity()
	for _, c := range comps {
		m.stores[c.Kind()].set(id, c)
	}
	return id, nil
}

func build(cfg *Config) ([]component.Component, error) {
	kinds := cfg.Kinds()
	comps := make([]component.Component, 0, len(kinds))
	for _, k := range kinds {
		c, err := component.New(k)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", k, err)
		}
		for name, v := range cfg.Attributes(k) {
			if err := component.Set(c, name, v); err != nil {
				return nil, err
			}
		}
		comps = append(comps, c)
	}
	return comps, nil
}

// NewFromBlueprint builds an entity from a named blueprint.
func (m *Manager) NewFromBlueprint(name string) (ecs.EntityID, error) {
	return m.NewFromBlueprintAndConfig(name, nil)
}

// NewFromBlueprintAndConfig builds an entity from a blueprint with the
// attributes of override applied on top.
func (m *Manager) NewFromBlueprintAndConfig(name string, override *Config) (ecs.EntityID, error) {
	if m.blueprints == nil {
		return 0, fmt.Errorf("blueprint %s: no blueprint registry", name)
	}
	base, err := m.blueprints.Resolve(name)
	if err != nil {
		return 0, err
	}
	id, err := m.NewFromConfig(base.Merge(override))
	if err != nil {
		return 0, fmt.Errorf("blueprint %s: %w", name, err)
	}
	return id, nil
}

// OnDestroy registers fn to run for every destroyed entity while its
// components are still readable.
func (m *Manager) OnDestroy(fn func(ecs.EntityID)) {
	m.onDestroy = append(m.onDestroy, fn)
}

// DestroyEntity takes id out of the map cell it stands in and removes
// every component of it. Unknown and already destroyed ids are ignored.
func (m *Manager) DestroyEntity(id ecs.EntityID) {
	if !m.world.Alive(id) {
		return
	}
	if p, ok := Lookup[component.Position](m, id); ok {
		Store[component.Map](m).Each(func(_ ecs.EntityID, mp *component.Map) {
			if mp.Tiles != nil {
				mp.Tiles.Remove(p.X, p.Y, id)
			}
		})
	}
	for _, fn := range m.onDestroy {
		fn(id)
	}
	m.world.Destroy(id)
	if m.player == id {
		m.player = 0
	}
	if m.currentMap == id {
		m.currentMap = 0
	}
}

// AddComponent attaches c to id, replacing a component of the same kind.
func (m *Manager) AddComponent(id ecs.EntityID, c component.Component) {
	m.stores[c.Kind()].set(id, c)
}

func (m *Manager) RemoveComponent(id ecs.EntityID, k component.Kind) {
	if s := m.store(k); s != nil {
		s.Remove(id)
	}
}

// Get returns the component of kind k attached to id.
func (m *Manager) Get(id ecs.EntityID, k component.Kind) (component.Component, bool) {
	s := m.store(k)
	if s == nil {
		return nil, false
	}
	return s.get(id)
}

func (m *Manager) Has(id ecs.EntityID, k component.Kind) bool {
	s := m.store(k)
	return s != nil && s.has(id)
}

// GetAll returns every entity carrying kind k. Unknown kinds yield an
// empty map.
func (m *Manager) GetAll(k component.Kind) map[ecs.EntityID]component.Component {
	out := make(map[ecs.EntityID]component.Component)
	s := m.store(k)
	if s == nil {
		return out
	}
	for _, id := range s.ids() {
		out[id], _ = s.get(id)
	}
	return out
}

// GetComponentsForEntities looks up kind k for each id. Entities without
// the component map to nil rather than being skipped.
func (m *Manager) GetComponentsForEntities(ids []ecs.EntityID, k component.Kind) map[ecs.EntityID]component.Component {
	out := make(map[ecs.EntityID]component.Component, len(ids))
	for _, id := range ids {
		c, ok := m.Get(id, k)
		if !ok {
			out[id] = nil
			continue
		}
		out[id] = c
	}
	return out
}

// IDs returns the entities carrying kind k in ascending order.
func (m *Manager) IDs(k component.Kind) []ecs.EntityID {
	s := m.store(k)
	if s == nil {
		return nil
	}
	return s.ids()
}

func (m *Manager) store(k component.Kind) store {
	if k < 0 || int(k) >= len(m.stores) {
		return nil
	}
	return m.stores[k]
}

// CurrentMap returns the map entity the player is on.
func (m *Manager) CurrentMap() ecs.EntityID { return m.currentMap }

// SetCurrentMap is called by the map change processor only.
func (m *Manager) SetCurrentMap(id ecs.EntityID) {
	if m.currentMap != id {
		m.log.Debug("current map changed", zap.Uint64("from", uint64(m.currentMap)), zap.Uint64("to", uint64(id)))
	}
	m.currentMap = id
}

func (m *Manager) Player() ecs.EntityID { return m.player }

// SetPlayer is called by the world initializer only.
func (m *Manager) SetPlayer(id ecs.EntityID) { m.player = id }

// Lookup returns the typed component of id, e.g.
// Lookup[component.Position](m, id).
func Lookup[T any, P ptr[T]](m *Manager, id ecs.EntityID) (P, bool) {
	var zero P
	c, ok := m.Get(id, zero.Kind())
	if !ok {
		return zero, false
	}
	p, ok := c.(P)
	return p, ok
}

// Store exposes the typed store behind kind T for joined iteration with
// ecs.Each2.
func Store[T any, P ptr[T]](m *Manager) *ecs.PtrComponentStore[T] {
	var zero P
	return m.stores[zero.Kind()].(typedStore[T, P]).PtrComponentStore
}
