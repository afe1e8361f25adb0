package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

type fakeBlueprints map[string]*Config

func (f fakeBlueprints) Resolve(name string) (*Config, error) {
	c, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("unknown blueprint %s", name)
	}
	return c.Clone(), nil
}

func playerBlueprint() *Config {
	return NewConfig().
		AddComponent(component.KindPosition).
		AddComponent(component.KindInput).
		AddAttribute(component.KindRenderable, "name", component.String("player")).
		AddAttribute(component.KindRenderable, "character", component.String("@")).
		AddAttribute(component.KindRenderable, "z_index", component.Int(10))
}

func newTestManager() *Manager {
	return NewManager(fakeBlueprints{"game.player": playerBlueprint()}, nil)
}

func TestStoresCoverEveryKind(t *testing.T) {
	require.Len(t, kindStores, len(component.Kinds()))
	m := newTestManager()
	id := m.CreateEntity()
	for _, k := range component.Kinds() {
		c, err := component.New(k)
		require.NoError(t, err)
		m.AddComponent(id, c)
		got, ok := m.Get(id, k)
		require.True(t, ok, k.String())
		assert.Same(t, c, got)
	}
}

func TestCreateEntity(t *testing.T) {
	m := newTestManager()
	prev := ecs.EntityID(0)
	for i := 0; i < 50; i++ {
		id := m.CreateEntity()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Run("sets attributes", func(t *testing.T) {
		m := newTestManager()
		cfg := NewConfig().
			AddAttribute(component.KindPosition, "x", component.Int(3)).
			AddAttribute(component.KindPosition, "y", component.Int(4)).
			AddAttribute(component.KindColliding, "blocking", component.Bool(true))
		id, err := m.NewFromConfig(cfg)
		require.NoError(t, err)

		pos, ok := Lookup[component.Position](m, id)
		require.True(t, ok)
		assert.Equal(t, component.Position{X: 3, Y: 4}, *pos)

		col, ok := Lookup[component.Colliding](m, id)
		require.True(t, ok)
		assert.True(t, col.Blocking)
	})

	t.Run("rejected config leaves no entity", func(t *testing.T) {
		m := newTestManager()
		cfg := NewConfig().
			AddAttribute(component.KindPosition, "x", component.Int(1)).
			AddAttribute(component.KindColliding, "active", component.Bool(true))
		_, err := m.NewFromConfig(cfg)
		require.ErrorIs(t, err, component.ErrUnknownAttribute)
		assert.Equal(t, 0, m.Count())
		assert.Empty(t, m.GetAll(component.KindPosition))
	})

	t.Run("unknown kind", func(t *testing.T) {
		m := newTestManager()
		cfg := NewConfig().AddComponent(component.Kind(42))
		_, err := m.NewFromConfig(cfg)
		require.ErrorIs(t, err, component.ErrUnknownKind)
	})
}

func TestNewFromBlueprintAndConfig(t *testing.T) {
	m := newTestManager()
	override := NewConfig().
		AddAttribute(component.KindPosition, "x", component.Int(12)).
		AddAttribute(component.KindPosition, "y", component.Int(7)).
		AddComponent(component.KindTurn)

	id, err := m.NewFromBlueprintAndConfig("game.player", override)
	require.NoError(t, err)

	pos, ok := Lookup[component.Position](m, id)
	require.True(t, ok)
	assert.Equal(t, component.Position{X: 12, Y: 7}, *pos)

	r, ok := Lookup[component.Renderable](m, id)
	require.True(t, ok)
	assert.Equal(t, "@", r.Character)
	assert.Equal(t, 10, r.ZIndex)
	assert.True(t, r.Visible)

	assert.True(t, m.Has(id, component.KindInput))
	assert.True(t, m.Has(id, component.KindTurn))

	_, err = m.NewFromBlueprint("game.missing")
	require.Error(t, err)

	blank := NewManager(nil, nil)
	_, err = blank.NewFromBlueprint("game.player")
	require.Error(t, err)
}

func TestDestroyEntity(t *testing.T) {
	m := newTestManager()
	id, err := m.NewFromBlueprint("game.player")
	require.NoError(t, err)
	m.SetPlayer(id)
	m.SetCurrentMap(id)

	m.DestroyEntity(id)
	m.DestroyEntity(id)
	m.DestroyEntity(ecs.EntityID(1000))

	for _, k := range component.Kinds() {
		_, ok := m.Get(id, k)
		assert.False(t, ok, k.String())
	}
	assert.Zero(t, m.Player())
	assert.Zero(t, m.CurrentMap())
	assert.False(t, m.Alive(id))

	next := m.CreateEntity()
	assert.Greater(t, next, id)
}

func TestDestroyEntityLeavesMapCell(t *testing.T) {
	m := newTestManager()
	grid := component.NewGrid(3, 3)
	mapID := m.CreateEntity()
	m.AddComponent(mapID, &component.Map{Name: "cellar", Tiles: grid})
	m.SetCurrentMap(mapID)

	tile := m.CreateEntity()
	m.AddComponent(tile, &component.Position{X: 1, Y: 1})
	grid.SetTile(1, 1, tile)
	id, err := m.NewFromBlueprint("game.player")
	require.NoError(t, err)
	m.AddComponent(id, &component.Position{X: 1, Y: 1})
	grid.Add(1, 1, id)

	var destroyed []ecs.EntityID
	m.OnDestroy(func(d ecs.EntityID) {
		_, hasPos := Lookup[component.Position](m, d)
		assert.True(t, hasPos, "components are readable in the hook")
		destroyed = append(destroyed, d)
	})

	m.DestroyEntity(id)
	m.DestroyEntity(id)
	assert.Equal(t, []ecs.EntityID{tile}, grid.At(1, 1))
	assert.Equal(t, []ecs.EntityID{id}, destroyed)
	for _, cellID := range grid.At(1, 1) {
		assert.True(t, m.Alive(cellID))
	}
}

func TestQueries(t *testing.T) {
	m := newTestManager()
	a, _ := m.NewFromConfig(NewConfig().AddAttribute(component.KindPosition, "x", component.Int(1)))
	b, _ := m.NewFromConfig(NewConfig().AddComponent(component.KindInput))

	_, ok := m.Get(b, component.KindPosition)
	assert.False(t, ok)
	_, ok = m.Get(a, component.Kind(-1))
	assert.False(t, ok)

	all := m.GetAll(component.KindPosition)
	assert.Len(t, all, 1)
	assert.Contains(t, all, a)
	assert.Empty(t, m.GetAll(component.Kind(77)))

	got := m.GetComponentsForEntities([]ecs.EntityID{a, b}, component.KindPosition)
	require.Len(t, got, 2)
	assert.NotNil(t, got[a])
	v, present := got[b]
	assert.True(t, present)
	assert.Nil(t, v)

	m.RemoveComponent(a, component.KindPosition)
	assert.False(t, m.Has(a, component.KindPosition))
	assert.Equal(t, []ecs.EntityID{b}, m.IDs(component.KindInput))
}

func TestConfigMerge(t *testing.T) {
	base := NewConfig().
		AddAttribute(component.KindPosition, "x", component.Int(1)).
		AddComponent(component.KindInput)
	merged := base.Merge(NewConfig().AddAttribute(component.KindPosition, "x", component.Int(5)))

	v, ok := merged.Attribute(component.KindPosition, "x")
	require.True(t, ok)
	n, _ := v.AsInt()
	assert.Equal(t, 5, n)
	assert.True(t, merged.Has(component.KindInput))

	v, _ = base.Attribute(component.KindPosition, "x")
	n, _ = v.AsInt()
	assert.Equal(t, 1, n, "merge must not modify the receiver")
	assert.Equal(t, []component.Kind{component.KindPosition, component.KindInput}, merged.Kinds())
}
