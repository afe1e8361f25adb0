package component

import (
	"testing"
	"time"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, name := range []string{"Position", "position", "POSITION", " Position "} {
		k, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, KindPosition, k)
	}
	_, err := ParseKind("Velocity")
	require.ErrorIs(t, err, ErrUnknownKind)

	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}

func TestParseAttributeKey(t *testing.T) {
	k, attr, err := ParseAttributeKey("Renderable.z_index")
	require.NoError(t, err)
	assert.Equal(t, KindRenderable, k)
	assert.Equal(t, "z_index", attr)

	_, _, err = ParseAttributeKey("Renderable")
	require.Error(t, err)
	_, _, err = ParseAttributeKey("Nope.x")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestSet(t *testing.T) {
	t.Run("typed setters", func(t *testing.T) {
		p := &Position{}
		require.NoError(t, Set(p, "x", Int(4)))
		require.NoError(t, Set(p, "y", Float(7)))
		assert.Equal(t, Position{4, 7}, *p)

		turn := &Turn{}
		require.NoError(t, Set(turn, "min_turn_time", Float(0.2)))
		require.NoError(t, Set(turn, "delta", String("50ms")))
		require.NoError(t, Set(turn, "locking", Bool(true)))
		assert.Equal(t, 200*time.Millisecond, turn.MinTurnTime)
		assert.Equal(t, 50*time.Millisecond, turn.Delta)
		assert.True(t, turn.Locking)

		tile := &Tile{}
		require.NoError(t, Set(tile, "variants", Strings([]string{"a", "b"})))
		assert.Equal(t, []string{"a", "b"}, tile.Variants)
	})

	t.Run("unknown attribute", func(t *testing.T) {
		err := Set(&Position{}, "z", Int(1))
		require.ErrorIs(t, err, ErrUnknownAttribute)
	})

	t.Run("wrong type leaves the component untouched", func(t *testing.T) {
		p := &Position{X: 3}
		err := Set(p, "x", String("three"))
		require.ErrorIs(t, err, ErrValueType)
		assert.Equal(t, 3, p.X)

		err = Set(p, "x", Float(1.5))
		require.ErrorIs(t, err, ErrValueType)
	})

	t.Run("validate", func(t *testing.T) {
		require.NoError(t, Validate(KindColliding, "blocking", Bool(true)))
		require.ErrorIs(t, Validate(KindColliding, "active", Bool(true)), ErrUnknownAttribute)
		require.ErrorIs(t, Validate(Kind(99), "x", Int(1)), ErrUnknownKind)
	})
}

func TestValueOf(t *testing.T) {
	v, err := ValueOf([]any{"moss", "crack"})
	require.NoError(t, err)
	ss, err := v.AsStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"moss", "crack"}, ss)

	_, err = ValueOf([]any{1, 2})
	require.ErrorIs(t, err, ErrValueType)
	_, err = ValueOf(map[string]any{})
	require.ErrorIs(t, err, ErrValueType)
}

func TestGrid(t *testing.T) {
	g := NewGrid(3, 2)
	assert.Equal(t, 6, g.Len())
	assert.Nil(t, g.At(-1, 0))
	assert.Nil(t, g.At(3, 0))

	assert.Zero(t, g.SetTile(1, 1, 10))
	g.Add(1, 1, 20)
	assert.Equal(t, ids(10, 20), g.At(1, 1))

	assert.Equal(t, ids(10), ids(g.SetTile(1, 1, 11)))
	tile, ok := g.Tile(1, 1)
	require.True(t, ok)
	assert.EqualValues(t, 11, tile)

	assert.True(t, g.Remove(1, 1, 20))
	assert.False(t, g.Remove(1, 1, 20))
	assert.False(t, g.Remove(9, 9, 20))
	assert.False(t, g.Contains(1, 1, 20))

	assert.Panics(t, func() { g.Add(3, 0, 1) })
	assert.Panics(t, func() { NewGrid(0, 4) })
}

func ids(v ...ecs.EntityID) []ecs.EntityID { return v }
