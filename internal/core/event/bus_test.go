package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct{ seen []Type }

func (o *countingObserver) EventDispatched(ev Event, _ int) { o.seen = append(o.seen, ev.Type) }

func TestTurnSuffix(t *testing.T) {
	assert.Equal(t, Type("MoveAction_TURN"), MoveAction.Turn())
	assert.Equal(t, Type("MoveAction_TURN"), MoveAction.Turn().Turn())
	assert.True(t, MoveAction.Turn().IsTurn())
	assert.False(t, MoveAction.IsTurn())
	assert.Equal(t, MoveAction, MoveAction.Turn().Immediate())
}

func TestBus(t *testing.T) {
	t.Run("throw never dispatches synchronously", func(t *testing.T) {
		b := NewBus()
		called := 0
		b.RegisterListener("A", func(Event) error { called++; return nil })
		b.Throw("A", Enter{})
		assert.Equal(t, 0, called)
		assert.Equal(t, 1, b.Pending())

		n, err := b.ProcessEvents()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, called)
		assert.Equal(t, 0, b.Pending())
	})

	t.Run("handlers run in registration order", func(t *testing.T) {
		b := NewBus()
		var order []int
		for i := 1; i <= 3; i++ {
			b.RegisterListener("A", func(Event) error { order = append(order, i); return nil })
		}
		b.Throw("A", Enter{})
		_, err := b.ProcessEvents()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("cascade is drained in the same call", func(t *testing.T) {
		b := NewBus()
		var got []Type
		b.RegisterListener("A", func(ev Event) error {
			got = append(got, ev.Type)
			b.Throw("B", Enter{})
			return nil
		})
		b.RegisterListener("B", func(ev Event) error {
			got = append(got, ev.Type)
			return nil
		})
		b.Throw("A", Enter{})
		b.Throw("A", Enter{})

		n, err := b.ProcessEvents()
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, []Type{"A", "A", "B", "B"}, got)
	})

	t.Run("remove listener", func(t *testing.T) {
		b := NewBus()
		called := 0
		id := b.RegisterListener("A", func(Event) error { called++; return nil })
		b.RemoveListener("A", id)
		b.RemoveListener("A", id)
		b.RemoveListener("missing", 42)
		assert.Equal(t, 0, b.Listeners("A"))

		b.Throw("A", Enter{})
		_, err := b.ProcessEvents()
		require.NoError(t, err)
		assert.Equal(t, 0, called)
	})

	t.Run("handler error stops the drain", func(t *testing.T) {
		b := NewBus()
		boom := errors.New("boom")
		var got []Type
		b.RegisterListener("A", func(ev Event) error { got = append(got, ev.Type); return boom })
		b.RegisterListener("B", func(ev Event) error { got = append(got, ev.Type); return nil })
		b.Throw("A", Enter{})
		b.Throw("B", Enter{})

		n, err := b.ProcessEvents()
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, b.Pending())

		b.handlers = map[Type][]listener{}
		b.RegisterListener("B", func(ev Event) error { got = append(got, ev.Type); return nil })
		n, err = b.ProcessEvents()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []Type{"A", "B"}, got)
	})

	t.Run("observers see every dispatched event", func(t *testing.T) {
		b := NewBus()
		o := &countingObserver{}
		b.Observe(o)
		b.Throw("A", Enter{})
		b.Throw("B", Enter{})
		_, err := b.ProcessEvents()
		require.NoError(t, err)
		assert.Equal(t, []Type{"A", "B"}, o.seen)
	})
}
