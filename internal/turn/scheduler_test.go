package turn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
)

const step = 20 * time.Millisecond

type fixture struct {
	bus    *event.Bus
	state  *State
	sched  *Scheduler
	moves  []ecs.EntityID
	uses   []ecs.EntityID
	rounds []uint64
}

func newFixture(t *testing.T, minTurn time.Duration) *fixture {
	t.Helper()
	f := &fixture{bus: event.NewBus(), state: &State{}}
	f.sched = NewScheduler(f.bus, f.state, minTurn, zap.NewNop())
	f.bus.RegisterListener(event.MoveAction, func(ev event.Event) error {
		f.moves = append(f.moves, ev.Data.(event.Move).Entity)
		return nil
	})
	f.bus.RegisterListener(event.UseEntityAction, func(ev event.Event) error {
		f.uses = append(f.uses, ev.Data.(event.Use).User)
		return nil
	})
	f.bus.RegisterListener(event.RoundCompleted, func(ev event.Event) error {
		f.rounds = append(f.rounds, ev.Data.(event.Round).Number)
		return nil
	})
	return f
}

// tick runs one logic step: drain, then scheduler update.
func (f *fixture) tick(t *testing.T) {
	t.Helper()
	_, err := f.bus.ProcessEvents()
	require.NoError(t, err)
	require.NoError(t, f.sched.Update(step))
}

func TestSchedulerTransitions(t *testing.T) {
	f := newFixture(t, 0)
	assert.Equal(t, WaitingInput, f.state.Status)

	f.tick(t)
	assert.Equal(t, WaitingInput, f.state.Status, "no input, no round")

	f.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: 1, DX: 1})
	_, err := f.bus.ProcessEvents()
	require.NoError(t, err)
	assert.Equal(t, InputReceived, f.state.Status)
	assert.Empty(t, f.moves, "turn actions are deferred")

	require.NoError(t, f.sched.Update(step))
	assert.Equal(t, CollectTurns, f.state.Status)
	require.NoError(t, f.sched.Update(step))
	assert.Equal(t, InProgress, f.state.Status)

	f.tick(t) // forwards the move
	assert.Equal(t, InProgress, f.state.Status)
	f.tick(t) // move dispatched, queue empty, round ends
	assert.Equal(t, []ecs.EntityID{1}, f.moves)
	assert.Equal(t, WaitingInput, f.state.Status)
	assert.Equal(t, uint64(1), f.state.Round)

	f.tick(t)
	assert.Equal(t, []uint64{1}, f.rounds)
}

func TestSchedulerRunsCollectedTurnsInOrder(t *testing.T) {
	f := newFixture(t, 0)

	f.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: 7, DX: 1})
	f.tick(t) // WaitingInput -> InputReceived -> CollectTurns
	f.bus.Throw(event.UseEntityAction.Turn(), event.Use{User: 8})
	f.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: 9, DY: -1})
	f.tick(t) // late arrivals collected, -> InProgress
	require.Equal(t, InProgress, f.state.Status)
	assert.Equal(t, 3, f.sched.Queued())

	var statuses []Status
	for i := 0; i < 10 && f.state.Round == 0; i++ {
		f.tick(t)
		statuses = append(statuses, f.state.Status)
	}
	assert.Equal(t, []ecs.EntityID{7, 9}, f.moves)
	assert.Equal(t, []ecs.EntityID{8}, f.uses)
	assert.Equal(t, uint64(1), f.state.Round)
	assert.Equal(t, WaitingInput, f.state.Status)
	for _, s := range statuses[:len(statuses)-1] {
		assert.Equal(t, InProgress, s)
	}
}

func TestSchedulerMinTurnTime(t *testing.T) {
	f := newFixture(t, 5*step)
	f.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: 1})
	f.tick(t)
	f.tick(t)
	require.Equal(t, InProgress, f.state.Status)

	for i := 1; i < 5; i++ {
		f.tick(t)
		assert.Equal(t, InProgress, f.state.Status, "step %d", i)
	}
	f.tick(t)
	assert.Equal(t, WaitingInput, f.state.Status)
	assert.Equal(t, []ecs.EntityID{1}, f.moves)
}

func TestSchedulerPause(t *testing.T) {
	t.Run("between rounds", func(t *testing.T) {
		f := newFixture(t, 0)
		f.bus.Throw(event.PauseGame, event.Pause{})
		f.tick(t)
		assert.Equal(t, Paused, f.state.Status)

		f.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: 1})
		f.tick(t)
		f.tick(t)
		assert.Equal(t, Paused, f.state.Status, "turn actions wait while paused")
		assert.Empty(t, f.moves)

		f.bus.Throw(event.ResumeGame, event.Resume{})
		f.tick(t)
		assert.Equal(t, CollectTurns, f.state.Status, "queued action resumes the round")
	})

	t.Run("during a round", func(t *testing.T) {
		f := newFixture(t, 0)
		f.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: 1})
		f.tick(t)
		f.bus.Throw(event.PauseGame, event.Pause{})
		for i := 0; i < 5; i++ {
			f.tick(t)
		}
		assert.Equal(t, []ecs.EntityID{1}, f.moves)
		assert.Equal(t, uint64(1), f.state.Round)
		assert.Equal(t, Paused, f.state.Status)

		f.bus.Throw(event.ResumeGame, event.Resume{})
		f.tick(t)
		assert.Equal(t, WaitingInput, f.state.Status)
	})
}

func TestSchedulerClose(t *testing.T) {
	f := newFixture(t, 0)
	f.sched.Close()
	f.bus.Throw(event.MoveAction.Turn(), event.Move{Entity: 1})
	f.tick(t)
	assert.Equal(t, WaitingInput, f.state.Status)
	assert.Equal(t, 0, f.bus.Listeners(event.PauseGame))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "waiting-input", WaitingInput.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "unknown", Status(42).String())
}
