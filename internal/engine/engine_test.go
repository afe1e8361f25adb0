package engine

import (
	"image"
	"io"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/calendar"
	"github.com/nightcaste/nightcaste/internal/collision"
	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/config"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/metrics"
	"github.com/nightcaste/nightcaste/internal/turn"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Game.Seed = 7
	cfg.Game.StartMap = "crypt"
	cfg.Game.StartGenerator = "dungeon"
	return cfg
}

func started(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(testConfig(), opts, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	e.Start()
	require.NoError(t, e.Step())
	require.NotZero(t, e.Entities().Player())
	require.NotZero(t, e.Entities().CurrentMap())
	return e
}

func playerPos(t *testing.T, e *Engine) image.Point {
	t.Helper()
	p, ok := entity.Lookup[component.Position](e.Entities(), e.Entities().Player())
	require.True(t, ok)
	return image.Pt(p.X, p.Y)
}

func currentMap(t *testing.T, e *Engine) *component.Map {
	t.Helper()
	m, ok := entity.Lookup[component.Map](e.Entities(), e.Entities().CurrentMap())
	require.True(t, ok)
	return m
}

func TestStartPlacesPlayerAtEntry(t *testing.T) {
	e := started(t, Options{})
	m := currentMap(t, e)
	assert.Equal(t, "crypt", m.Name)
	assert.Equal(t, 80*50, m.Tiles.Len())
	assert.Equal(t, m.Entry, playerPos(t, e))
}

func TestMoveAgainstGeneratedDungeon(t *testing.T) {
	e := started(t, Options{})
	var collided []event.Event
	e.Bus().RegisterListener(event.EntitiesCollided, func(ev event.Event) error {
		collided = append(collided, ev)
		return nil
	})
	m := currentMap(t, e)
	start := playerPos(t, e)
	blocked := collision.NewGridManager(e.Entities(), nil).IsBlocked(m.Tiles, start.X+1, start.Y)

	e.Bus().Throw(event.MoveAction, event.Move{Entity: e.Entities().Player(), DX: 1})
	_, err := e.Bus().ProcessEvents()
	require.NoError(t, err)

	if blocked {
		assert.Equal(t, start, playerPos(t, e))
		assert.Len(t, collided, 1)
	} else {
		assert.Equal(t, start.Add(image.Pt(1, 0)), playerPos(t, e))
		assert.Empty(t, collided)
	}
}

func TestKeyDrivenRound(t *testing.T) {
	e := started(t, Options{})
	m := currentMap(t, e)
	start := playerPos(t, e)
	grid := collision.NewGridManager(e.Entities(), nil)

	dirs := []struct {
		key event.Key
		d   image.Point
	}{
		{event.KeyRight, image.Pt(1, 0)},
		{event.KeyLeft, image.Pt(-1, 0)},
		{event.KeyDown, image.Pt(0, 1)},
		{event.KeyUp, image.Pt(0, -1)},
	}
	var key event.Key
	var want image.Point
	for _, d := range dirs {
		p := start.Add(d.d)
		if !grid.IsBlocked(m.Tiles, p.X, p.Y) {
			key, want = d.key, p
			break
		}
	}
	require.NotEmpty(t, key, "entry has an open neighbour")

	// let the player's min turn time pass
	_, err := e.Advance(300 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, turn.WaitingInput, e.State().Status)

	e.Bus().Throw(event.KeyPressed, event.KeyPress{Key: key})
	for i := 0; i < 50 && e.State().Round == 0; i++ {
		require.NoError(t, e.Step())
	}
	assert.Equal(t, uint64(1), e.State().Round)
	assert.Equal(t, turn.WaitingInput, e.State().Status)
	assert.Equal(t, want, playerPos(t, e))

	require.NoError(t, e.Step()) // RoundCompleted reaches the clock
	assert.Equal(t, calendar.Time(6), e.Clock().Now())
}

func TestDestroyedPlayerLeavesIndexes(t *testing.T) {
	e := started(t, Options{})
	player := e.Entities().Player()
	m := currentMap(t, e)
	at := playerPos(t, e)
	require.True(t, m.Tiles.Contains(at.X, at.Y, player))
	require.True(t, e.spatial.Tree().Contains(player))

	e.Entities().DestroyEntity(player)
	assert.False(t, m.Tiles.Contains(at.X, at.Y, player))
	assert.False(t, e.spatial.Tree().Contains(player))
	for _, id := range m.Tiles.At(at.X, at.Y) {
		assert.True(t, e.Entities().Alive(id))
	}
}

func TestAdvanceFixedSteps(t *testing.T) {
	e, err := New(testConfig(), Options{}, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	n, err := e.Advance(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = e.Advance(10 * time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = e.Advance(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 10, n, "capped at max_steps")
	n, err = e.Advance(0)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "the backlog was dropped")
}

func TestMetricsWiring(t *testing.T) {
	c := metrics.NewCollector()
	started(t, Options{Metrics: c})

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `nightcaste_maps_generated_total{generator="dungeon"} 1`)
	assert.Contains(t, string(body), `nightcaste_events_dispatched_total{type="WorldEnter"} 1`)
	assert.Contains(t, string(body), "nightcaste_entities ")
	assert.Contains(t, string(body), "nightcaste_logic_steps_total 1")
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.Behaviours = []config.BehaviourConfig{{Component: "Input", Name: "Nope"}}
	_, err := New(cfg, Options{}, zap.NewNop())
	require.Error(t, err)

	cfg = testConfig()
	cfg.Systems = append(cfg.Systems, config.SystemConfig{Name: "Teleporter"})
	_, err = New(cfg, Options{}, zap.NewNop())
	require.Error(t, err)

	cfg = testConfig()
	cfg.Game.StepRate = config.Duration{}
	_, err = New(cfg, Options{}, zap.NewNop())
	require.Error(t, err)

	bad := fstest.MapFS{"broken.yaml": {Data: []byte("thing:\n  components: [Velocity]\n")}}
	_, err = New(testConfig(), Options{Blueprints: bad}, zap.NewNop())
	require.ErrorIs(t, err, component.ErrUnknownKind)
}
