// Package engine wires the core together and runs fixed logic steps.
package engine

import (
	"fmt"
	"image"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/behaviour"
	"github.com/nightcaste/nightcaste/internal/calendar"
	"github.com/nightcaste/nightcaste/internal/collision"
	"github.com/nightcaste/nightcaste/internal/config"
	"github.com/nightcaste/nightcaste/internal/core/event"
	coresys "github.com/nightcaste/nightcaste/internal/core/system"
	"github.com/nightcaste/nightcaste/internal/data"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/mapgen"
	"github.com/nightcaste/nightcaste/internal/metrics"
	"github.com/nightcaste/nightcaste/internal/scripting"
	"github.com/nightcaste/nightcaste/internal/system"
	"github.com/nightcaste/nightcaste/internal/turn"
	"github.com/nightcaste/nightcaste/internal/world"
)

// Options are the collaborators supplied by the front end.
type Options struct {
	Keyboard   <-chan event.Key   // polled keys, may be nil
	Blueprints fs.FS              // nil reads cfg.Blueprints.Dir
	Scripts    fs.FS              // nil reads cfg.Scripting.Dir
	Metrics    *metrics.Collector // optional
}

// Engine owns the simulation. Every method must be called from the game
// loop goroutine.
type Engine struct {
	cfg        *config.Config
	bus        *event.Bus
	em         *entity.Manager
	maps       *mapgen.Manager
	spatial    *collision.SpatialManager
	scripts    *scripting.Engine
	state      *turn.State
	behaviours *behaviour.Manager
	systems    *system.Manager
	clock      *calendar.Clock
	runner     *coresys.Runner
	step       time.Duration
	acc        time.Duration
	log        *zap.Logger
}

// New builds an engine from cfg. Blueprint namespaces are all loaded up
// front so configuration errors surface here.
func New(cfg *config.Config, opts Options, log *zap.Logger) (*Engine, error) {
	if cfg.Game.StepRate.Duration <= 0 {
		return nil, fmt.Errorf("step rate must be positive, got %s", cfg.Game.StepRate.Duration)
	}
	bpFS := opts.Blueprints
	if bpFS == nil {
		bpFS = data.Dir(cfg.Blueprints.Dir)
	}
	blueprints := data.NewBlueprintRegistry(bpFS, log)
	if err := blueprints.LoadAll(); err != nil {
		return nil, fmt.Errorf("blueprints: %w", err)
	}

	scriptFS := opts.Scripts
	if scriptFS == nil {
		scriptFS = scripting.Dir(cfg.Scripting.Dir)
	}
	scripts, err := scripting.NewEngine(scriptFS, log)
	if err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:     cfg,
		bus:     event.NewBus(),
		em:      entity.NewManager(blueprints, log),
		spatial: collision.NewSpatialManager(cfg.QuadTree.MaxItems, cfg.QuadTree.MaxLevel),
		scripts: scripts,
		state:   &turn.State{},
		runner:  coresys.NewRunner(),
		step:    cfg.Game.StepRate.Duration,
		log:     log,
	}
	e.em.OnDestroy(e.spatial.Remove)
	e.maps = mapgen.NewManager(e.em, world.NewAtlas(), seed, log)
	e.maps.Register("dungeon", mapgen.NewDungeonGenerator(e.em, dungeonOptions(cfg.MapGen), log))
	e.maps.Register("world", mapgen.NewWorldspaceGenerator(e.em, worldOptions(cfg), log))

	keys := behaviour.NewKeyState()
	e.systems = system.NewManager(system.Deps{
		Bus:      e.bus,
		Entities: e.em,
		Maps:     e.maps,
		Spatial:  e.spatial,
		Scripts:  scripts,
		State:    e.state,
		Keys:     keys,
		Keyboard: opts.Keyboard,
		Game:     cfg.Game,
		Log:      log,
	})
	if err := e.systems.Configure(cfg.Systems); err != nil {
		e.Close()
		return nil, err
	}
	e.behaviours = behaviour.NewManager(behaviour.Deps{Bus: e.bus, Entities: e.em, Keys: keys}, e.state, log)
	if err := e.behaviours.Configure(cfg.Behaviours); err != nil {
		e.Close()
		return nil, err
	}
	e.clock = calendar.NewClock(e.bus, 0, cfg.Game.SecondsPerRound, log)

	if m := opts.Metrics; m != nil {
		e.bus.Observe(m)
		e.maps.SetRecorder(m)
		m.Gauge("entities", "Live entities.", func() float64 { return float64(e.em.Count()) })
		m.Gauge("events_pending", "Events waiting on the bus.", func() float64 { return float64(e.bus.Pending()) })
	}

	for _, s := range e.systems.Systems() {
		e.runner.Register(s)
	}
	e.runner.Register(e.behaviours)
	e.runner.Register(system.NewEventDispatchSystem(e.bus))
	if opts.Metrics != nil {
		e.runner.Register(opts.Metrics.StepSystem())
	}

	log.Info("engine ready",
		zap.Int64("seed", seed),
		zap.Duration("step", e.step),
		zap.Int("blueprints", blueprints.Count()),
		zap.Strings("processors", e.systems.Names()),
	)
	return e, nil
}

func dungeonOptions(c config.MapGenConfig) mapgen.DungeonOptions {
	return mapgen.DungeonOptions{
		Width:        c.Width,
		Height:       c.Height,
		Depth:        c.Depth,
		MinPartition: c.MinPartition,
		MaxRatio:     c.MaxRatio,
		TileSize:     c.TileSize,
		Wall:         c.Wall,
		Floor:        c.Floor,
		Stairs:       c.Stairs,
	}
}

func worldOptions(cfg *config.Config) mapgen.WorldOptions {
	o := mapgen.DefaultWorldOptions()
	o.Width, o.Height = cfg.World.Width, cfg.World.Height
	o.NoiseScale = cfg.World.NoiseScale
	o.TileSize = cfg.MapGen.TileSize
	o.Stairs = image.Pt(cfg.World.StairsX, cfg.World.StairsY)
	o.Entry = image.Pt(cfg.World.EntryX, cfg.World.EntryY)
	return o
}

// Start enters the world. The player appears on the start map during the
// next logic step.
func (e *Engine) Start() {
	e.bus.Throw(event.WorldEnter, event.Enter{})
}

// Advance accumulates real time and runs as many fixed logic steps as fit,
// at most MaxSteps. Time beyond that is dropped so a stalled front end
// can not make the simulation spiral.
func (e *Engine) Advance(dt time.Duration) (int, error) {
	e.acc += dt
	steps := 0
	for e.acc >= e.step {
		if e.cfg.Game.MaxSteps > 0 && steps >= e.cfg.Game.MaxSteps {
			e.log.Debug("dropping simulation time", zap.Duration("behind", e.acc))
			e.acc = 0
			break
		}
		if err := e.Step(); err != nil {
			return steps, err
		}
		e.acc -= e.step
		steps++
	}
	return steps, nil
}

// Step runs one logic step: input, behaviours, event drain, scheduler.
func (e *Engine) Step() error {
	return e.runner.Tick(e.step)
}

func (e *Engine) Bus() *event.Bus { return e.bus }
func (e *Engine) Entities() *entity.Manager { return e.em }
func (e *Engine) Maps() *mapgen.Manager { return e.maps }
func (e *Engine) State() *turn.State { return e.state }
func (e *Engine) Clock() *calendar.Clock { return e.clock }
func (e *Engine) Keys() *behaviour.KeyState { return e.systems.Keys() }
func (e *Engine) Behaviours() *behaviour.Manager { return e.behaviours }

// Close unregisters the processors and stops the Lua VM.
func (e *Engine) Close() {
	e.systems.Close()
	e.scripts.Close()
}
