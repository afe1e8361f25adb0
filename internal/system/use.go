package system

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/mapgen"
	"github.com/nightcaste/nightcaste/internal/scripting"
)

// UseProcessor resolves UseEntityAction events against every Useable
// entity in the target cell. A Useable with a script lets Lua pick the
// event; otherwise its UseEvent is thrown.
type UseProcessor struct {
	listeners
	em      *entity.Manager
	maps    *mapgen.Manager
	scripts *scripting.Engine
	log     *zap.Logger
}

func NewUseProcessor(bus *event.Bus, em *entity.Manager, maps *mapgen.Manager, scripts *scripting.Engine, log *zap.Logger) *UseProcessor {
	p := &UseProcessor{
		listeners: newListeners(bus),
		em:        em,
		maps:      maps,
		scripts:   scripts,
		log:       log,
	}
	p.listen(event.UseEntityAction, p.onUse)
	return p
}

func (p *UseProcessor) onUse(ev event.Event) error {
	u, err := payload[event.Use](ev)
	if err != nil {
		return err
	}
	pos, ok := entity.Lookup[component.Position](p.em, u.User)
	if !ok {
		return nil
	}
	m, ok := entity.Lookup[component.Map](p.em, p.em.CurrentMap())
	if !ok {
		return nil
	}
	x, y := pos.X+u.DX, pos.Y+u.DY
	// handlers of this use may rearrange the cell
	targets := slices.Clone(m.Tiles.At(x, y))
	for _, target := range targets {
		useable, ok := entity.Lookup[component.Useable](p.em, target)
		if !ok {
			continue
		}
		if err := p.use(u.User, target, useable, m, x, y); err != nil {
			return err
		}
	}
	return nil
}

func (p *UseProcessor) use(user, target ecs.EntityID, useable *component.Useable, m *component.Map, x, y int) error {
	if useable.Script != "" {
		if p.scripts == nil {
			return fmt.Errorf("use %d: script %s but no scripting engine", target, useable.Script)
		}
		res, err := p.scripts.CallUse(useable.Script, scripting.UseContext{
			User:       user,
			Target:     target,
			X:          x,
			Y:          y,
			Map:        m.Name,
			Level:      m.Level,
			TargetName: p.name(target),
		})
		if err != nil {
			return fmt.Errorf("use %d: %w", target, err)
		}
		p.log.Debug("use script", zap.String("script", useable.Script), zap.String("event", res.Event))
		switch event.Type(res.Event) {
		case "":
		case event.MapChange:
			p.bus.Throw(event.MapChange, event.ChangeMap{Entity: user, Map: res.Map, Level: res.Level, Generator: res.Generator})
		default:
			p.bus.Throw(event.Type(res.Event), event.Used{User: user, Target: target})
		}
		return nil
	}

	t := event.Type(useable.UseEvent)
	switch t {
	case "":
		p.bus.Throw(event.EntityUsed, event.Used{User: user, Target: target})
	case event.MapChange:
		mt, ok := entity.Lookup[component.MapTransition](p.em, target)
		if !ok {
			return fmt.Errorf("use %d: MapChange without MapTransition", target)
		}
		// unnamed stairs get their name on first use and keep it
		if mt.TargetMap == "" && p.maps != nil {
			mt.TargetMap = p.maps.RandomName(mt.Generator)
		}
		p.bus.Throw(event.MapChange, event.ChangeMap{
			Entity:    user,
			Map:       mt.TargetMap,
			Level:     mt.TargetLevel,
			Generator: mt.Generator,
		})
	default:
		p.bus.Throw(t, event.Used{User: user, Target: target})
	}
	return nil
}

func (p *UseProcessor) name(id ecs.EntityID) string {
	if t, ok := entity.Lookup[component.Tile](p.em, id); ok {
		return t.Name
	}
	if r, ok := entity.Lookup[component.Renderable](p.em, id); ok {
		return r.Name
	}
	return ""
}
