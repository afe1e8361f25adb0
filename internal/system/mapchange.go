package system

import (
	"fmt"
	"image"
	"slices"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/collision"
	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/mapgen"
	"github.com/nightcaste/nightcaste/internal/world"
)

// MapChangeProcessor moves an entity onto another map level, generating
// the level on first visit, and makes it the current map.
type MapChangeProcessor struct {
	listeners
	em      *entity.Manager
	maps    *mapgen.Manager
	spatial *collision.SpatialManager
	log     *zap.Logger
}

func NewMapChangeProcessor(bus *event.Bus, em *entity.Manager, maps *mapgen.Manager, spatial *collision.SpatialManager, log *zap.Logger) *MapChangeProcessor {
	p := &MapChangeProcessor{
		listeners: newListeners(bus),
		em:        em,
		maps:      maps,
		spatial:   spatial,
		log:       log,
	}
	p.listen(event.MapChange, p.onMapChange)
	return p
}

func (p *MapChangeProcessor) onMapChange(ev event.Event) error {
	c, err := payload[event.ChangeMap](ev)
	if err != nil {
		return err
	}
	prevID := p.em.CurrentMap()
	mapID, err := p.maps.Get(c.Map, c.Level, c.Generator)
	if err != nil {
		return fmt.Errorf("map change: %w", err)
	}
	m, ok := entity.Lookup[component.Map](p.em, mapID)
	if !ok {
		return fmt.Errorf("map change: entity %d has no map", mapID)
	}

	pos, hasPos := entity.Lookup[component.Position](p.em, c.Entity)
	if prev, ok := entity.Lookup[component.Map](p.em, prevID); ok {
		if hasPos {
			prev.Tiles.Remove(pos.X, pos.Y, c.Entity)
		}
		if prevID != mapID {
			p.link(prev.Ref, m.Ref)
		}
	}

	p.em.SetCurrentMap(mapID)
	if hasPos {
		pos.X, pos.Y = m.Entry.X, m.Entry.Y
		if !m.Tiles.Contains(pos.X, pos.Y, c.Entity) {
			m.Tiles.Add(pos.X, pos.Y, c.Entity)
		}
	}
	p.fillSpatial(m)

	p.log.Info("map entered",
		zap.String("map", m.Name),
		zap.Int("level", m.Level),
		zap.Uint64("entity", uint64(c.Entity)),
	)
	p.bus.Throw(event.MapChanged, event.MapEntered{Map: mapID, Name: m.Name, Level: m.Level, Entity: c.Entity})
	return nil
}

// link records that child was entered from parent, unless child already
// has a parent or lies above parent.
func (p *MapChangeProcessor) link(parent, child world.MapRef) {
	atlas := p.maps.Atlas()
	if parent == world.NoMap || child == world.NoMap || slices.Contains(atlas.Path(parent), child) {
		return
	}
	if err := atlas.Link(parent, child); err != nil {
		p.log.Warn("map link", zap.Error(err))
	}
}

// fillSpatial rebuilds the spatial index from the bodies standing on m.
func (p *MapChangeProcessor) fillSpatial(m *component.Map) {
	if p.spatial == nil {
		return
	}
	size := tileSize(m)
	bounds := image.Rect(0, 0, m.Tiles.Width()*size, m.Tiles.Height()*size)
	bodies := make(map[ecs.EntityID]image.Rectangle)
	ecs.Each2(entity.Store[component.Body](p.em), entity.Store[component.Position](p.em),
		func(id ecs.EntityID, b *component.Body, pos *component.Position) {
			if m.Tiles.Contains(pos.X, pos.Y, id) {
				bodies[id] = BodyRect(pos.X, pos.Y, b, size)
			}
		})
	p.spatial.Fill(bounds, bodies)
}
