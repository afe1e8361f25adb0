package collision

import (
	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/entity"
)

// GridManager answers collision queries against the entity stacks of a
// map grid.
type GridManager struct {
	em  *entity.Manager
	bus *event.Bus
}

func NewGridManager(em *entity.Manager, bus *event.Bus) *GridManager {
	return &GridManager{em: em, bus: bus}
}

// Check returns the blocking entities in cell (x, y) of mapID, ignoring
// mover itself. When the set is non-empty an EntitiesCollided event is
// thrown. ok is false when the cell lies outside the map or mapID has no
// map; such targets are blocked without an event.
func (g *GridManager) Check(mover, mapID ecs.EntityID, x, y int) (blockers []ecs.EntityID, ok bool) {
	m, found := entity.Lookup[component.Map](g.em, mapID)
	if !found || m.Tiles == nil || !m.Tiles.InBounds(x, y) {
		return nil, false
	}
	blockers = g.Blocking(m.Tiles, mover, x, y)
	if len(blockers) > 0 && g.bus != nil {
		g.bus.Throw(event.EntitiesCollided, event.Collided{
			Entity:    mover,
			Colliders: blockers,
			X:         x,
			Y:         y,
		})
	}
	return blockers, true
}

// Blocking lists the entities of a cell whose Colliding component blocks.
// It throws no events.
func (g *GridManager) Blocking(grid *component.Grid, mover ecs.EntityID, x, y int) []ecs.EntityID {
	var out []ecs.EntityID
	for _, id := range grid.At(x, y) {
		if id == mover {
			continue
		}
		if c, ok := entity.Lookup[component.Colliding](g.em, id); ok && c.Blocking {
			out = append(out, id)
		}
	}
	return out
}

// IsBlocked reports whether any entity in the cell blocks. Cells outside
// the grid are blocked.
func (g *GridManager) IsBlocked(grid *component.Grid, x, y int) bool {
	if !grid.InBounds(x, y) {
		return true
	}
	return len(g.Blocking(grid, 0, x, y)) > 0
}
