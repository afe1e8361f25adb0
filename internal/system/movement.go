package system

import (
	"image"
	"math"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/collision"
	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/entity"
)

// MovementProcessor resolves MoveAction events. A move is committed only
// when neither the target cell nor, for entities with a Body, the spatial
// index report a blocking collider.
type MovementProcessor struct {
	listeners
	em      *entity.Manager
	grid    *collision.GridManager
	spatial *collision.SpatialManager
	log     *zap.Logger
}

func NewMovementProcessor(bus *event.Bus, em *entity.Manager, spatial *collision.SpatialManager, log *zap.Logger) *MovementProcessor {
	p := &MovementProcessor{
		listeners: newListeners(bus),
		em:        em,
		grid:      collision.NewGridManager(em, bus),
		spatial:   spatial,
		log:       log,
	}
	p.listen(event.MoveAction, p.onMove)
	return p
}

func (p *MovementProcessor) onMove(ev event.Event) error {
	mv, err := payload[event.Move](ev)
	if err != nil {
		return err
	}
	pos, ok := entity.Lookup[component.Position](p.em, mv.Entity)
	if !ok {
		return nil
	}
	tx, ty := roundAway(mv.DX), roundAway(mv.DY)
	if !mv.Absolute {
		tx += pos.X
		ty += pos.Y
	}
	if tx == pos.X && ty == pos.Y {
		return nil
	}

	mapID := p.em.CurrentMap()
	m, hasMap := entity.Lookup[component.Map](p.em, mapID)
	if hasMap {
		blockers, inside := p.grid.Check(mv.Entity, mapID, tx, ty)
		if !inside || len(blockers) > 0 {
			return nil
		}
	}

	body, hasBody := entity.Lookup[component.Body](p.em, mv.Entity)
	var rect image.Rectangle
	if hasBody {
		rect = BodyRect(tx, ty, body, tileSize(m))
		if hits := p.blockingBodies(mv.Entity, rect); len(hits) > 0 {
			p.bus.Throw(event.EntitiesCollided, event.Collided{Entity: mv.Entity, Colliders: hits, X: tx, Y: ty})
			return nil
		}
	}

	if hasMap && m.Tiles.Remove(pos.X, pos.Y, mv.Entity) {
		m.Tiles.Add(tx, ty, mv.Entity)
	}
	pos.X, pos.Y = tx, ty
	if hasBody {
		p.spatial.Move(mv.Entity, rect)
	}
	p.bus.Throw(event.EntityMoved, event.Moved{Entity: mv.Entity, X: tx, Y: ty})
	return nil
}

// blockingBodies returns the indexed bodies overlapping rect whose
// Colliding component blocks.
func (p *MovementProcessor) blockingBodies(mover ecs.EntityID, rect image.Rectangle) []ecs.EntityID {
	if p.spatial == nil {
		return nil
	}
	var out []ecs.EntityID
	for _, id := range p.spatial.CollideRect(mover, rect) {
		if c, ok := entity.Lookup[component.Colliding](p.em, id); ok && c.Blocking {
			out = append(out, id)
		}
	}
	return out
}

// BodyRect is the pixel rectangle of a body standing on cell (x, y).
func BodyRect(x, y int, b *component.Body, tileSize int) image.Rectangle {
	origin := image.Pt(x*tileSize, y*tileSize)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(b.Width, b.Height))}
}

func tileSize(m *component.Map) int {
	if m == nil || m.TileSize <= 0 {
		return 1
	}
	return m.TileSize
}

// roundAway rounds fractional steps away from zero so a partial step
// always moves at least one cell.
func roundAway(v float64) int {
	if v < 0 {
		return int(math.Floor(v))
	}
	return int(math.Ceil(v))
}
