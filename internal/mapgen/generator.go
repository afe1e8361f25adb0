package mapgen

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/nightcaste/nightcaste/internal/collision"
	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
	"github.com/nightcaste/nightcaste/internal/entity"
	"github.com/nightcaste/nightcaste/internal/world"
)

var (
	ErrMapTooSmall = errors.New("map too small")
	ErrNoEntry     = errors.New("no free entry point")
)

// Generator builds one map level and returns its map entity.
type Generator interface {
	Generate(name string, level int, rng *rand.Rand) (*Result, error)
}

// Result describes a generated level.
type Result struct {
	Map   ecs.EntityID
	Rooms []Room
}

// Room is an axis-aligned floor area.
type Room struct {
	X, Y, Width, Height int
}

func (r Room) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.Width && y < r.Y+r.Height
}

// RandomSpot returns a uniformly chosen cell of the room.
func (r Room) RandomSpot(rng *rand.Rand) (int, int) {
	return r.X + rng.Intn(r.Width), r.Y + rng.Intn(r.Height)
}

// tileFactory instantiates tile entities from blueprints.
type tileFactory struct {
	em       *entity.Manager
	blocking *collision.GridManager
}

func newTileFactory(em *entity.Manager) tileFactory {
	return tileFactory{em: em, blocking: collision.NewGridManager(em, nil)}
}

// create builds a tile at (x, y). When the blueprint lists tile variants
// one of them is appended to the tile name.
func (f tileFactory) create(blueprint string, x, y int, rng *rand.Rand) (ecs.EntityID, error) {
	cfg := entity.NewConfig().
		AddAttribute(component.KindPosition, "x", component.Int(x)).
		AddAttribute(component.KindPosition, "y", component.Int(y))
	id, err := f.em.NewFromBlueprintAndConfig(blueprint, cfg)
	if err != nil {
		return 0, err
	}
	if tile, ok := entity.Lookup[component.Tile](f.em, id); ok && len(tile.Variants) > 0 {
		tile.Name += "_" + tile.Variants[rng.Intn(len(tile.Variants))]
	}
	return id, nil
}

// replace swaps the tile of a cell, destroying the previous one.
func (f tileFactory) replace(grid *component.Grid, blueprint string, x, y int, rng *rand.Rand) (ecs.EntityID, error) {
	id, err := f.create(blueprint, x, y, rng)
	if err != nil {
		return 0, err
	}
	if old := grid.SetTile(x, y, id); old != 0 {
		f.em.DestroyEntity(old)
	}
	return id, nil
}

func (f tileFactory) blocked(grid *component.Grid, x, y int) bool {
	return f.blocking.IsBlocked(grid, x, y)
}

func (f tileFactory) newMap(name string, level int, grid *component.Grid, entry image.Point, tileSize int) ecs.EntityID {
	id := f.em.CreateEntity()
	f.em.AddComponent(id, &component.Map{
		Name:     name,
		Level:    level,
		Tiles:    grid,
		Entry:    entry,
		TileSize: tileSize,
		Ref:      world.NoMap,
	})
	return id
}

// destroyTiles removes every tile entity of a partially built grid.
func (f tileFactory) destroyTiles(grid *component.Grid) {
	grid.Each(func(_, _ int, ids []ecs.EntityID) {
		for _, id := range ids {
			f.em.DestroyEntity(id)
		}
	})
}

func checkSize(width, height, least int) error {
	if width < least || height < least {
		return fmt.Errorf("%w: %dx%d, need at least %dx%d", ErrMapTooSmall, width, height, least, least)
	}
	return nil
}
