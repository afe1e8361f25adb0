package mapgen

import (
	"fmt"
	"image"
	"math/rand"

	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/entity"
)

// DungeonOptions control BSP partitioning and the tile blueprints used.
type DungeonOptions struct {
	Width, Height int
	Depth         int     // maximum recursion depth
	MinPartition  int     // minimum partition width and height
	MaxRatio      float64 // partitions longer than ratio*shorter side are cut across
	TileSize      int
	Wall          string
	Floor         string
	Stairs        string // optional stairs down, empty to skip
}

func DefaultDungeonOptions() DungeonOptions {
	return DungeonOptions{
		Width:        80,
		Height:       50,
		Depth:        6,
		MinPartition: 8,
		MaxRatio:     1.3,
		TileSize:     32,
		Wall:         "tiles.stone_wall",
		Floor:        "tiles.stone_floor",
		Stairs:       "tiles.stairs",
	}
}

// DungeonGenerator carves rooms and corridors into a wall-filled grid
// using a binary space partition.
type DungeonGenerator struct {
	opts  DungeonOptions
	tiles tileFactory
	log   *zap.Logger
}

func NewDungeonGenerator(em *entity.Manager, opts DungeonOptions, log *zap.Logger) *DungeonGenerator {
	return &DungeonGenerator{opts: opts, tiles: newTileFactory(em), log: log}
}

type partition struct {
	rect        image.Rectangle
	left, right *partition
	rooms       []Room
}

func (p *partition) leaf() bool { return p.left == nil }

// layout is the carve plan: true cells become floor.
type layout struct {
	width int
	floor []bool
}

func (l *layout) isFloor(x, y int) bool { return l.floor[y*l.width+x] }

// carve turns a wall cell into floor. Existing floor is left alone.
func (l *layout) carve(x, y int) {
	l.floor[y*l.width+x] = true
}

func (g *DungeonGenerator) Generate(name string, level int, rng *rand.Rand) (*Result, error) {
	o := g.opts
	if o.MinPartition < 2 {
		return nil, fmt.Errorf("dungeon %s: min partition %d below 2", name, o.MinPartition)
	}
	if err := checkSize(o.Width, o.Height, o.MinPartition+2); err != nil {
		return nil, fmt.Errorf("dungeon %s: %w", name, err)
	}

	root := &partition{rect: image.Rect(1, 1, o.Width-1, o.Height-1)}
	g.split(root, o.Depth, rng)

	plan := &layout{width: o.Width, floor: make([]bool, o.Width*o.Height)}
	g.connect(root, plan, rng)
	rooms := root.rooms

	grid := component.NewGrid(o.Width, o.Height)
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			bp := o.Wall
			if plan.isFloor(x, y) {
				bp = o.Floor
			}
			id, err := g.tiles.create(bp, x, y, rng)
			if err != nil {
				g.tiles.destroyTiles(grid)
				return nil, fmt.Errorf("dungeon %s: %w", name, err)
			}
			grid.SetTile(x, y, id)
		}
	}

	var stairs image.Point
	if o.Stairs != "" {
		x, y := rooms[rng.Intn(len(rooms))].RandomSpot(rng)
		id, err := g.tiles.replace(grid, o.Stairs, x, y, rng)
		if err != nil {
			g.tiles.destroyTiles(grid)
			return nil, fmt.Errorf("dungeon %s: stairs: %w", name, err)
		}
		if mt, ok := entity.Lookup[component.MapTransition](g.tiles.em, id); ok {
			mt.TargetMap = name
			mt.TargetLevel = level + 1
		}
		stairs = image.Pt(x, y)
	}

	entry, err := g.entry(grid, rooms, stairs, rng)
	if err != nil {
		g.tiles.destroyTiles(grid)
		return nil, fmt.Errorf("dungeon %s: %w", name, err)
	}
	mapID := g.tiles.newMap(name, level, grid, entry, o.TileSize)
	g.log.Debug("dungeon generated",
		zap.String("name", name),
		zap.Int("level", level),
		zap.Int("rooms", len(rooms)),
		zap.Int("width", o.Width),
		zap.Int("height", o.Height),
	)
	return &Result{Map: mapID, Rooms: rooms}, nil
}

// split partitions p until depth runs out or p is too small to halve.
// Partitions stretched beyond MaxRatio are always cut across their long
// side.
func (g *DungeonGenerator) split(p *partition, depth int, rng *rand.Rand) {
	if depth <= 0 {
		return
	}
	minSize := g.opts.MinPartition
	w, h := p.rect.Dx(), p.rect.Dy()
	canV, canH := w >= 2*minSize, h >= 2*minSize
	if !canV && !canH {
		return
	}

	vertical := rng.Intn(2) == 0
	switch {
	case float64(w) > float64(h)*g.opts.MaxRatio:
		vertical = true
	case float64(h) > float64(w)*g.opts.MaxRatio:
		vertical = false
	}
	if vertical && !canV {
		vertical = false
	} else if !vertical && !canH {
		vertical = true
	}

	r := p.rect
	if vertical {
		at := r.Min.X + minSize + rng.Intn(w-2*minSize+1)
		p.left = &partition{rect: image.Rect(r.Min.X, r.Min.Y, at, r.Max.Y)}
		p.right = &partition{rect: image.Rect(at, r.Min.Y, r.Max.X, r.Max.Y)}
	} else {
		at := r.Min.Y + minSize + rng.Intn(h-2*minSize+1)
		p.left = &partition{rect: image.Rect(r.Min.X, r.Min.Y, r.Max.X, at)}
		p.right = &partition{rect: image.Rect(r.Min.X, at, r.Max.X, r.Max.Y)}
	}
	g.split(p.left, depth-1, rng)
	g.split(p.right, depth-1, rng)
}

// connect walks the tree in post-order: leaves get a room, inner nodes get
// a corridor between their two subtrees once both are carved.
func (g *DungeonGenerator) connect(p *partition, plan *layout, rng *rand.Rand) {
	if p.leaf() {
		room := g.room(p.rect, rng)
		for y := room.Y; y < room.Y+room.Height; y++ {
			for x := room.X; x < room.X+room.Width; x++ {
				plan.carve(x, y)
			}
		}
		p.rooms = []Room{room}
		return
	}
	g.connect(p.left, plan, rng)
	g.connect(p.right, plan, rng)

	ax, ay := randomFloor(p.left.rooms, plan, rng)
	bx, by := randomFloor(p.right.rooms, plan, rng)
	if rng.Intn(2) == 0 {
		hline(plan, ax, bx, ay)
		vline(plan, ay, by, bx)
	} else {
		vline(plan, ay, by, ax)
		hline(plan, ax, bx, by)
	}
	p.rooms = append(append([]Room(nil), p.left.rooms...), p.right.rooms...)
}

// room picks a rectangle inside r that leaves the last column and row of
// the partition as wall, so rooms of neighbouring partitions never touch.
func (g *DungeonGenerator) room(r image.Rectangle, rng *rand.Rand) Room {
	aw, ah := r.Dx()-1, r.Dy()-1
	w := max(1, aw/2)
	w += rng.Intn(aw - w + 1)
	h := max(1, ah/2)
	h += rng.Intn(ah - h + 1)
	return Room{
		X:      r.Min.X + rng.Intn(aw-w+1),
		Y:      r.Min.Y + rng.Intn(ah-h+1),
		Width:  w,
		Height: h,
	}
}

func randomFloor(rooms []Room, plan *layout, rng *rand.Rand) (int, int) {
	for {
		x, y := rooms[rng.Intn(len(rooms))].RandomSpot(rng)
		if plan.isFloor(x, y) {
			return x, y
		}
	}
}

func hline(plan *layout, x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		if !plan.isFloor(x, y) {
			plan.carve(x, y)
		}
	}
}

func vline(plan *layout, y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if !plan.isFloor(x, y) {
			plan.carve(x, y)
		}
	}
}

const entryAttempts = 1000

// entry picks a random cell of a random room, re-rolling blocked cells and
// the stairs.
func (g *DungeonGenerator) entry(grid *component.Grid, rooms []Room, stairs image.Point, rng *rand.Rand) (image.Point, error) {
	for i := 0; i < entryAttempts; i++ {
		x, y := rooms[rng.Intn(len(rooms))].RandomSpot(rng)
		p := image.Pt(x, y)
		if p == stairs && g.opts.Stairs != "" {
			continue
		}
		if !g.tiles.blocked(grid, x, y) {
			return p, nil
		}
	}
	if g.opts.Stairs != "" && !g.tiles.blocked(grid, stairs.X, stairs.Y) {
		return stairs, nil
	}
	return image.Point{}, ErrNoEntry
}
