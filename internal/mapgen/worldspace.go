package mapgen

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/entity"
)

// WorldOptions control the overworld generator. The actual size is picked
// between 70% and 100% of Width and Height.
type WorldOptions struct {
	Width, Height int
	NoiseScale    float64
	TileSize      int
	Stairs        image.Point
	Entry         image.Point
	Ground        string
	Water         string
	Forest        string
	StairsTile    string
}

func DefaultWorldOptions() WorldOptions {
	return WorldOptions{
		Width:      140,
		Height:     100,
		NoiseScale: 0.08,
		TileSize:   32,
		Stairs:     image.Pt(25, 25),
		Entry:      image.Pt(20, 20),
		Ground:     "tiles.grass",
		Water:      "tiles.water",
		Forest:     "tiles.tree",
		StairsTile: "tiles.stairs",
	}
}

const (
	waterBelow  = -0.25
	forestAbove = 0.3
	clearRadius = 2
)

// WorldspaceGenerator builds the overworld from Perlin noise: low areas
// become water, high areas forest. The entry and the stairs into the first
// dungeon are kept clear and joined by open ground.
type WorldspaceGenerator struct {
	opts  WorldOptions
	tiles tileFactory
	log   *zap.Logger
}

func NewWorldspaceGenerator(em *entity.Manager, opts WorldOptions, log *zap.Logger) *WorldspaceGenerator {
	return &WorldspaceGenerator{opts: opts, tiles: newTileFactory(em), log: log}
}

func (g *WorldspaceGenerator) Generate(name string, level int, rng *rand.Rand) (*Result, error) {
	o := g.opts
	least := max(o.Stairs.X, o.Stairs.Y, o.Entry.X, o.Entry.Y) + clearRadius + 1
	if err := checkSize(o.Width, o.Height, least); err != nil {
		return nil, fmt.Errorf("worldspace %s: %w", name, err)
	}
	width := shrink(o.Width, least, rng)
	height := shrink(o.Height, least, rng)

	noise := perlin.NewPerlin(2, 2, 3, rng.Int63())
	open := func(x, y int) bool {
		return near(x, y, o.Entry) || near(x, y, o.Stairs) || onPath(x, y, o.Entry, o.Stairs)
	}

	grid := component.NewGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			bp := o.Ground
			if !open(x, y) {
				n := noise.Noise2D(float64(x)*o.NoiseScale, float64(y)*o.NoiseScale)
				switch {
				case n < waterBelow:
					bp = o.Water
				case n > forestAbove:
					bp = o.Forest
				}
			}
			if image.Pt(x, y) == o.Stairs {
				bp = o.StairsTile
			}
			id, err := g.tiles.create(bp, x, y, rng)
			if err != nil {
				g.tiles.destroyTiles(grid)
				return nil, fmt.Errorf("worldspace %s: %w", name, err)
			}
			grid.SetTile(x, y, id)
		}
	}

	// stairs lead into a fresh dungeon
	stairs, _ := grid.Tile(o.Stairs.X, o.Stairs.Y)
	if mt, ok := entity.Lookup[component.MapTransition](g.tiles.em, stairs); ok {
		mt.TargetMap = ""
		mt.TargetLevel = 0
		mt.Generator = "dungeon"
	}

	mapID := g.tiles.newMap(name, level, grid, o.Entry, o.TileSize)
	g.log.Debug("worldspace generated",
		zap.String("name", name),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return &Result{Map: mapID, Rooms: []Room{{X: 0, Y: 0, Width: width, Height: height}}}, nil
}

// shrink picks a size in [70%, 100%) of n, never below least.
func shrink(n, least int, rng *rand.Rand) int {
	lo := n * 7 / 10
	if lo >= n {
		return n
	}
	return max(least, lo+rng.Intn(n-lo))
}

func near(x, y int, p image.Point) bool {
	return abs(x-p.X) <= clearRadius && abs(y-p.Y) <= clearRadius
}

// onPath reports whether (x, y) lies on the horizontal-then-vertical path
// from a to b.
func onPath(x, y int, a, b image.Point) bool {
	if y == a.Y && between(x, a.X, b.X) {
		return true
	}
	return x == b.X && between(y, a.Y, b.Y)
}

func between(v, a, b int) bool {
	if a > b {
		a, b = b, a
	}
	return v >= a && v <= b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
