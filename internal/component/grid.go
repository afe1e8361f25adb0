package component

import (
	"fmt"
	"slices"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

// Grid is a fixed-size 2D array of entity stacks. The first entry of a
// cell is its tile; entities standing on the tile follow in arrival order.
type Grid struct {
	width, height int
	cells         [][]ecs.EntityID
}

// NewGrid allocates an empty width x height grid. Non-positive sizes are a
// programming error.
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("component: invalid grid size %dx%d", width, height))
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([][]ecs.EntityID, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

func (g *Grid) index(x, y int) int {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("component: cell (%d,%d) outside %dx%d grid", x, y, g.width, g.height))
	}
	return y*g.width + x
}

// At returns the entities in a cell, bottom first. Out-of-bounds cells are
// empty. The slice must not be modified.
func (g *Grid) At(x, y int) []ecs.EntityID {
	if !g.InBounds(x, y) {
		return nil
	}
	return g.cells[y*g.width+x]
}

// Tile returns the bottom entity of a cell.
func (g *Grid) Tile(x, y int) (ecs.EntityID, bool) {
	c := g.At(x, y)
	if len(c) == 0 {
		return 0, false
	}
	return c[0], true
}

// SetTile replaces the bottom entity of a cell and returns the old one.
func (g *Grid) SetTile(x, y int, id ecs.EntityID) ecs.EntityID {
	i := g.index(x, y)
	if len(g.cells[i]) == 0 {
		g.cells[i] = append(g.cells[i], id)
		return 0
	}
	old := g.cells[i][0]
	g.cells[i][0] = id
	return old
}

// Add stacks id on top of a cell.
func (g *Grid) Add(x, y int, id ecs.EntityID) {
	i := g.index(x, y)
	g.cells[i] = append(g.cells[i], id)
}

// Remove takes id out of a cell. It reports whether id was present.
func (g *Grid) Remove(x, y int, id ecs.EntityID) bool {
	if !g.InBounds(x, y) {
		return false
	}
	i := y*g.width + x
	j := slices.Index(g.cells[i], id)
	if j < 0 {
		return false
	}
	g.cells[i] = slices.Delete(g.cells[i], j, j+1)
	return true
}

// Contains reports whether id is in the cell.
func (g *Grid) Contains(x, y int, id ecs.EntityID) bool {
	return slices.Contains(g.At(x, y), id)
}

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Each visits every cell in row-major order.
func (g *Grid) Each(fn func(x, y int, ids []ecs.EntityID)) {
	for i, c := range g.cells {
		fn(i%g.width, i/g.width, c)
	}
}
