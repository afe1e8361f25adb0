package component

import (
	"image"
	"time"

	"github.com/nightcaste/nightcaste/internal/world"
)

// Component is implemented by every component struct. Kind must not
// dereference the receiver so it can be called on a nil pointer.
type Component interface {
	Kind() Kind
}

// Position is a cell coordinate on the current map.
type Position struct {
	X, Y int
}

type Renderable struct {
	Name      string
	Character string
	ZIndex    int
	Visible   bool
}

type Colliding struct {
	Blocking bool
}

// Map is a level: a fixed-size grid of entity stacks plus an entry point.
// Parent and child levels are kept in the world.Atlas under Ref.
type Map struct {
	Name     string
	Level    int
	Tiles    *Grid
	Entry    image.Point
	TileSize int
	Ref      world.MapRef
}

// Turn gates when a behaviour may act for its entity.
type Turn struct {
	Ticks       int
	Locking     bool
	MinTurnTime time.Duration
	Delta       time.Duration
}

// Useable entities react to UseEntityAction. Script, when set, names a Lua
// function that decides the event; otherwise UseEvent is thrown.
type Useable struct {
	UseEvent string
	Script   string
}

type MapTransition struct {
	TargetMap   string
	TargetLevel int
	Generator   string
}

// Tile names the graphic of a map cell. Variants are optional suffixes,
// one of which is appended to Name when the tile is created.
type Tile struct {
	Name     string
	Variants []string
}

// Input marks entities steered by the player.
type Input struct{}

// Body is the extent, in pixels, used by the spatial index.
type Body struct {
	Width, Height int
}

func (*Position) Kind() Kind      { return KindPosition }
func (*Renderable) Kind() Kind    { return KindRenderable }
func (*Colliding) Kind() Kind     { return KindColliding }
func (*Map) Kind() Kind           { return KindMap }
func (*Turn) Kind() Kind          { return KindTurn }
func (*Useable) Kind() Kind       { return KindUseable }
func (*MapTransition) Kind() Kind { return KindMapTransition }
func (*Tile) Kind() Kind          { return KindTile }
func (*Input) Kind() Kind         { return KindInput }
func (*Body) Kind() Kind          { return KindBody }

// New returns a zero component of kind k.
func New(k Kind) (Component, error) {
	switch k {
	case KindPosition:
		return &Position{}, nil
	case KindRenderable:
		return &Renderable{Visible: true}, nil
	case KindColliding:
		return &Colliding{}, nil
	case KindMap:
		return &Map{Ref: world.NoMap}, nil
	case KindTurn:
		return &Turn{}, nil
	case KindUseable:
		return &Useable{}, nil
	case KindMapTransition:
		return &MapTransition{}, nil
	case KindTile:
		return &Tile{}, nil
	case KindInput:
		return &Input{}, nil
	case KindBody:
		return &Body{}, nil
	}
	return nil, ErrUnknownKind
}
