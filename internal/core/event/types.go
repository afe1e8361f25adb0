package event

import "github.com/nightcaste/nightcaste/internal/core/ecs"

// Event types accepted or produced by the engine core.
const (
	KeyPressed       Type = "KeyPressed"
	MoveAction       Type = "MoveAction"
	UseEntityAction  Type = "UseEntityAction"
	EntityMoved      Type = "EntityMoved"
	EntitiesCollided Type = "EntitiesCollided"
	WorldEnter       Type = "WorldEnter"
	MapChange        Type = "MapChange"
	MapChanged       Type = "MapChanged"
	EntityUsed       Type = "EntityUsed"
	PauseGame        Type = "PauseGame"
	ResumeGame       Type = "ResumeGame"
	RoundCompleted   Type = "RoundCompleted"
)

// TurnActions are the deferred actions collected by the turn scheduler.
var TurnActions = []Type{MoveAction.Turn(), UseEntityAction.Turn()}

// Payload is the closed set of event data types.
type Payload interface {
	payload()
}

// Key is a logical key reported by the input layer.
type Key string

const (
	KeyUp    Key = "up"
	KeyDown  Key = "down"
	KeyLeft  Key = "left"
	KeyRight Key = "right"
	KeyUse   Key = "use"
	KeyPause Key = "pause"
)

type KeyPress struct {
	Key Key
}

// Move asks to move Entity by (DX, DY), or to (DX, DY) when Absolute.
// Fractional amounts are rounded away from zero.
type Move struct {
	Entity   ecs.EntityID
	DX, DY   float64
	Absolute bool
}

// Use asks User to interact with everything in the cell at offset (DX, DY).
type Use struct {
	User   ecs.EntityID
	DX, DY int
}

type Moved struct {
	Entity ecs.EntityID
	X, Y   int
}

// Collided reports that Entity was blocked by Colliders at (X, Y).
type Collided struct {
	Entity    ecs.EntityID
	Colliders []ecs.EntityID
	X, Y      int
}

type Enter struct{}

// ChangeMap moves Entity to level Level of map Map. An empty Map asks for
// a freshly named map built by Generator.
type ChangeMap struct {
	Entity    ecs.EntityID
	Map       string
	Level     int
	Generator string
}

type MapEntered struct {
	Map    ecs.EntityID
	Name   string
	Level  int
	Entity ecs.EntityID
}

// Used is thrown for a Useable target that has no more specific payload.
type Used struct {
	User   ecs.EntityID
	Target ecs.EntityID
}

type Pause struct{}

type Resume struct{}

type Round struct {
	Number uint64
}

func (KeyPress) payload()   {}
func (Move) payload()       {}
func (Use) payload()        {}
func (Moved) payload()      {}
func (Collided) payload()   {}
func (Enter) payload()      {}
func (ChangeMap) payload()  {}
func (MapEntered) payload() {}
func (Used) payload()       {}
func (Pause) payload()      {}
func (Resume) payload()     {}
func (Round) payload()      {}
