package world

import (
	"fmt"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

// MapRef indexes a map record in an Atlas.
type MapRef int32

// NoMap is the absent parent.
const NoMap MapRef = -1

// MapRecord is one generated map level.
type MapRecord struct {
	Name     string
	Level    int
	Entity   ecs.EntityID
	Parent   MapRef
	Children []MapRef
}

type levelKey struct {
	name  string
	level int
}

// Atlas is an arena of map records. Relations are stored as indices, never
// as pointers, so the parent/child graph can not form ownership cycles.
// Accessed only from the game loop goroutine, no locks.
type Atlas struct {
	maps   []MapRecord
	byName map[levelKey]MapRef
}

func NewAtlas() *Atlas {
	return &Atlas{byName: make(map[levelKey]MapRef)}
}

// Add registers a new map level. A name/level pair can only be added once.
func (a *Atlas) Add(name string, level int, entity ecs.EntityID) (MapRef, error) {
	k := levelKey{name, level}
	if _, ok := a.byName[k]; ok {
		return NoMap, fmt.Errorf("map %s level %d already registered", name, level)
	}
	ref := MapRef(len(a.maps))
	a.maps = append(a.maps, MapRecord{Name: name, Level: level, Entity: entity, Parent: NoMap})
	a.byName[k] = ref
	return ref, nil
}

// Get returns the record for ref.
func (a *Atlas) Get(ref MapRef) (*MapRecord, bool) {
	if ref < 0 || int(ref) >= len(a.maps) {
		return nil, false
	}
	return &a.maps[ref], true
}

// Lookup finds a map level by name.
func (a *Atlas) Lookup(name string, level int) (MapRef, bool) {
	ref, ok := a.byName[levelKey{name, level}]
	return ref, ok
}

// Levels returns how many consecutive levels, starting at 0, exist for name.
func (a *Atlas) Levels(name string) int {
	n := 0
	for {
		if _, ok := a.byName[levelKey{name, n}]; !ok {
			return n
		}
		n++
	}
}

// Link makes parent the parent of child. A map keeps its first parent;
// linking an ancestor below its own descendant is rejected.
func (a *Atlas) Link(parent, child MapRef) error {
	p, ok := a.Get(parent)
	if !ok {
		return fmt.Errorf("link: unknown parent %d", parent)
	}
	c, ok := a.Get(child)
	if !ok {
		return fmt.Errorf("link: unknown child %d", child)
	}
	if parent == child {
		return fmt.Errorf("link: map %d can not be its own parent", child)
	}
	if c.Parent != NoMap {
		return nil
	}
	for r := parent; r != NoMap; r = a.maps[r].Parent {
		if r == child {
			return fmt.Errorf("link: %s/%d is an ancestor of %s/%d", c.Name, c.Level, p.Name, p.Level)
		}
	}
	c.Parent = parent
	p.Children = append(p.Children, child)
	return nil
}

// Path returns the chain of refs from the root down to ref.
func (a *Atlas) Path(ref MapRef) []MapRef {
	var path []MapRef
	for r := ref; r != NoMap; r = a.maps[r].Parent {
		path = append(path, r)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (a *Atlas) Len() int { return len(a.maps) }
