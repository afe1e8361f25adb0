package ecs

// EntityID identifies an entity for the lifetime of the process.
// Ids are issued in increasing order starting at 1 and are never reused;
// zero means "no entity".
type EntityID uint64

func (id EntityID) IsZero() bool { return id == 0 }

// EntityPool issues entity ids and tracks which of them are alive.
type EntityPool struct {
	last  EntityID
	alive map[EntityID]struct{}
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		alive: make(map[EntityID]struct{}, 1024),
	}
}

// Create allocates the next id. O(1), never fails.
func (p *EntityPool) Create() EntityID {
	p.last++
	p.alive[p.last] = struct{}{}
	return p.last
}

func (p *EntityPool) Alive(id EntityID) bool {
	_, ok := p.alive[id]
	return ok
}

// Destroy marks id as dead. Unknown or already destroyed ids are ignored.
// The id is not handed out again.
func (p *EntityPool) Destroy(id EntityID) bool {
	if _, ok := p.alive[id]; !ok {
		return false
	}
	delete(p.alive, id)
	return true
}

// Last returns the most recently issued id.
func (p *EntityPool) Last() EntityID { return p.last }

// Count returns the number of live entities.
func (p *EntityPool) Count() int { return len(p.alive) }
