package ecs

// World owns the entity pool and the component registry.
type World struct {
	pool     *EntityPool
	registry *Registry
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes every component of id and retires the id. Destroying an
// unknown or already destroyed id is a no-op.
func (w *World) Destroy(id EntityID) {
	w.registry.RemoveAll(id)
	w.pool.Destroy(id)
}
