package entity

import (
	"github.com/nightcaste/nightcaste/internal/component"
	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

// ptr constrains P to *T implementing component.Component.
type ptr[T any] interface {
	*T
	component.Component
}

// store adapts a typed component store to the component interface.
type store interface {
	ecs.Removable
	get(id ecs.EntityID) (component.Component, bool)
	set(id ecs.EntityID, c component.Component)
	has(id ecs.EntityID) bool
	ids() []ecs.EntityID
}

type typedStore[T any, P ptr[T]] struct {
	*ecs.PtrComponentStore[T]
}

func newTypedStore[T any, P ptr[T]]() typedStore[T, P] {
	return typedStore[T, P]{ecs.NewPtrComponentStore[T]()}
}

func (s typedStore[T, P]) get(id ecs.EntityID) (component.Component, bool) {
	c, ok := s.Get(id)
	if !ok {
		return nil, false
	}
	return P(c), true
}

func (s typedStore[T, P]) set(id ecs.EntityID, c component.Component) {
	s.Set(id, (*T)(c.(P)))
}

func (s typedStore[T, P]) has(id ecs.EntityID) bool { return s.Has(id) }

func (s typedStore[T, P]) ids() []ecs.EntityID { return s.IDs() }

func newStores() [len(kindStores)]store {
	var out [len(kindStores)]store
	for k, mk := range kindStores {
		out[k] = mk()
	}
	return out
}

var kindStores = [...]func() store{
	component.KindPosition:      func() store { return newTypedStore[component.Position]() },
	component.KindRenderable:    func() store { return newTypedStore[component.Renderable]() },
	component.KindColliding:     func() store { return newTypedStore[component.Colliding]() },
	component.KindMap:           func() store { return newTypedStore[component.Map]() },
	component.KindTurn:          func() store { return newTypedStore[component.Turn]() },
	component.KindUseable:       func() store { return newTypedStore[component.Useable]() },
	component.KindMapTransition: func() store { return newTypedStore[component.MapTransition]() },
	component.KindTile:          func() store { return newTypedStore[component.Tile]() },
	component.KindInput:         func() store { return newTypedStore[component.Input]() },
	component.KindBody:          func() store { return newTypedStore[component.Body]() },
}
