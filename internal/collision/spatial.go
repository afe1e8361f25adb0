package collision

import (
	"image"
	"slices"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

// SpatialManager keeps the dynamic bodies of the current map in a
// QuadTree and answers rectangle collision queries.
type SpatialManager struct {
	tree     *QuadTree
	maxItems int
	maxLevel int
}

func NewSpatialManager(maxItems, maxLevel int) *SpatialManager {
	return &SpatialManager{maxItems: maxItems, maxLevel: maxLevel}
}

// Fill replaces the index with a new tree over bounds holding bodies.
func (s *SpatialManager) Fill(bounds image.Rectangle, bodies map[ecs.EntityID]image.Rectangle) {
	s.tree = NewQuadTree(bounds, s.maxItems, s.maxLevel)
	ids := make([]ecs.EntityID, 0, len(bodies))
	for id := range bodies {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		s.tree.Insert(id, bodies[id])
	}
}

// Tree returns the current index, nil before the first Fill.
func (s *SpatialManager) Tree() *QuadTree { return s.tree }

// Move relocates id, inserting it if it is not indexed yet.
func (s *SpatialManager) Move(id ecs.EntityID, r image.Rectangle) {
	if s.tree == nil {
		return
	}
	if !s.tree.Move(id, r) {
		s.tree.Insert(id, r)
	}
}

func (s *SpatialManager) Remove(id ecs.EntityID) {
	if s.tree != nil {
		s.tree.Remove(id)
	}
}

// CollideRect returns the indexed bodies overlapping r, excluding id.
func (s *SpatialManager) CollideRect(id ecs.EntityID, r image.Rectangle) []ecs.EntityID {
	if s.tree == nil {
		return nil
	}
	hits := s.tree.Retrieve(r)
	return slices.DeleteFunc(hits, func(h ecs.EntityID) bool { return h == id })
}
