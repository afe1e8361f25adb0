package collision

import (
	"image"
	"slices"

	"github.com/nightcaste/nightcaste/internal/core/ecs"
)

const (
	DefaultMaxItems = 5
	DefaultMaxLevel = 5
)

const noNode int32 = -1

// Quadrant order of the four children of a split node.
const (
	quadTopRight = iota
	quadTopLeft
	quadBottomLeft
	quadBottomRight
)

type qnode struct {
	bounds   image.Rectangle
	level    int
	parent   int32
	children int32 // first of four consecutive nodes, noNode for a leaf
	items    []ecs.EntityID
}

// QuadTree indexes rectangles by entity. Nodes live in one arena and refer
// to each other by index; the four children of a node are allocated and
// freed together. Items that straddle a quadrant boundary stay on the
// lowest node that fully contains them.
// Accessed only from the game loop goroutine, no locks.
type QuadTree struct {
	nodes    []qnode
	free     []int32
	rects    map[ecs.EntityID]image.Rectangle
	owner    map[ecs.EntityID]int32
	maxItems int
	maxLevel int
}

// NewQuadTree creates an empty tree. Non-positive limits fall back to the
// defaults.
func NewQuadTree(bounds image.Rectangle, maxItems, maxLevel int) *QuadTree {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if maxLevel <= 0 {
		maxLevel = DefaultMaxLevel
	}
	q := &QuadTree{
		rects:    make(map[ecs.EntityID]image.Rectangle),
		owner:    make(map[ecs.EntityID]int32),
		maxItems: maxItems,
		maxLevel: maxLevel,
	}
	q.nodes = append(q.nodes, qnode{bounds: bounds.Canon(), parent: noNode, children: noNode})
	return q
}

func (q *QuadTree) Bounds() image.Rectangle { return q.nodes[0].bounds }

func (q *QuadTree) Count() int { return len(q.rects) }

func (q *QuadTree) Contains(id ecs.EntityID) bool {
	_, ok := q.rects[id]
	return ok
}

// Rect returns the stored rectangle of id.
func (q *QuadTree) Rect(id ecs.EntityID) (image.Rectangle, bool) {
	r, ok := q.rects[id]
	return r, ok
}

// NodeCount returns the number of live nodes, the root included.
func (q *QuadTree) NodeCount() int {
	n := 0
	q.walk(0, func(int32) { n++ })
	return n
}

// Height is 0 for an unsplit tree and grows by one per split level.
func (q *QuadTree) Height() int {
	return q.height(0)
}

func (q *QuadTree) height(n int32) int {
	c := q.nodes[n].children
	if c == noNode {
		return 0
	}
	h := 0
	for i := int32(0); i < 4; i++ {
		h = max(h, q.height(c+i))
	}
	return h + 1
}

// Insert stores id with rect r. An id already present is moved instead.
func (q *QuadTree) Insert(id ecs.EntityID, r image.Rectangle) {
	if q.Contains(id) {
		q.Move(id, r)
		return
	}
	r = r.Canon()
	q.rects[id] = r
	q.insertAt(0, id, r)
}

// Remove deletes id and merges subtrees that became empty. It reports
// whether id was stored.
func (q *QuadTree) Remove(id ecs.EntityID) bool {
	n, ok := q.owner[id]
	if !ok {
		return false
	}
	q.detach(n, id)
	delete(q.rects, id)
	q.cleanUpwards(n)
	return true
}

// Move updates the rectangle of id. The item climbs from its old node to
// the first ancestor containing the new rect, then descends as far as it
// fits. Nodes left empty are merged back.
func (q *QuadTree) Move(id ecs.EntityID, r image.Rectangle) bool {
	old, ok := q.owner[id]
	if !ok {
		return false
	}
	r = r.Canon()
	q.rects[id] = r

	n := old
	for n != 0 && !r.In(q.nodes[n].bounds) {
		n = q.nodes[n].parent
	}
	if n == old && q.nodes[n].children == noNode {
		return true
	}
	q.detach(old, id)
	q.insertAt(n, id, r)
	q.cleanUpwards(old)
	return true
}

// Retrieve returns every stored id whose rect overlaps query. Touching
// edges do not overlap.
func (q *QuadTree) Retrieve(query image.Rectangle) []ecs.EntityID {
	query = query.Canon()
	var out []ecs.EntityID
	stack := []int32{0}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &q.nodes[n]
		for _, id := range node.items {
			if q.rects[id].Overlaps(query) {
				out = append(out, id)
			}
		}
		if node.children == noNode {
			continue
		}
		for i := int32(0); i < 4; i++ {
			if q.nodes[node.children+i].bounds.Overlaps(query) {
				stack = append(stack, node.children+i)
			}
		}
	}
	return out
}

func (q *QuadTree) insertAt(n int32, id ecs.EntityID, r image.Rectangle) {
	for {
		node := &q.nodes[n]
		if node.children == noNode {
			break
		}
		i := q.fit(n, r)
		if i < 0 {
			break
		}
		n = node.children + int32(i)
	}
	node := &q.nodes[n]
	node.items = append(node.items, id)
	q.owner[id] = n
	if len(node.items) > q.maxItems && node.level < q.maxLevel && node.children == noNode {
		q.split(n)
	}
}

// fit returns the child quadrant of n that strictly contains r, or -1.
// A rect touching the middle lines belongs to n itself.
func (q *QuadTree) fit(n int32, r image.Rectangle) int {
	b := q.nodes[n].bounds
	vmid := b.Min.X + b.Dx()/2
	hmid := b.Min.Y + b.Dy()/2

	top := r.Min.Y < hmid && r.Max.Y < hmid
	bottom := r.Min.Y > hmid
	idx := -1
	switch {
	case r.Min.X < vmid && r.Max.X < vmid:
		if top {
			idx = quadTopLeft
		} else if bottom {
			idx = quadBottomLeft
		}
	case r.Min.X > vmid:
		if top {
			idx = quadTopRight
		} else if bottom {
			idx = quadBottomRight
		}
	}
	if idx < 0 {
		return -1
	}
	if c := q.nodes[n].children; c != noNode && !r.In(q.nodes[c+int32(idx)].bounds) {
		return -1
	}
	return idx
}

func (q *QuadTree) split(n int32) {
	c := q.alloc()
	b := q.nodes[n].bounds
	w, h := b.Dx()/2, b.Dy()/2
	x, y := b.Min.X, b.Min.Y
	quads := [4]image.Rectangle{
		quadTopRight:    image.Rect(x+w, y, x+2*w, y+h),
		quadTopLeft:     image.Rect(x, y, x+w, y+h),
		quadBottomLeft:  image.Rect(x, y+h, x+w, y+2*h),
		quadBottomRight: image.Rect(x+w, y+h, x+2*w, y+2*h),
	}
	level := q.nodes[n].level + 1
	for i, qb := range quads {
		q.nodes[c+int32(i)] = qnode{bounds: qb, level: level, parent: n, children: noNode}
	}
	q.nodes[n].children = c

	items := q.nodes[n].items
	q.nodes[n].items = nil
	for _, id := range items {
		r := q.rects[id]
		if i := q.fit(n, r); i >= 0 {
			q.insertAt(c+int32(i), id, r)
			continue
		}
		q.nodes[n].items = append(q.nodes[n].items, id)
	}
}

func (q *QuadTree) alloc() int32 {
	if l := len(q.free); l > 0 {
		c := q.free[l-1]
		q.free = q.free[:l-1]
		return c
	}
	c := int32(len(q.nodes))
	q.nodes = append(q.nodes, qnode{}, qnode{}, qnode{}, qnode{})
	return c
}

func (q *QuadTree) detach(n int32, id ecs.EntityID) {
	node := &q.nodes[n]
	if i := slices.Index(node.items, id); i >= 0 {
		node.items = slices.Delete(node.items, i, i+1)
	}
	delete(q.owner, id)
}

// cleanUpwards frees the children of every node on the path to the root
// whose whole subtree holds no items.
func (q *QuadTree) cleanUpwards(n int32) {
	for n != noNode {
		node := &q.nodes[n]
		if node.children != noNode && q.childrenEmpty(n) {
			q.release(node.children)
			node.children = noNode
		}
		if len(node.items) > 0 || node.children != noNode {
			return
		}
		n = node.parent
	}
}

func (q *QuadTree) childrenEmpty(n int32) bool {
	c := q.nodes[n].children
	for i := int32(0); i < 4; i++ {
		if !q.empty(c + i) {
			return false
		}
	}
	return true
}

func (q *QuadTree) empty(n int32) bool {
	empty := true
	q.walk(n, func(m int32) {
		if len(q.nodes[m].items) > 0 {
			empty = false
		}
	})
	return empty
}

func (q *QuadTree) release(c int32) {
	for i := int32(0); i < 4; i++ {
		if cc := q.nodes[c+i].children; cc != noNode {
			q.release(cc)
		}
		q.nodes[c+i] = qnode{parent: noNode, children: noNode}
	}
	q.free = append(q.free, c)
}

func (q *QuadTree) walk(n int32, fn func(int32)) {
	fn(n)
	if c := q.nodes[n].children; c != noNode {
		for i := int32(0); i < 4; i++ {
			q.walk(c+i, fn)
		}
	}
}
