package main

// QuadCapacity is how many points a node holds before subdividing
const QuadCapacity = 4

// QuadPoint is one record in the tree: a position plus the player it refers to
type QuadPoint struct {
	X, Y float64
	Ref  *Player
}

// Quadtree partitions the map for broad-phase collision queries. It is
// rebuilt from scratch every tick from current player positions; there is no
// removal and no incremental update.
type Quadtree struct {
	Bounds  Rect
	points  []QuadPoint
	divided bool
	nw, ne  *Quadtree
	sw, se  *Quadtree
}

// NewQuadtree creates a tree covering the given bounds
func NewQuadtree(bounds Rect) *Quadtree {
	return &Quadtree{
		Bounds: bounds,
		points: make([]QuadPoint, 0, QuadCapacity),
	}
}

// Insert adds a point. Returns false if it lies outside the tree's bounds.
func (qt *Quadtree) Insert(p QuadPoint) bool {
	if !qt.Bounds.ContainsPoint(p.X, p.Y) {
		return false
	}

	if !qt.divided && len(qt.points) < QuadCapacity {
		qt.points = append(qt.points, p)
		return true
	}

	if !qt.divided {
		qt.subdivide()
	}

	if qt.nw.Insert(p) {
		return true
	}
	if qt.ne.Insert(p) {
		return true
	}
	if qt.sw.Insert(p) {
		return true
	}
	return qt.se.Insert(p)
}

func (qt *Quadtree) subdivide() {
	x := qt.Bounds.X
	y := qt.Bounds.Y
	w := qt.Bounds.W / 2
	h := qt.Bounds.H / 2

	qt.nw = NewQuadtree(Rect{X: x, Y: y, W: w, H: h})
	qt.ne = NewQuadtree(Rect{X: x + w, Y: y, W: w, H: h})
	qt.sw = NewQuadtree(Rect{X: x, Y: y + h, W: w, H: h})
	qt.se = NewQuadtree(Rect{X: x + w, Y: y + h, W: w, H: h})
	qt.divided = true

	for _, p := range qt.points {
		if qt.nw.Insert(p) || qt.ne.Insert(p) || qt.sw.Insert(p) || qt.se.Insert(p) {
			continue
		}
	}
	qt.points = nil
}

// Query appends all points inside the range rectangle to found and returns
// the extended slice. Bounds are inclusive on both edges.
func (qt *Quadtree) Query(rng Rect, found []QuadPoint) []QuadPoint {
	if !qt.Bounds.Intersects(rng) {
		return found
	}

	for _, p := range qt.points {
		if rng.ContainsPoint(p.X, p.Y) {
			found = append(found, p)
		}
	}

	if qt.divided {
		found = qt.nw.Query(rng, found)
		found = qt.ne.Query(rng, found)
		found = qt.sw.Query(rng, found)
		found = qt.se.Query(rng, found)
	}
	return found
}
