package main

import "math/rand"

const (
	FoodRadius      = 8.0
	FoodTargetCount = 120
	FoodKinds       = 4

	ObstacleCount     = 14
	ObstacleMinRadius = 40.0
	ObstacleMaxRadius = 110.0

	ChestCount   = 8
	StationCount = 2

	NebulaCount  = 3
	NebulaRadius = 260.0

	SpawnAttempts = 24 // tries before giving up on a clear spawn position
)

// Food is a trivial XP pellet, replenished continuously
type Food struct {
	ID   string
	X, Y float64
	Kind int // cosmetic only
}

// Obstacle is a static impassable circle
type Obstacle struct {
	ID     string
	X, Y   float64
	Radius float64
}

// Nebula is a circular region that conceals players inside it
type Nebula struct {
	ID     string
	X, Y   float64
	Radius float64
}

// World owns the collections of passive world objects for one room and
// tracks add/remove deltas between broadcasts so clients only receive
// incremental changes.
type World struct {
	Foods     map[string]*Food
	Obstacles []*Obstacle
	Chests    map[string]*Chest
	Items     map[string]*Item
	Nebulas   []*Nebula

	foodsAdded    []FoodState
	foodsRemoved  []string
	chestsRemoved []string
	itemsAdded    []ItemState
	itemsRemoved  []string
}

// NewWorld creates a fully populated world
func NewWorld() *World {
	w := &World{
		Foods:  make(map[string]*Food),
		Chests: make(map[string]*Chest),
		Items:  make(map[string]*Item),
	}

	half := MapSize/2 - MapMargin
	for i := 0; i < ObstacleCount; i++ {
		w.Obstacles = append(w.Obstacles, &Obstacle{
			ID:     GenerateID(3),
			X:      randRange(-half, half),
			Y:      randRange(-half, half),
			Radius: randRange(ObstacleMinRadius, ObstacleMaxRadius),
		})
	}
	for i := 0; i < NebulaCount; i++ {
		w.Nebulas = append(w.Nebulas, &Nebula{
			ID:     GenerateID(3),
			X:      randRange(-half, half),
			Y:      randRange(-half, half),
			Radius: NebulaRadius,
		})
	}
	for i := 0; i < ChestCount; i++ {
		x, y := w.SpawnPosition(ChestRadius)
		c := NewChest(x, y)
		w.Chests[c.ID] = c
	}
	for i := 0; i < StationCount; i++ {
		x, y := w.SpawnPosition(StationW)
		s := NewStation(x, y)
		w.Chests[s.ID] = s
	}
	for i := 0; i < FoodTargetCount; i++ {
		w.spawnFood(false)
	}
	return w
}

// SpawnPosition picks a random position whose surrounding circle of the
// given radius does not overlap obstacles or chests. Falls back to the last
// candidate if no clear spot is found.
func (w *World) SpawnPosition(radius float64) (float64, float64) {
	half := MapSize/2 - MapMargin - radius
	var x, y float64
	for i := 0; i < SpawnAttempts; i++ {
		x = randRange(-half, half)
		y = randRange(-half, half)
		if w.positionClear(x, y, radius) {
			return x, y
		}
	}
	return x, y
}

func (w *World) positionClear(x, y, radius float64) bool {
	for _, o := range w.Obstacles {
		if CheckCircleCollision(x, y, radius, o.X, o.Y, o.Radius) {
			return false
		}
	}
	for _, c := range w.Chests {
		if c.Dead {
			continue
		}
		if hit, _, _ := c.HitsCircle(x, y, radius); hit {
			return false
		}
	}
	return true
}

func (w *World) spawnFood(track bool) {
	x, y := w.SpawnPosition(FoodRadius)
	f := &Food{
		ID:   GenerateID(3),
		X:    x,
		Y:    y,
		Kind: rand.Intn(FoodKinds),
	}
	w.Foods[f.ID] = f
	if track {
		w.foodsAdded = append(w.foodsAdded, f.ToState())
	}
}

// RemoveFood deletes a pellet and records the delta
func (w *World) RemoveFood(id string) {
	if _, ok := w.Foods[id]; !ok {
		return
	}
	delete(w.Foods, id)
	w.foodsRemoved = append(w.foodsRemoved, id)
}

// RemoveChest deletes a destroyed chest and records the delta
func (w *World) RemoveChest(id string) {
	if _, ok := w.Chests[id]; !ok {
		return
	}
	delete(w.Chests, id)
	w.chestsRemoved = append(w.chestsRemoved, id)
}

// AddItem places an item in the world and records the delta
func (w *World) AddItem(it *Item) {
	w.Items[it.ID] = it
	w.itemsAdded = append(w.itemsAdded, it.ToState())
}

// SpawnDropAt spills n random items around a position (death and chest drops)
func (w *World) SpawnDropAt(x, y, now float64, n int) {
	for i := 0; i < n; i++ {
		ix := Clamp(x+randRange(-40, 40), -MapSize/2+MapMargin, MapSize/2-MapMargin)
		iy := Clamp(y+randRange(-40, 40), -MapSize/2+MapMargin, MapSize/2-MapMargin)
		w.AddItem(NewItem(RandomDropType(), ix, iy, now))
	}
}

// RemoveItem deletes an item and records the delta
func (w *World) RemoveItem(id string) {
	if _, ok := w.Items[id]; !ok {
		return
	}
	delete(w.Items, id)
	w.itemsRemoved = append(w.itemsRemoved, id)
}

// Replenish tops up food and expires stale items, once per tick
func (w *World) Replenish(now float64) {
	for len(w.Foods) < FoodTargetCount {
		w.spawnFood(true)
	}
	for id, it := range w.Items {
		if it.Expired(now) {
			w.RemoveItem(id)
		}
	}
}

// UpdateChests advances station rotation
func (w *World) UpdateChests(dt float64) {
	for _, c := range w.Chests {
		c.Update(dt)
	}
}

// NebulaAt reports whether a point lies inside any nebula
func (w *World) NebulaAt(x, y float64) bool {
	for _, n := range w.Nebulas {
		if DistanceSq(x, y, n.X, n.Y) <= n.Radius*n.Radius {
			return true
		}
	}
	return false
}

// ConsumeDeltas returns the accumulated add/remove lists and resets them.
// Called once per broadcast tick.
func (w *World) ConsumeDeltas() WorldDelta {
	d := WorldDelta{
		FoodsAdded:    w.foodsAdded,
		FoodsRemoved:  w.foodsRemoved,
		ChestsRemoved: w.chestsRemoved,
		ItemsAdded:    w.itemsAdded,
		ItemsRemoved:  w.itemsRemoved,
	}
	w.foodsAdded = nil
	w.foodsRemoved = nil
	w.chestsRemoved = nil
	w.itemsAdded = nil
	w.itemsRemoved = nil
	return d
}

// Snapshot returns the full world-object state for init packets
func (w *World) Snapshot() WorldSnapshot {
	s := WorldSnapshot{
		Foods:     make([]FoodState, 0, len(w.Foods)),
		Obstacles: make([]ObstacleState, 0, len(w.Obstacles)),
		Chests:    make([]ChestState, 0, len(w.Chests)),
		Items:     make([]ItemState, 0, len(w.Items)),
		Nebulas:   make([]NebulaState, 0, len(w.Nebulas)),
	}
	for _, f := range w.Foods {
		s.Foods = append(s.Foods, f.ToState())
	}
	for _, o := range w.Obstacles {
		s.Obstacles = append(s.Obstacles, ObstacleState{ID: o.ID, X: round1(o.X), Y: round1(o.Y), R: round1(o.Radius)})
	}
	for _, c := range w.Chests {
		s.Chests = append(s.Chests, c.ToState())
	}
	for _, it := range w.Items {
		s.Items = append(s.Items, it.ToState())
	}
	for _, n := range w.Nebulas {
		s.Nebulas = append(s.Nebulas, NebulaState{ID: n.ID, X: round1(n.X), Y: round1(n.Y), R: round1(n.Radius)})
	}
	return s
}

// ToState converts to the broadcast subset
func (f *Food) ToState() FoodState {
	return FoodState{ID: f.ID, X: round1(f.X), Y: round1(f.Y), Kind: f.Kind}
}
