package main

const (
	ChestRadius = 34.0
	ChestHP     = 50
	ChestDrops  = 1

	StationW     = 180.0
	StationH     = 70.0
	StationHP    = 300
	StationSpin  = 0.4 // radians/s, continuous rotation
	StationDrops = 4
)

// Chest is a destructible world object that drops items when its HP reaches
// zero. Stations are the oriented-rectangle variant with much higher HP and
// a continuous spin.
type Chest struct {
	ID   string
	X, Y float64
	HP   int
	Dead bool

	Station bool
	Angle   float64 // stations only
	Spin    float64
}

// NewChest creates a circular chest
func NewChest(x, y float64) *Chest {
	return &Chest{
		ID: GenerateID(3),
		X:  x,
		Y:  y,
		HP: ChestHP,
	}
}

// NewStation creates a rotating rectangular station
func NewStation(x, y float64) *Chest {
	return &Chest{
		ID:      GenerateID(3),
		X:       x,
		Y:       y,
		HP:      StationHP,
		Station: true,
		Spin:    StationSpin,
	}
}

// Update rotates stations; plain chests are static
func (c *Chest) Update(dt float64) {
	if c.Station {
		c.Angle = NormalizeAngle(c.Angle + c.Spin*dt)
	}
}

// Rect returns the station's oriented rectangle
func (c *Chest) Rect() RotRect {
	return RotRect{X: c.X, Y: c.Y, W: StationW, H: StationH, Angle: c.Angle}
}

// HitsCircle checks collision against a circle, rectangle-aware for stations.
// For stations it also returns the push vector escaping the rectangle.
func (c *Chest) HitsCircle(cx, cy, cr float64) (bool, float64, float64) {
	if c.Station {
		return CircleRotRectCollide(cx, cy, cr, c.Rect())
	}
	if !CheckCircleCollision(c.X, c.Y, ChestRadius, cx, cy, cr) {
		return false, 0, 0
	}
	// Push straight out along the connecting axis
	dist := Distance(c.X, c.Y, cx, cy)
	depth := ChestRadius + cr - dist
	if dist < 1e-9 {
		return true, depth, 0
	}
	return true, (cx - c.X) / dist * depth, (cy - c.Y) / dist * depth
}

// TakeDamage reduces HP and returns true when the object is destroyed
func (c *Chest) TakeDamage(dmg int) bool {
	if c.Dead {
		return false
	}
	c.HP -= dmg
	if c.HP <= 0 {
		c.HP = 0
		c.Dead = true
		return true
	}
	return false
}

// DropCount returns how many items this object spills when destroyed
func (c *Chest) DropCount() int {
	if c.Station {
		return StationDrops
	}
	return ChestDrops
}

// ToState converts to the broadcast subset
func (c *Chest) ToState() ChestState {
	return ChestState{
		ID:      c.ID,
		X:       round1(c.X),
		Y:       round1(c.Y),
		HP:      c.HP,
		Station: c.Station,
		Angle:   round1(c.Angle),
	}
}
