package main

const (
	ExplosionRadius = 90.0
	ExplosionDamage = 30
	ExplosionWindow = 0.05 // seconds the blast can deal damage
	ExplosionLinger = 0.4  // seconds the spent blast stays visible in broadcasts
)

// Explosion is a transient blast zone. Each player in range takes damage at
// most once, within a short activation window after creation; the blast then
// lingers a few broadcast frames so clients can render it before it is
// pruned. It is never a persistent hazard.
type Explosion struct {
	ID        string
	X, Y      float64
	Radius    float64
	Damage    int
	OwnerID   string
	OwnerName string
	CreatedAt float64

	hit map[string]bool // player IDs already damaged by this blast
}

// NewExplosion creates a blast at the given position
func NewExplosion(x, y float64, ownerID, ownerName string, now float64) *Explosion {
	return &Explosion{
		ID:        GenerateID(3),
		X:         x,
		Y:         y,
		Radius:    ExplosionRadius,
		Damage:    ExplosionDamage,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		CreatedAt: now,
		hit:       make(map[string]bool),
	}
}

// Active reports whether the blast can still deal damage
func (e *Explosion) Active(now float64) bool {
	return now-e.CreatedAt <= ExplosionWindow
}

// Expired reports whether the blast should be pruned from the room
func (e *Explosion) Expired(now float64) bool {
	return now-e.CreatedAt > ExplosionLinger
}

// ToState converts to the broadcast subset
func (e *Explosion) ToState() ExplosionState {
	return ExplosionState{
		ID: e.ID,
		X:  round1(e.X),
		Y:  round1(e.Y),
		R:  round1(e.Radius),
	}
}
