package main

import "math"

const (
	ProjectileOffset = 28.0 // spawn distance from the shooter's center

	MineArmDelay     = 1.0   // seconds before a placed mine is live
	MineTriggerRange = 60.0  // proximity detonation distance
	MineLifetime     = 120.0 // seconds before an untriggered mine expires
)

// Projectile is a fired shot or, for mine-type weapons, a placed trap
type Projectile struct {
	ID        string
	OwnerID   string
	OwnerName string
	Weapon    Weapon

	X, Y   float64
	Angle  float64
	Speed  float64
	Damage int
	Radius float64

	Range     float64 // max travel distance
	Traveled  float64
	SpawnedAt float64
	Hit       bool // consumed this tick, pending removal
	Alive     bool

	Mine      bool
	Explosive bool
	ArmedAt   float64 // mines are inert before this time
}

// NewProjectile creates a projectile just ahead of the shooter, heading
// along the given angle
func NewProjectile(owner *Player, angle float64, def WeaponDef, now float64) *Projectile {
	p := &Projectile{
		ID:        GenerateID(3),
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
		Weapon:    owner.Weapon,
		X:         owner.X + math.Cos(angle)*(owner.Radius+ProjectileOffset),
		Y:         owner.Y + math.Sin(angle)*(owner.Radius+ProjectileOffset),
		Angle:     angle,
		Speed:     def.Speed,
		Damage:    def.Damage,
		Radius:    def.Radius,
		Range:     def.Range,
		SpawnedAt: now,
		Alive:     true,
		Mine:      def.Mine,
		Explosive: def.Explosive,
	}
	if p.Mine {
		// Mines drop at the shooter's position and sit still
		p.X = owner.X
		p.Y = owner.Y
		p.ArmedAt = now + MineArmDelay
	}
	return p
}

// Armed reports whether a mine is live
func (p *Projectile) Armed(now float64) bool {
	return p.Mine && now >= p.ArmedAt
}

// Update advances the projectile one tick. It dies when its traveled
// distance reaches its range or it leaves the map.
func (p *Projectile) Update(now, dt float64) {
	if !p.Alive {
		return
	}
	if p.Mine {
		if now-p.SpawnedAt >= MineLifetime {
			p.Alive = false
		}
		return
	}

	step := p.Speed * dt
	p.X += math.Cos(p.Angle) * step
	p.Y += math.Sin(p.Angle) * step
	p.Traveled += step

	if p.Traveled >= p.Range {
		p.Alive = false
		return
	}
	half := MapSize / 2
	if p.X < -half || p.X > half || p.Y < -half || p.Y > half {
		p.Alive = false
	}
}

// ToState converts to the broadcast subset
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:     p.ID,
		X:      round1(p.X),
		Y:      round1(p.Y),
		R:      round1(p.Angle),
		Weapon: int(p.Weapon),
		Owner:  p.OwnerID,
	}
}
