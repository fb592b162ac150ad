package main

import (
	"math"
	"math/rand"
)

const (
	MapSize   = 4000.0 // square map side, centered at origin
	MapMargin = 30.0   // mobile entities are clamped this far inside the edge

	PlayerBaseRadius = 20.0
	PlayerMaxRadius  = PlayerBaseRadius * 3
	PlayerMaxHealth  = 100
	PlayerBaseSpeed  = 300.0 // units/s before radius scaling
	RadiusPerScore   = 0.02  // radius gained per score point, capped

	RegenDelay = 5.0 // seconds without damage before regen starts
	RegenRate  = 2.0 // HP/s

	DashDuration = 0.25
	DashCooldown = 3.0
	DashSpeedMul = 3.0
	SpeedBuffMul = 1.5

	InventorySlots   = 5
	RespawnScoreKeep = 0.10 // fraction of score retained on respawn

	XPPerFood = 10
	KillScore = 50
)

// Input is the buffered movement/aim snapshot consumed once per tick.
// Bots produce the exact same structure a human client sends.
type Input struct {
	Up, Down    bool
	Left, Right bool
	AimX, AimY  float64
}

// Moving reports whether any movement flag is held
func (in Input) Moving() bool {
	return in.Up || in.Down || in.Left || in.Right
}

// Player is a simulated combatant. Bots are Players with a non-nil brain;
// movement, collision and serialization never inspect which one they have.
type Player struct {
	ID        string
	Name      string
	AccountID int64 // 0 = guest, no persistence
	SkinID    string

	X, Y     float64
	Rotation float64 // facing angle toward aim target
	Radius   float64

	Health    int
	MaxHealth int
	Score     int
	Coins     int // session-earned, from loot only
	Kills     int
	Weapon    Weapon
	Dead      bool

	// Timed buffs, all "now < expiry" checks against the room clock
	ShieldUntil    float64
	SpeedUntil     float64
	DashUntil      float64
	DashReadyAt    float64
	InvisibleUntil float64

	LastAttackAt float64
	LastDamageAt float64

	Input        Input
	AttackQueued bool
	DashQueued   bool

	Inventory    [InventorySlots]ItemType
	SelectedSlot int

	InNebula bool
	ZoneTime float64 // continuous seconds spent outside the zone

	RemoveAt float64 // dead bots are pruned once the room clock passes this

	regenAcc float64
	brain    *BotBrain // nil for human-controlled players
}

// NewPlayer creates a player at the given spawn position
func NewPlayer(id, name string, x, y float64) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		X:         x,
		Y:         y,
		Radius:    PlayerBaseRadius,
		Health:    PlayerMaxHealth,
		MaxHealth: PlayerMaxHealth,
		Weapon:    WeaponPistol,
		// Far in the past so a fresh player can attack immediately
		LastAttackAt: -1e9,
	}
}

// IsBot reports whether this player is AI-controlled
func (p *Player) IsBot() bool {
	return p.brain != nil
}

// Hidden reports whether the player is concealed from targeting and from
// other players' views (nebula or invisibility item)
func (p *Player) Hidden(now float64) bool {
	return p.InNebula || now < p.InvisibleUntil
}

// EffectiveSpeed returns movement speed after radius and buff scaling
func (p *Player) EffectiveSpeed(now float64) float64 {
	speed := PlayerBaseSpeed * math.Sqrt(PlayerBaseRadius/p.Radius)
	if now < p.DashUntil {
		speed *= DashSpeedMul
	}
	if now < p.SpeedUntil {
		speed *= SpeedBuffMul
	}
	return speed
}

// Update runs one simulation tick for a living player: buffs, movement
// integration, facing, regen, bounds clamp.
func (p *Player) Update(now, dt float64) {
	if p.Dead {
		return
	}

	// Movement from the buffered input snapshot
	var dx, dy float64
	if p.Input.Up {
		dy -= 1
	}
	if p.Input.Down {
		dy += 1
	}
	if p.Input.Left {
		dx -= 1
	}
	if p.Input.Right {
		dx += 1
	}
	if dx != 0 || dy != 0 {
		inv := 1 / math.Sqrt(dx*dx+dy*dy)
		speed := p.EffectiveSpeed(now)
		p.X += dx * inv * speed * dt
		p.Y += dy * inv * speed * dt
	}

	// Face the aim target
	adx := p.Input.AimX - p.X
	ady := p.Input.AimY - p.Y
	if adx*adx+ady*ady > 1 {
		p.Rotation = math.Atan2(ady, adx)
	}

	// Passive regen after a damage-free window
	if p.Health < p.MaxHealth && now-p.LastDamageAt >= RegenDelay {
		p.regenAcc += RegenRate * dt
		if p.regenAcc >= 1 {
			heal := int(p.regenAcc)
			p.regenAcc -= float64(heal)
			p.Health += heal
			if p.Health > p.MaxHealth {
				p.Health = p.MaxHealth
			}
		}
	}

	half := MapSize/2 - MapMargin
	p.X = Clamp(p.X, -half, half)
	p.Y = Clamp(p.Y, -half, half)
}

// Dash starts a dash burst if the cooldown allows it
func (p *Player) Dash(now float64) bool {
	if p.Dead || now < p.DashReadyAt {
		return false
	}
	p.DashUntil = now + DashDuration
	p.DashReadyAt = now + DashCooldown
	return true
}

// CanAttack checks the per-weapon cooldown and stationary requirement
func (p *Player) CanAttack(now float64) bool {
	if p.Dead {
		return false
	}
	def := GetWeaponDef(p.Weapon)
	// Small epsilon so an attack landing exactly on the cooldown boundary
	// is not lost to float accumulation
	if now-p.LastAttackAt < def.Cooldown-1e-9 {
		return false
	}
	if def.Stationary && p.Input.Moving() {
		return false
	}
	return true
}

// Attack spawns this weapon's projectiles, fanned symmetrically around the
// aim angle when the weapon fires more than one.
func (p *Player) Attack(now float64) []*Projectile {
	if !p.CanAttack(now) {
		return nil
	}
	def := GetWeaponDef(p.Weapon)
	p.LastAttackAt = now

	projs := make([]*Projectile, 0, def.Count)
	for i := 0; i < def.Count; i++ {
		angle := p.Rotation
		if def.Count > 1 {
			angle += -def.Spread/2 + def.Spread*float64(i)/float64(def.Count-1)
		}
		projs = append(projs, NewProjectile(p, angle, def, now))
	}
	return projs
}

// TakeDamage reduces health (unless shielded) and returns true on death.
// Death side effects are the resolver's job, not this method's.
func (p *Player) TakeDamage(now float64, dmg int) bool {
	if p.Dead {
		return false
	}
	if now < p.ShieldUntil {
		return false
	}
	p.LastDamageAt = now
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		return true
	}
	return false
}

// AddScore grows score and radius (capped at 3x base)
func (p *Player) AddScore(points int) {
	p.Score += points
	p.Radius = Clamp(PlayerBaseRadius+float64(p.Score)*RadiusPerScore,
		PlayerBaseRadius, PlayerMaxRadius)
}

// Respawn brings a dead player back at the given position. Score is reduced
// to 10% of its prior value rather than reset, a soft death penalty.
func (p *Player) Respawn(now, x, y float64) {
	p.X = x
	p.Y = y
	p.Health = p.MaxHealth
	p.Dead = false
	p.Weapon = WeaponPistol
	p.Score = int(float64(p.Score) * RespawnScoreKeep)
	p.Radius = Clamp(PlayerBaseRadius+float64(p.Score)*RadiusPerScore,
		PlayerBaseRadius, PlayerMaxRadius)
	p.ShieldUntil = 0
	p.SpeedUntil = 0
	p.DashUntil = 0
	p.InvisibleUntil = 0
	p.ZoneTime = 0
	p.regenAcc = 0
	p.LastDamageAt = now
	p.Inventory = [InventorySlots]ItemType{}
	p.SelectedSlot = 0
}

// StashItem places an item type in the first free inventory slot, returning
// false when the inventory is full
func (p *Player) StashItem(t ItemType) bool {
	for i := range p.Inventory {
		if p.Inventory[i] == ItemNone {
			p.Inventory[i] = t
			return true
		}
	}
	return false
}

// ToState converts to the broadcast subset
func (p *Player) ToState(now float64) PlayerState {
	return PlayerState{
		ID:        p.ID,
		Name:      p.Name,
		X:         round1(p.X),
		Y:         round1(p.Y),
		R:         round1(p.Rotation),
		Radius:    round1(p.Radius),
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Score:     p.Score,
		Weapon:    int(p.Weapon),
		Alive:     !p.Dead,
		Shield:    now < p.ShieldUntil,
		Hidden:    p.Hidden(now),
		Bot:       p.IsBot(),
		Skin:      p.SkinID,
	}
}

// round1 rounds to one decimal to keep broadcast payloads compact
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// randRange returns a uniform float in [lo, hi)
func randRange(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}
