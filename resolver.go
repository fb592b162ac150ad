package main

const (
	BotRemoveDelay = 2.0 // seconds a dead bot lingers so clients can animate
	DeathDropCount = 1   // guaranteed item drop on player death
)

// CollisionResolver applies the mutations the detector decides on: damage,
// pickups, push-out, and the single death pathway.
type CollisionResolver struct {
	room *Room
}

// HitPlayer resolves a projectile striking a player
func (cr *CollisionResolver) HitPlayer(proj *Projectile, target *Player) {
	r := cr.room
	proj.Hit = true
	proj.Alive = false
	if proj.Explosive {
		r.addExplosion(NewExplosion(proj.X, proj.Y, proj.OwnerID, proj.OwnerName, r.now))
	}
	if target.TakeDamage(r.now, proj.Damage) {
		cr.HandlePlayerDeath(target, proj.OwnerID, proj.OwnerName)
	}
}

// HitChest resolves a projectile striking a chest or station
func (cr *CollisionResolver) HitChest(proj *Projectile, chest *Chest) {
	r := cr.room
	proj.Hit = true
	proj.Alive = false
	if proj.Explosive {
		r.addExplosion(NewExplosion(proj.X, proj.Y, proj.OwnerID, proj.OwnerName, r.now))
	}
	if chest.TakeDamage(proj.Damage) {
		r.world.SpawnDropAt(chest.X, chest.Y, r.now, chest.DropCount())
		r.world.RemoveChest(chest.ID)
	}
}

// CollectFood awards XP and removes the pellet
func (cr *CollisionResolver) CollectFood(p *Player, f *Food) {
	p.AddScore(XPPerFood)
	cr.room.world.RemoveFood(f.ID)
}

// CollectItem picks an item up: instant types apply immediately, the rest
// go to the first free inventory slot (or stay on the ground if full)
func (cr *CollisionResolver) CollectItem(p *Player, it *Item) {
	r := cr.room
	if it.Type.Instant() {
		ApplyItem(it.Type, p, r.now)
	} else if !p.StashItem(it.Type) {
		return
	}
	r.world.RemoveItem(it.ID)
	r.queueEvent(Envelope{T: MsgItemPickedUp, Data: ItemPickedUpMsg{
		PlayerID: p.ID,
		ItemType: int(it.Type),
	}})
}

// ResolveEntityPush pushes a player out of a static circle (obstacle or
// plain chest). Cumulative across multiple overlaps in one tick.
func (cr *CollisionResolver) ResolveEntityPush(p *Player, ox, oy, orad float64) {
	dist := Distance(ox, oy, p.X, p.Y)
	depth := orad + p.Radius - dist
	if depth <= 0 {
		return
	}
	if dist < 1e-9 {
		p.X += depth
		return
	}
	p.X += (p.X - ox) / dist * depth
	p.Y += (p.Y - oy) / dist * depth
}

// ResolvePlayerPush separates two overlapping players symmetrically, each
// taking half the overlap along the connecting axis
func (cr *CollisionResolver) ResolvePlayerPush(a, b *Player) {
	dist := Distance(a.X, a.Y, b.X, b.Y)
	depth := a.Radius + b.Radius - dist
	if depth <= 0 {
		return
	}
	var nx, ny float64 = 1, 0
	if dist > 1e-9 {
		nx = (b.X - a.X) / dist
		ny = (b.Y - a.Y) / dist
	}
	half := depth / 2
	a.X -= nx * half
	a.Y -= ny * half
	b.X += nx * half
	b.Y += ny * half
}

// ApplyPushVector applies a precomputed rectangle-escape vector
func (cr *CollisionResolver) ApplyPushVector(p *Player, px, py float64) {
	p.X += px
	p.Y += py
}

// ApplyExplosionDamage deals blast damage to one player
func (cr *CollisionResolver) ApplyExplosionDamage(e *Explosion, p *Player) {
	if p.TakeDamage(cr.room.now, e.Damage) {
		cr.HandlePlayerDeath(p, e.OwnerID, e.OwnerName)
	}
}

// HandlePlayerDeath is the single death pathway for every cause: projectile,
// explosion, and zone. Calling it on an already-dead player is a no-op so
// kill credit and death events can never double up.
func (cr *CollisionResolver) HandlePlayerDeath(victim *Player, killerID, killerName string) {
	r := cr.room
	if victim.Dead {
		return
	}
	victim.Dead = true
	victim.Health = 0
	victim.Inventory = [InventorySlots]ItemType{}

	// Guaranteed loot at the death location; coins come from looting drops,
	// never from direct kill credit
	r.world.SpawnDropAt(victim.X, victim.Y, r.now, DeathDropCount)

	if killer, ok := r.players[killerID]; ok && killer.ID != victim.ID {
		killer.AddScore(KillScore)
		killer.Kills++
	}

	rank := 0
	if r.mode.Arena {
		rank = r.aliveCount() + 1 // victim's final placement
	}
	r.queueEvent(Envelope{T: MsgPlayerDied, Data: PlayerDiedMsg{
		VictimID:   victim.ID,
		KillerID:   killerID,
		KillerName: killerName,
		Score:      victim.Score,
		Rank:       rank,
	}})

	if victim.IsBot() {
		victim.RemoveAt = r.now + BotRemoveDelay
	} else {
		r.persistDeath(victim, rank)
	}
}
