package main

// queryPad is added to spatial query rectangles so the largest possible
// player radius can never slip past a cell edge
const queryPad = PlayerMaxRadius + 10

// CollisionDetector runs the fixed per-tick collision pass: projectiles,
// then players, then explosions. It only marks and delegates; collections
// are compacted by the room after the pass, never spliced mid-iteration.
type CollisionDetector struct {
	room *Room
	res  *CollisionResolver
	tree *Quadtree
	buf  []QuadPoint
}

// NewCollisionDetector creates a detector bound to a room
func NewCollisionDetector(room *Room, res *CollisionResolver) *CollisionDetector {
	return &CollisionDetector{room: room, res: res}
}

// Rebuild reconstructs the spatial index from current player positions.
// Full rebuild each tick: no stale references, no deletion logic.
func (cd *CollisionDetector) Rebuild() {
	half := MapSize / 2
	cd.tree = NewQuadtree(Rect{X: -half, Y: -half, W: MapSize, H: MapSize})
	for _, p := range cd.room.players {
		if p.Dead {
			continue
		}
		cd.tree.Insert(QuadPoint{X: p.X, Y: p.Y, Ref: p})
	}
}

// nearbyPlayers queries the index around a point
func (cd *CollisionDetector) nearbyPlayers(x, y, radius float64) []QuadPoint {
	cd.buf = cd.buf[:0]
	pad := radius + queryPad
	cd.buf = cd.tree.Query(Rect{X: x - pad, Y: y - pad, W: 2 * pad, H: 2 * pad}, cd.buf)
	return cd.buf
}

// Run executes the full pass in the required order
func (cd *CollisionDetector) Run(now float64) {
	cd.projectilePass(now)
	cd.playerPass(now)
	cd.explosionPass(now)
}

// projectilePass checks every live projectile: trap logic first, then
// players, then obstacles and chests. A projectile registers at most one
// hit per tick.
func (cd *CollisionDetector) projectilePass(now float64) {
	r := cd.room

	for _, proj := range r.projectiles {
		if !proj.Alive || proj.Hit {
			continue
		}

		if proj.Mine {
			cd.mineCheck(proj, now)
			continue
		}

		// Striking an armed mine detonates it and consumes the shot
		if cd.mineStrike(proj, now) {
			continue
		}

		hit := false
		for _, qp := range cd.nearbyPlayers(proj.X, proj.Y, proj.Radius) {
			target := qp.Ref
			if target.ID == proj.OwnerID || target.Dead {
				continue
			}
			if CheckCircleCollision(proj.X, proj.Y, proj.Radius, target.X, target.Y, target.Radius) {
				cd.res.HitPlayer(proj, target)
				hit = true
				break
			}
		}
		if hit {
			continue
		}

		for _, o := range r.world.Obstacles {
			if CheckCircleCollision(proj.X, proj.Y, proj.Radius, o.X, o.Y, o.Radius) {
				proj.Hit = true
				proj.Alive = false
				if proj.Explosive {
					r.addExplosion(NewExplosion(proj.X, proj.Y, proj.OwnerID, proj.OwnerName, now))
				}
				break
			}
		}
		if !proj.Alive {
			continue
		}

		for _, c := range r.world.Chests {
			if c.Dead {
				continue
			}
			if ok, _, _ := c.HitsCircle(proj.X, proj.Y, proj.Radius); ok {
				cd.res.HitChest(proj, c)
				break
			}
		}
	}
}

// mineCheck detonates an armed mine when a non-owner player comes close
func (cd *CollisionDetector) mineCheck(mine *Projectile, now float64) {
	if !mine.Armed(now) {
		return
	}
	for _, qp := range cd.nearbyPlayers(mine.X, mine.Y, MineTriggerRange) {
		p := qp.Ref
		if p.ID == mine.OwnerID || p.Dead {
			continue
		}
		if DistanceSq(mine.X, mine.Y, p.X, p.Y) <= MineTriggerRange*MineTriggerRange {
			cd.detonateMine(mine, now)
			return
		}
	}
}

// mineStrike checks a moving projectile against armed enemy mines,
// detonating both on contact
func (cd *CollisionDetector) mineStrike(proj *Projectile, now float64) bool {
	for _, mine := range cd.room.projectiles {
		if !mine.Mine || !mine.Alive || mine.Hit || !mine.Armed(now) {
			continue
		}
		if mine.OwnerID == proj.OwnerID {
			continue
		}
		if CheckCircleCollision(proj.X, proj.Y, proj.Radius, mine.X, mine.Y, mine.Radius) {
			proj.Hit = true
			proj.Alive = false
			cd.detonateMine(mine, now)
			return true
		}
	}
	return false
}

func (cd *CollisionDetector) detonateMine(mine *Projectile, now float64) {
	mine.Hit = true
	mine.Alive = false
	cd.room.addExplosion(NewExplosion(mine.X, mine.Y, mine.OwnerID, mine.OwnerName, now))
}

// playerPass resolves soft push-apart, pickups, static push-out, and nebula
// concealment for every live player
func (cd *CollisionDetector) playerPass(now float64) {
	r := cd.room

	for _, p := range r.players {
		if p.Dead {
			continue
		}

		// Player-vs-player soft separation; resolve each pair once
		for _, qp := range cd.nearbyPlayers(p.X, p.Y, p.Radius) {
			other := qp.Ref
			if other.ID <= p.ID || other.Dead {
				continue
			}
			if CheckCircleCollision(p.X, p.Y, p.Radius, other.X, other.Y, other.Radius) {
				cd.res.ResolvePlayerPush(p, other)
			}
		}

		for _, f := range r.world.Foods {
			if CheckCircleCollision(p.X, p.Y, p.Radius, f.X, f.Y, FoodRadius) {
				cd.res.CollectFood(p, f)
			}
		}

		// Push-out is cumulative across every overlapping static; dense
		// overlaps can in rare cases still trap a player inside geometry
		for _, o := range r.world.Obstacles {
			cd.res.ResolveEntityPush(p, o.X, o.Y, o.Radius)
		}
		for _, c := range r.world.Chests {
			if c.Dead {
				continue
			}
			if c.Station {
				if ok, px, py := c.HitsCircle(p.X, p.Y, p.Radius); ok {
					cd.res.ApplyPushVector(p, px, py)
				}
			} else {
				cd.res.ResolveEntityPush(p, c.X, c.Y, ChestRadius)
			}
		}

		for _, it := range r.world.Items {
			if CheckCircleCollision(p.X, p.Y, p.Radius, it.X, it.Y, it.Radius) {
				cd.res.CollectItem(p, it)
			}
		}

		p.InNebula = r.world.NebulaAt(p.X, p.Y)
	}
}

// explosionPass applies blast damage to every non-owner player in range,
// at most once per player per explosion
func (cd *CollisionDetector) explosionPass(now float64) {
	r := cd.room

	for _, e := range r.explosions {
		if !e.Active(now) {
			continue
		}
		for _, p := range r.players {
			if p.Dead || p.ID == e.OwnerID || e.hit[p.ID] {
				continue
			}
			if DistanceSq(e.X, e.Y, p.X, p.Y) <= (e.Radius+p.Radius)*(e.Radius+p.Radius) {
				e.hit[p.ID] = true
				cd.res.ApplyExplosionDamage(e, p)
			}
		}
	}
}
