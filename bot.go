package main

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	BotVisionRadius  = 700.0 // scaled by the bot's aggression trait
	BotStandOff      = 320.0 // preferred combat distance
	BotStandOffSlack = 60.0
	BotAimTolerance  = 0.15 // radians of aim error allowed before firing
	BotFireChance    = 0.6  // base accuracy roll, scaled per bot

	BotZonePanicRatio     = 0.90 // beyond this, abandon everything and run
	BotZoneAttentionRatio = 0.70 // beyond this, bias movement toward center
	BotRetreatAngleTol    = 1.05 // radians: keep fighting if target is this close to the retreat direction

	BotWanderMin = 2.0 // seconds a wander heading is held
	BotWanderMax = 4.0
)

var botNames = []string{
	"Drifter", "Vex", "Orbit", "Havoc", "Njord", "Pulsar", "Talon",
	"Cinder", "Mirage", "Quill", "Rook", "Static", "Umbra", "Zephyr",
}

// BotBrain is the AI scratch state attached to an AI-controlled player.
// Its only output is the player's Input snapshot plus queued actions, the
// same contract a human connection uses.
type BotBrain struct {
	TargetID   string
	Aggression float64 // vision scale, randomized at creation
	Accuracy   float64 // fire roll multiplier, randomized at creation

	WanderAngle float64
	WanderUntil float64
	wanderHold  bool // intermittent movement: pause leg of the wander cycle
}

// NewBot creates an AI-controlled player at the given spawn position
func NewBot(x, y float64) *Player {
	name := fmt.Sprintf("%s-%d", botNames[rand.Intn(len(botNames))], rand.Intn(90)+10)
	p := NewPlayer(GenerateID(4), name, x, y)
	p.brain = &BotBrain{
		Aggression: randRange(0.8, 1.2),
		Accuracy:   randRange(0.7, 1.1),
	}
	return p
}

// Think runs one AI decision ahead of standard simulation. It fills the
// bot's Input and may queue an attack; everything downstream treats the bot
// exactly like a player who just sent that input.
func (p *Player) Think(now float64, players map[string]*Player, zone *Zone) {
	b := p.brain
	if b == nil || p.Dead {
		return
	}
	p.Input = Input{AimX: p.Input.AimX, AimY: p.Input.AimY}

	// Zone awareness overrides combat
	if zone != nil && zone.State != ZoneFinished {
		ratio := zone.CenterRatio(p.X, p.Y)
		if ratio > BotZonePanicRatio {
			b.TargetID = ""
			b.steerToward(p, zone.X, zone.Y)
			p.aimAt(zone.X, zone.Y)
			return
		}
		if ratio > BotZoneAttentionRatio {
			target := b.validTarget(now, players)
			if target != nil && b.targetAlignsWithRetreat(p, target, zone) {
				b.fight(p, target, now)
				return
			}
			b.TargetID = ""
			b.steerToward(p, zone.X, zone.Y)
			p.aimAt(zone.X, zone.Y)
			return
		}
	}

	// Normal combat
	if target := b.acquireTarget(now, p, players); target != nil {
		b.fight(p, target, now)
		return
	}

	// Wander
	if now >= b.WanderUntil {
		b.WanderAngle = randRange(-math.Pi, math.Pi)
		b.WanderUntil = now + randRange(BotWanderMin, BotWanderMax)
		b.wanderHold = rand.Float64() < 0.35
	}
	if !b.wanderHold {
		b.steerAngle(p, b.WanderAngle)
	}
	p.aimAt(p.X+math.Cos(b.WanderAngle)*100, p.Y+math.Sin(b.WanderAngle)*100)
}

// validTarget returns the current target if it is still alive, present and
// visible; otherwise it is dropped.
func (b *BotBrain) validTarget(now float64, players map[string]*Player) *Player {
	if b.TargetID == "" {
		return nil
	}
	t, ok := players[b.TargetID]
	if !ok || t.Dead || t.Hidden(now) {
		b.TargetID = ""
		return nil
	}
	return t
}

// acquireTarget keeps the current target or picks the nearest visible
// hostile within vision range
func (b *BotBrain) acquireTarget(now float64, p *Player, players map[string]*Player) *Player {
	if t := b.validTarget(now, players); t != nil {
		return t
	}
	vision := BotVisionRadius * b.Aggression
	var best *Player
	bestD2 := vision * vision
	for _, other := range players {
		if other.ID == p.ID || other.Dead || other.Hidden(now) {
			continue
		}
		d2 := DistanceSq(p.X, p.Y, other.X, other.Y)
		if d2 < bestD2 {
			bestD2 = d2
			best = other
		}
	}
	if best != nil {
		b.TargetID = best.ID
	}
	return best
}

// fight maintains stand-off distance and fires when the aim lines up
func (b *BotBrain) fight(p *Player, target *Player, now float64) {
	p.aimAt(target.X, target.Y)

	dist := Distance(p.X, p.Y, target.X, target.Y)
	if dist > BotStandOff+BotStandOffSlack {
		b.steerToward(p, target.X, target.Y)
	} else if dist < BotStandOff-BotStandOffSlack {
		b.steerAngle(p, math.Atan2(p.Y-target.Y, p.X-target.X))
	}

	aimErr := math.Abs(NormalizeAngle(math.Atan2(target.Y-p.Y, target.X-p.X) - p.Rotation))
	if aimErr < BotAimTolerance && rand.Float64() < BotFireChance*b.Accuracy {
		p.AttackQueued = true
	}
}

// targetAlignsWithRetreat reports whether fighting the target still moves
// the bot roughly toward zone center
func (b *BotBrain) targetAlignsWithRetreat(p *Player, target *Player, zone *Zone) bool {
	toCenter := math.Atan2(zone.Y-p.Y, zone.X-p.X)
	toTarget := math.Atan2(target.Y-p.Y, target.X-p.X)
	return math.Abs(NormalizeAngle(toTarget-toCenter)) < BotRetreatAngleTol
}

// steerToward sets movement flags heading at a point
func (b *BotBrain) steerToward(p *Player, x, y float64) {
	b.steerAngle(p, math.Atan2(y-p.Y, x-p.X))
}

// steerAngle quantizes a heading into the 8-way movement flags a human
// client would send
func (b *BotBrain) steerAngle(p *Player, angle float64) {
	dx := math.Cos(angle)
	dy := math.Sin(angle)
	const axisMin = 0.383 // sin(22.5 deg)
	p.Input.Right = dx > axisMin
	p.Input.Left = dx < -axisMin
	p.Input.Down = dy > axisMin
	p.Input.Up = dy < -axisMin
}

// aimAt points the aim coordinates (and therefore facing) at a position
func (p *Player) aimAt(x, y float64) {
	p.Input.AimX = x
	p.Input.AimY = y
}
