package main

import (
	"math"
	"math/rand"
)

const (
	ZoneHoldDuration   = 20.0 // seconds at rest between shrinks
	ZoneShrinkDuration = 15.0 // seconds per shrink phase
	ZoneInitialRadius  = MapSize * 0.75
	ZoneDamageInterval = 3.0 // continuous seconds outside per damage unit
	ZoneDamage         = 1
	ZoneKillerName     = "the zone"
)

// zonePhases are target radii as fractions of the map half-width
var zonePhases = []float64{0.80, 0.55, 0.32, 0.15}

// ZoneStatus is the shrinking-boundary state
type ZoneStatus int

const (
	ZoneWaiting ZoneStatus = iota
	ZoneShrinking
	ZoneFinished
)

// Zone is the battle-royale shrinking safe circle. Radius never increases
// across phases and each target circle is fully contained in the current one.
type Zone struct {
	X, Y   float64
	Radius float64

	TargetX, TargetY float64
	TargetRadius     float64

	Phase        int
	State        ZoneStatus
	NextActionAt float64 // next scheduled transition (room clock)
	shrinkEndsAt float64
}

// NewZone creates a zone holding at full size until its first shrink
func NewZone(now float64) *Zone {
	return &Zone{
		Radius:       ZoneInitialRadius,
		State:        ZoneWaiting,
		NextActionAt: now + ZoneHoldDuration,
	}
}

// Update advances the zone state machine one tick
func (z *Zone) Update(now, dt float64) {
	switch z.State {
	case ZoneWaiting:
		if now < z.NextActionAt {
			return
		}
		if z.Phase >= len(zonePhases) {
			z.State = ZoneFinished
			return
		}
		z.pickTarget()
		z.State = ZoneShrinking
		z.shrinkEndsAt = now + ZoneShrinkDuration

	case ZoneShrinking:
		timeLeft := z.shrinkEndsAt - now
		if timeLeft <= 0 {
			// Snap exactly to target so float accumulation can't drift
			z.X = z.TargetX
			z.Y = z.TargetY
			z.Radius = z.TargetRadius
			z.Phase++
			z.State = ZoneWaiting
			z.NextActionAt = now + ZoneHoldDuration
			return
		}
		// Asymptotic blend toward the target; no stored start value needed
		t := dt / (timeLeft + dt)
		z.X = Lerp(z.X, z.TargetX, t)
		z.Y = Lerp(z.Y, z.TargetY, t)
		z.Radius = Lerp(z.Radius, z.TargetRadius, t)
	}
}

// pickTarget chooses the next circle: a configured fraction of the map
// half-width, centered at a random point keeping it fully inside the
// current circle.
func (z *Zone) pickTarget() {
	z.TargetRadius = zonePhases[z.Phase] * MapSize / 2
	maxShift := math.Max(0, z.Radius-z.TargetRadius)
	angle := rand.Float64() * 2 * math.Pi
	dist := rand.Float64() * maxShift
	z.TargetX = z.X + math.Cos(angle)*dist
	z.TargetY = z.Y + math.Sin(angle)*dist
}

// Contains reports whether a point is inside the safe circle. A player at
// the exact boundary (distance == radius) is inside; only strictly greater
// distance counts as outside.
func (z *Zone) Contains(x, y float64) bool {
	return DistanceSq(x, y, z.X, z.Y) <= z.Radius*z.Radius
}

// CenterRatio returns distance-from-center divided by current radius, the
// quantity bot zone-awareness thresholds compare against
func (z *Zone) CenterRatio(x, y float64) float64 {
	if z.Radius <= 0 {
		return math.Inf(1)
	}
	return Distance(x, y, z.X, z.Y) / z.Radius
}

// ToState converts to the broadcast subset
func (z *Zone) ToState() ZoneState {
	return ZoneState{
		X:       round1(z.X),
		Y:       round1(z.Y),
		R:       round1(z.Radius),
		TargetX: round1(z.TargetX),
		TargetY: round1(z.TargetY),
		TargetR: round1(z.TargetRadius),
		Phase:   z.Phase,
		State:   int(z.State),
	}
}
