package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSq returns the squared distance between two points
func DistanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// Lerp interpolates between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// NormalizeAngle wraps angle to [-PI, PI]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// CheckCircleCollision checks if two circles overlap (touching counts)
func CheckCircleCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X, Y, W, H float64
}

// ContainsPoint checks if a point lies inside the rectangle (inclusive bounds,
// so points exactly on a shared cell edge are never missed)
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Intersects checks if two rectangles overlap
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.W && r.X+r.W >= o.X &&
		r.Y <= o.Y+o.H && r.Y+r.H >= o.Y
}

// RotRect is an oriented rectangle centered at (X, Y), rotated by Angle
type RotRect struct {
	X, Y  float64
	W, H  float64
	Angle float64
}

// CircleRotRectCollide checks a circle against a rotated rectangle. When they
// overlap it returns the push vector that moves the circle out of the
// rectangle along the shortest escape direction.
func CircleRotRectCollide(cx, cy, cr float64, rect RotRect) (bool, float64, float64) {
	// Transform circle center into the rectangle's local frame
	cosA := math.Cos(-rect.Angle)
	sinA := math.Sin(-rect.Angle)
	dx := cx - rect.X
	dy := cy - rect.Y
	lx := dx*cosA - dy*sinA
	ly := dx*sinA + dy*cosA

	hw := rect.W / 2
	hh := rect.H / 2
	closestX := Clamp(lx, -hw, hw)
	closestY := Clamp(ly, -hh, hh)

	ex := lx - closestX
	ey := ly - closestY
	dist2 := ex*ex + ey*ey

	if dist2 > cr*cr {
		return false, 0, 0
	}

	var px, py float64
	if dist2 > 1e-9 {
		// Center outside the rectangle: push away from the closest point
		dist := math.Sqrt(dist2)
		depth := cr - dist
		px = ex / dist * depth
		py = ey / dist * depth
	} else {
		// Center inside the rectangle: escape along the nearest face
		right := hw - lx
		left := hw + lx
		bottom := hh - ly
		top := hh + ly
		min := right
		px, py = right+cr, 0
		if left < min {
			min = left
			px, py = -(left + cr), 0
		}
		if bottom < min {
			min = bottom
			px, py = 0, bottom+cr
		}
		if top < min {
			px, py = 0, -(top + cr)
		}
	}

	// Rotate the push vector back into world space
	cosB := math.Cos(rect.Angle)
	sinB := math.Sin(rect.Angle)
	return true, px*cosB - py*sinB, px*sinB + py*cosB
}
