package main

import (
	"math"
	"testing"
)

func TestNewProjectileSpawnOffset(t *testing.T) {
	p := NewPlayer("p1", "A", 100, 100)
	def := Weapons[WeaponPistol]
	proj := NewProjectile(p, 0, def, 0)

	wantX := 100 + p.Radius + ProjectileOffset
	if math.Abs(proj.X-wantX) > 0.001 || math.Abs(proj.Y-100) > 0.001 {
		t.Errorf("expected spawn at (%f, 100), got (%f, %f)", wantX, proj.X, proj.Y)
	}
	if proj.Damage != def.Damage || proj.Range != def.Range {
		t.Error("projectile should carry weapon stats")
	}
}

func TestProjectileDiesAtRangeBoundary(t *testing.T) {
	p := NewPlayer("p1", "A", 0, 0)
	def := Weapons[WeaponPistol]
	proj := NewProjectile(p, 0, def, 0)

	dt := 1.0 / TickRate
	// Travel up to just under range
	for proj.Traveled+proj.Speed*dt < proj.Range {
		proj.Update(0, dt)
		if !proj.Alive {
			t.Fatal("projectile died before reaching its range")
		}
	}
	// The tick that reaches the boundary kills it
	proj.Update(0, dt)
	if proj.Alive {
		t.Errorf("projectile should die when traveled (%f) reaches range (%f)",
			proj.Traveled, proj.Range)
	}
}

func TestProjectileDiesOutsideMap(t *testing.T) {
	p := NewPlayer("p1", "A", MapSize/2-MapMargin-1, 0)
	proj := NewProjectile(p, 0, Weapons[WeaponSniper], 0)
	for i := 0; i < 200 && proj.Alive; i++ {
		proj.Update(0, 1.0/TickRate)
	}
	if proj.Alive {
		t.Error("projectile should die at the map edge")
	}
}

func TestMineArmsAfterDelay(t *testing.T) {
	p := NewPlayer("p1", "A", 50, 50)
	mine := NewProjectile(p, 0, Weapons[WeaponMineLayer], 10)

	if mine.X != 50 || mine.Y != 50 {
		t.Error("mine should drop at the owner's position")
	}
	if mine.Armed(10.5) {
		t.Error("mine should be inert before the arm delay")
	}
	if !mine.Armed(10 + MineArmDelay) {
		t.Error("mine should be armed after the delay")
	}
}

func TestMineStaysPutAndExpires(t *testing.T) {
	p := NewPlayer("p1", "A", 50, 50)
	mine := NewProjectile(p, 0, Weapons[WeaponMineLayer], 0)

	mine.Update(1, 1.0/TickRate)
	if mine.X != 50 || mine.Y != 50 {
		t.Error("mine should not move")
	}
	if !mine.Alive {
		t.Error("mine should survive within its lifetime")
	}

	mine.Update(MineLifetime+1, 1.0/TickRate)
	if mine.Alive {
		t.Error("mine should expire past its lifetime")
	}
}
