package main

// Weapon identifies the equipped weapon
type Weapon int

const (
	WeaponPistol Weapon = iota
	WeaponShotgun
	WeaponMachinegun
	WeaponSniper
	WeaponMineLayer
)

// WeaponDef holds the stats for a weapon
type WeaponDef struct {
	Name       string
	Damage     int
	Speed      float64 // projectile speed, units/s
	Cooldown   float64 // seconds between attacks
	Count      int     // projectiles per attack
	Spread     float64 // total fan angle in radians when Count > 1
	Range      float64 // max travel distance
	Radius     float64 // projectile collision radius
	Stationary bool    // attack requires the shooter to stand still
	Explosive  bool    // projectile detonates into an explosion on hit
	Mine       bool    // placed trap instead of moving projectile
}

var Weapons = [5]WeaponDef{
	// Pistol: the default sidearm
	{
		Name: "pistol", Damage: 15, Speed: 800, Cooldown: 0.4,
		Count: 1, Range: 900, Radius: 5,
	},
	// Shotgun: short-range fan
	{
		Name: "shotgun", Damage: 8, Speed: 700, Cooldown: 0.9,
		Count: 3, Spread: 0.35, Range: 450, Radius: 5,
	},
	// Machinegun: rapid fire, low damage
	{
		Name: "machinegun", Damage: 8, Speed: 850, Cooldown: 0.12,
		Count: 1, Range: 750, Radius: 4,
	},
	// Sniper: heavy hit, must stand still
	{
		Name: "sniper", Damage: 40, Speed: 1400, Cooldown: 1.6,
		Count: 1, Range: 1800, Radius: 4, Stationary: true,
	},
	// Mine layer: arms after a delay, detonates on proximity
	{
		Name: "mine", Damage: 30, Speed: 0, Cooldown: 1.2,
		Count: 1, Range: 0, Radius: 12, Explosive: true, Mine: true,
	},
}

// GetWeaponDef returns the definition for a weapon, falling back to pistol
func GetWeaponDef(w Weapon) WeaponDef {
	if w < 0 || int(w) >= len(Weapons) {
		return Weapons[WeaponPistol]
	}
	return Weapons[w]
}
