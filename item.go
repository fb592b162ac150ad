package main

import "math/rand"

const (
	ItemRadius  = 16.0
	ItemTimeout = 30.0 // seconds before an uncollected item despawns

	ShieldItemDuration = 6.0
	SpeedItemDuration  = 8.0
	InvisItemDuration  = 10.0
	HealthItemHeal     = 40

	CoinSmallValue  = 5
	CoinMediumValue = 15
	CoinLargeValue  = 40
)

// ItemType identifies a world pickup
type ItemType int

const (
	ItemNone ItemType = iota
	ItemHealth
	ItemShield
	ItemSpeed
	ItemWeaponShotgun
	ItemWeaponMachinegun
	ItemWeaponSniper
	ItemWeaponMine
	ItemBomb
	ItemInvisibility
	ItemCoinSmall
	ItemCoinMedium
	ItemCoinLarge
)

// Item is a collectible world pickup
type Item struct {
	ID        string
	Type      ItemType
	X, Y      float64
	Radius    float64
	CreatedAt float64
	Alive     bool
}

// NewItem creates an item at the given position
func NewItem(t ItemType, x, y, now float64) *Item {
	return &Item{
		ID:        GenerateID(3),
		Type:      t,
		X:         x,
		Y:         y,
		Radius:    ItemRadius,
		CreatedAt: now,
		Alive:     true,
	}
}

// Expired reports whether the despawn timeout has elapsed
func (it *Item) Expired(now float64) bool {
	return now-it.CreatedAt >= ItemTimeout
}

// Instant reports whether the item applies on pickup instead of going to an
// inventory slot (coins and health)
func (t ItemType) Instant() bool {
	switch t {
	case ItemHealth, ItemCoinSmall, ItemCoinMedium, ItemCoinLarge:
		return true
	}
	return false
}

// CoinValue returns the coin credit for coin-tier items, 0 otherwise
func (t ItemType) CoinValue() int {
	switch t {
	case ItemCoinSmall:
		return CoinSmallValue
	case ItemCoinMedium:
		return CoinMediumValue
	case ItemCoinLarge:
		return CoinLargeValue
	}
	return 0
}

// ApplyItem applies a stashed (or instant) item's effect to a player.
// Returns false for types with no usable effect.
func ApplyItem(t ItemType, p *Player, now float64) bool {
	switch t {
	case ItemHealth:
		p.Health += HealthItemHeal
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	case ItemShield:
		p.ShieldUntil = now + ShieldItemDuration
	case ItemSpeed:
		p.SpeedUntil = now + SpeedItemDuration
	case ItemInvisibility:
		p.InvisibleUntil = now + InvisItemDuration
	case ItemWeaponShotgun:
		p.Weapon = WeaponShotgun
	case ItemWeaponMachinegun:
		p.Weapon = WeaponMachinegun
	case ItemWeaponSniper:
		p.Weapon = WeaponSniper
	case ItemWeaponMine:
		p.Weapon = WeaponMineLayer
	case ItemCoinSmall, ItemCoinMedium, ItemCoinLarge:
		p.Coins += t.CoinValue()
	default:
		return false
	}
	return true
}

// dropTable is the pool drawn from for chest and death drops
var dropTable = []ItemType{
	ItemHealth, ItemHealth,
	ItemShield, ItemSpeed,
	ItemWeaponShotgun, ItemWeaponMachinegun, ItemWeaponSniper, ItemWeaponMine,
	ItemBomb, ItemInvisibility,
	ItemCoinSmall, ItemCoinSmall, ItemCoinMedium, ItemCoinLarge,
}

// RandomDropType picks an item type for a drop
func RandomDropType() ItemType {
	return dropTable[rand.Intn(len(dropTable))]
}

// ToState converts to the broadcast subset
func (it *Item) ToState() ItemState {
	return ItemState{
		ID:   it.ID,
		Type: int(it.Type),
		X:    round1(it.X),
		Y:    round1(it.Y),
	}
}
