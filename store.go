package main

import "errors"

var (
	ErrNotEnoughCoins = errors.New("not enough coins")
	ErrSkinOwned      = errors.New("skin already owned")
	ErrSkinUnknown    = errors.New("unknown skin")
	ErrSkinNotOwned   = errors.New("skin not owned")
)

// Rarity levels for skins
const (
	RarityCommon    = 0
	RarityRare      = 1
	RarityEpic      = 2
	RarityLegendary = 3
)

// Skin is a purchasable cosmetic
type Skin struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Rarity  int    `json:"rarity"`
	Price   int    `json:"price"` // in coins
	Color1  string `json:"color1"`
	Color2  string `json:"color2"`
	Preview string `json:"preview"`
}

// SkinCatalog is the full list of purchasable skins. The default skin has an
// empty ID and is always available.
var SkinCatalog = []Skin{
	{ID: "skin_crimson", Name: "Crimson", Rarity: RarityCommon, Price: 50, Color1: "#ff3333", Color2: "#cc0000", Preview: "Deep red hull"},
	{ID: "skin_forest", Name: "Forest", Rarity: RarityCommon, Price: 50, Color1: "#33cc33", Color2: "#006600", Preview: "Jungle green camo"},
	{ID: "skin_ocean", Name: "Ocean", Rarity: RarityCommon, Price: 50, Color1: "#3399ff", Color2: "#0044aa", Preview: "Deep sea blue"},
	{ID: "skin_amber", Name: "Amber", Rarity: RarityCommon, Price: 75, Color1: "#ff8833", Color2: "#cc4400", Preview: "Warm orange tones"},

	{ID: "skin_gold", Name: "Golden", Rarity: RarityRare, Price: 150, Color1: "#ffcc00", Color2: "#aa8800", Preview: "Gleaming gold plating"},
	{ID: "skin_ice", Name: "Ice", Rarity: RarityRare, Price: 150, Color1: "#88ddff", Color2: "#44aacc", Preview: "Frozen crystal coating"},
	{ID: "skin_toxic", Name: "Toxic", Rarity: RarityRare, Price: 200, Color1: "#88ff00", Color2: "#44aa00", Preview: "Radioactive green glow"},

	{ID: "skin_phantom", Name: "Phantom", Rarity: RarityEpic, Price: 400, Color1: "#333344", Color2: "#111122", Preview: "Nearly invisible dark hull"},
	{ID: "skin_inferno", Name: "Inferno", Rarity: RarityEpic, Price: 500, Color1: "#ff4400", Color2: "#ff8800", Preview: "Burning flame pattern"},

	{ID: "skin_nebula", Name: "Nebula", Rarity: RarityLegendary, Price: 1000, Color1: "#ff44ff", Color2: "#4444ff", Preview: "Swirling cosmic colors"},
	{ID: "skin_void", Name: "Void", Rarity: RarityLegendary, Price: 1200, Color1: "#000000", Color2: "#440088", Preview: "Absorbs all light"},
}

// SkinCatalogMap provides O(1) lookup by skin ID
var SkinCatalogMap map[string]Skin

func init() {
	SkinCatalogMap = make(map[string]Skin, len(SkinCatalog))
	for _, s := range SkinCatalog {
		SkinCatalogMap[s.ID] = s
	}
}

// BuySkin purchases a catalog skin for an account, returning the remaining
// coin balance
func BuySkin(db *DB, accountID int64, skinID string) (int, error) {
	skin, ok := SkinCatalogMap[skinID]
	if !ok {
		return 0, ErrSkinUnknown
	}
	return db.PurchaseSkin(accountID, skinID, skin.Price)
}

// EquipSkin equips an owned (or default) skin
func EquipSkin(db *DB, accountID int64, skinID string) error {
	if skinID == "" {
		return db.SetEquippedSkin(accountID, "")
	}
	if _, ok := SkinCatalogMap[skinID]; !ok {
		return ErrSkinUnknown
	}
	profile, err := db.GetProfile(accountID)
	if err != nil || profile == nil {
		return ErrSkinNotOwned
	}
	for _, owned := range profile.OwnedSkins {
		if owned == skinID {
			return db.SetEquippedSkin(accountID, skinID)
		}
	}
	return ErrSkinNotOwned
}
