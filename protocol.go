package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin       = "join"      // endless mode
	MsgArenaJoin  = "arenaJoin" // battle-royale mode
	MsgArenaLeave = "arenaLeave"
	MsgInput      = "input"
	MsgAttack     = "attack"
	MsgDash       = "dash"
	MsgSelectSlot = "selectSlot"
	MsgUseItem    = "useItem"
	MsgRespawn    = "respawn"
	MsgBuySkin    = "buySkin"
	MsgEquipSkin  = "equipSkin"
	MsgPong       = "pong"
	MsgRegister   = "register"
	MsgLogin      = "login"
	MsgAuth       = "auth"
	MsgProfile    = "profile"
)

// Server -> Client message types
const (
	MsgInit           = "init"
	MsgUpdate         = "update"
	MsgArenaUpdate    = "arenaUpdate"
	MsgPlayerJoin     = "playerJoin"
	MsgPlayerLeave    = "playerLeave"
	MsgPlayerDied     = "playerDied"
	MsgPlayerDamaged  = "playerDamaged"
	MsgArenaStatus    = "arenaStatus"
	MsgArenaCountdown = "arenaCountdown"
	MsgArenaStart     = "arenaStart"
	MsgArenaVictory   = "arenaVictory"
	MsgArenaEnd       = "arenaEnd"
	MsgItemPickedUp   = "itemPickedUp"
	MsgUserDataUpdate = "userDataUpdate"
	MsgPing           = "ping"
	MsgError          = "error"
	MsgAuthOK         = "authOk"
	MsgProfileData    = "profileData"
)

// Damage sources carried in playerDamaged events
const (
	DamageSourceZone = "ZONE"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages. json.RawMessage defers payload
// decoding to the per-type handler.
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg enters endless or arena mode
type JoinMsg struct {
	Name   string `json:"name"`
	Token  string `json:"token,omitempty"`
	SkinID string `json:"skin,omitempty"`
}

// InputMsg is the movement/aim snapshot sent by clients
type InputMsg struct {
	Up    bool    `json:"u"`
	Down  bool    `json:"d"`
	Left  bool    `json:"l"`
	Right bool    `json:"r"`
	AimX  float64 `json:"ax"`
	AimY  float64 `json:"ay"`
}

// SlotMsg selects an inventory slot (0-4)
type SlotMsg struct {
	Index int `json:"i"`
}

// RespawnMsg asks to come back after death (endless mode only)
type RespawnMsg struct {
	SkinID string `json:"skin,omitempty"`
}

// SkinMsg buys or equips a skin
type SkinMsg struct {
	SkinID string `json:"skin"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates with a previously issued token
type AuthMsg struct {
	Token string `json:"token"`
}

// PingMsg carries the server clock for client latency probes
type PingMsg struct {
	Time int64 `json:"time"` // unix millis
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   int64  `json:"uid"`
}

// PlayerState is the broadcast subset of a player
type PlayerState struct {
	ID        string  `json:"id" msgpack:"id"`
	Name      string  `json:"n" msgpack:"n"`
	X         float64 `json:"x" msgpack:"x"`
	Y         float64 `json:"y" msgpack:"y"`
	R         float64 `json:"r" msgpack:"r"`
	Radius    float64 `json:"rad" msgpack:"rad"`
	Health    int     `json:"hp" msgpack:"hp"`
	MaxHealth int     `json:"mhp" msgpack:"mhp"`
	Score     int     `json:"sc" msgpack:"sc"`
	Weapon    int     `json:"w" msgpack:"w"`
	Alive     bool    `json:"a" msgpack:"a"`
	Shield    bool    `json:"sh,omitempty" msgpack:"sh"`
	Hidden    bool    `json:"h,omitempty" msgpack:"h"`
	Bot       bool    `json:"b,omitempty" msgpack:"b"`
	Skin      string  `json:"sk,omitempty" msgpack:"sk"`
}

// ProjectileState is the broadcast subset of a projectile
type ProjectileState struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	R      float64 `json:"r" msgpack:"r"`
	Weapon int     `json:"w" msgpack:"w"`
	Owner  string  `json:"o" msgpack:"o"`
}

// ExplosionState is the broadcast subset of an explosion
type ExplosionState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	R  float64 `json:"r" msgpack:"r"`
}

// ZoneState is the broadcast subset of the zone
type ZoneState struct {
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	R       float64 `json:"r" msgpack:"r"`
	TargetX float64 `json:"tx" msgpack:"tx"`
	TargetY float64 `json:"ty" msgpack:"ty"`
	TargetR float64 `json:"tr" msgpack:"tr"`
	Phase   int     `json:"ph" msgpack:"ph"`
	State   int     `json:"st" msgpack:"st"`
}

// FoodState is the broadcast subset of a food pellet
type FoodState struct {
	ID   string  `json:"id" msgpack:"id"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Kind int     `json:"k" msgpack:"k"`
}

// ObstacleState is the broadcast subset of an obstacle
type ObstacleState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	R  float64 `json:"r" msgpack:"r"`
}

// ChestState is the broadcast subset of a chest or station
type ChestState struct {
	ID      string  `json:"id" msgpack:"id"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	HP      int     `json:"hp" msgpack:"hp"`
	Station bool    `json:"st,omitempty" msgpack:"st"`
	Angle   float64 `json:"an,omitempty" msgpack:"an"`
}

// ItemState is the broadcast subset of an item
type ItemState struct {
	ID   string  `json:"id" msgpack:"id"`
	Type int     `json:"tp" msgpack:"tp"`
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
}

// NebulaState is the broadcast subset of a nebula
type NebulaState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
	R  float64 `json:"r" msgpack:"r"`
}

// WorldSnapshot is the full world-object state sent in init packets
type WorldSnapshot struct {
	Foods     []FoodState     `json:"foods" msgpack:"foods"`
	Obstacles []ObstacleState `json:"obstacles" msgpack:"obstacles"`
	Chests    []ChestState    `json:"chests" msgpack:"chests"`
	Items     []ItemState     `json:"items" msgpack:"items"`
	Nebulas   []NebulaState   `json:"nebulas" msgpack:"nebulas"`
}

// WorldDelta carries incremental add/remove lists between broadcasts
type WorldDelta struct {
	FoodsAdded    []FoodState `json:"fa,omitempty" msgpack:"fa"`
	FoodsRemoved  []string    `json:"fr,omitempty" msgpack:"fr"`
	ChestsRemoved []string    `json:"cr,omitempty" msgpack:"cr"`
	ItemsAdded    []ItemState `json:"ia,omitempty" msgpack:"ia"`
	ItemsRemoved  []string    `json:"ir,omitempty" msgpack:"ir"`
}

// UpdateState is the per-broadcast snapshot, msgpack-encoded as a binary
// frame. Only alive-state and deltas travel at the broadcast rate.
type UpdateState struct {
	T           string            `json:"t" msgpack:"t"` // update or arenaUpdate
	Timestamp   int64             `json:"ts" msgpack:"ts"`
	Tick        uint64            `json:"tick" msgpack:"tick"`
	Players     []PlayerState     `json:"p" msgpack:"p"`
	Projectiles []ProjectileState `json:"pr" msgpack:"pr"`
	Explosions  []ExplosionState  `json:"ex,omitempty" msgpack:"ex"`
	Zone        *ZoneState        `json:"z,omitempty" msgpack:"z"`
	Delta       WorldDelta        `json:"d" msgpack:"d"`
}

// InitMsg is sent once when a player enters a room
type InitMsg struct {
	SelfID   string        `json:"id"`
	RoomID   string        `json:"room"`
	Mode     string        `json:"mode"`
	Self     PlayerState   `json:"self"`
	Players  []PlayerState `json:"players"`
	World    WorldSnapshot `json:"world"`
	Zone     *ZoneState    `json:"zone,omitempty"`
	MapSize  float64       `json:"mapSize"`
	TickRate int           `json:"tickRate"`
}

// PlayerDiedMsg announces a death
type PlayerDiedMsg struct {
	VictimID   string `json:"vid"`
	KillerID   string `json:"kid"`
	KillerName string `json:"kn"`
	Score      int    `json:"sc"`
	Rank       int    `json:"rank,omitempty"` // remaining alive count at death, arena only
}

// PlayerDamagedMsg reports a damage event with its source
type PlayerDamagedMsg struct {
	ID     string `json:"id"`
	Health int    `json:"hp"`
	Source string `json:"src"`
}

// ArenaStatusMsg reports the waiting room's state (also used for rejections)
type ArenaStatusMsg struct {
	RoomID     string `json:"room"`
	Status     string `json:"status"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	WaitMs     int64  `json:"waitMs"`
	Error      string `json:"error,omitempty"`
}

// ArenaCountdownMsg is the descending pre-match broadcast
type ArenaCountdownMsg struct {
	Seconds int `json:"s"`
}

// ArenaStartMsg announces the match start
type ArenaStartMsg struct {
	RoomID     string `json:"room"`
	Players    int    `json:"players"`
	DurationMs int64  `json:"durationMs"`
}

// ArenaVictoryMsg announces the winner
type ArenaVictoryMsg struct {
	WinnerID   string `json:"wid"`
	WinnerName string `json:"wn"`
	Score      int    `json:"sc"`
}

// ArenaEndMsg announces a match end (with or without a winner)
type ArenaEndMsg struct {
	Reason string `json:"reason"`
}

// ItemPickedUpMsg reports an item collection
type ItemPickedUpMsg struct {
	PlayerID string `json:"id"`
	ItemType int    `json:"tp"`
}

// UserDataUpdateMsg delivers profile delta fields after an async save
type UserDataUpdateMsg struct {
	Coins       int      `json:"coins"`
	HighScore   int      `json:"highScore"`
	TotalKills  int      `json:"totalKills"`
	TotalDeaths int      `json:"totalDeaths"`
	ArenaWins   int      `json:"arenaWins"`
	ArenaTop2   int      `json:"arenaTop2"`
	ArenaTop3   int      `json:"arenaTop3"`
	Equipped    string   `json:"equippedSkin"`
	OwnedSkins  []string `json:"ownedSkins"`
}

// ProfileDataMsg answers a profile request
type ProfileDataMsg struct {
	Username string            `json:"username"`
	Data     UserDataUpdateMsg `json:"data"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
