package main

import (
	"errors"
	"sync"
	"time"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 20 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	ArenaMaxPlayers    = 10
	ArenaMinPlayers    = 2
	ArenaWaitTime      = 30.0 // seconds the lobby holds before force-starting
	ArenaCountdownSecs = 5
	ArenaMatchDuration = 300.0
	RoomDestroyDelay   = 5.0 // seconds an ended arena lingers before teardown

	EndlessMaxPlayers = 20
	EndlessBotFloor   = 4 // endless rooms keep at least this many bots around

	maxProjectilesPerRoom = 600
)

// RoomStatus is the room lifecycle state
type RoomStatus int

const (
	RoomWaiting RoomStatus = iota
	RoomCountdown
	RoomPlaying
	RoomEnded
	RoomDestroyed
)

func (s RoomStatus) String() string {
	switch s {
	case RoomWaiting:
		return "waiting"
	case RoomCountdown:
		return "countdown"
	case RoomPlaying:
		return "playing"
	case RoomEnded:
		return "ended"
	}
	return "destroyed"
}

// ModePolicy captures everything that differs between endless and arena
// rooms, so the loop itself stays mode-agnostic
type ModePolicy struct {
	Name         string
	Arena        bool // lobby/countdown/zone/win-condition lifecycle
	UseZone      bool
	AllowRespawn bool
	MaxPlayers   int
	BotFloor     int // bots maintained while playing (endless only)
}

var (
	EndlessMode = ModePolicy{
		Name:         "endless",
		AllowRespawn: true,
		MaxPlayers:   EndlessMaxPlayers,
		BotFloor:     EndlessBotFloor,
	}
	ArenaMode = ModePolicy{
		Name:       "arena",
		Arena:      true,
		UseZone:    true,
		MaxPlayers: ArenaMaxPlayers,
	}
)

// Broadcaster is the outbound half of a connection, implemented by Client
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

var (
	ErrRoomFull   = errors.New("room is full")
	ErrRoomClosed = errors.New("room is not accepting players")
)

// Room is one independent simulation: its own loop, world, players and
// lifecycle. All state is guarded by mu; the loop goroutine and connection
// handlers both take it.
type Room struct {
	ID   string
	mode ModePolicy

	mu          sync.RWMutex
	status      RoomStatus
	players     map[string]*Player
	clients     map[string]Broadcaster
	projectiles map[string]*Projectile
	explosions  []*Explosion
	world       *World
	zone        *Zone

	detector *CollisionDetector
	resolver *CollisionResolver
	profiles *ProfileStore // nil disables persistence

	now  float64 // room clock, seconds since creation
	tick uint64

	waitDeadline  float64
	countdownLeft int
	nextSecondAt  float64 // cadence for status/countdown broadcasts
	endsAt        float64
	destroyAt     float64

	events []Envelope // queued per-tick, flushed before each broadcast

	running   bool
	stop      chan struct{}
	onDestroy func(*Room)
}

// NewRoom creates a room for the given mode. Endless rooms begin playing
// immediately; arena rooms open in the waiting lobby.
func NewRoom(id string, mode ModePolicy, profiles *ProfileStore) *Room {
	r := &Room{
		ID:          id,
		mode:        mode,
		players:     make(map[string]*Player),
		clients:     make(map[string]Broadcaster),
		projectiles: make(map[string]*Projectile),
		world:       NewWorld(),
		profiles:    profiles,
		stop:        make(chan struct{}),
	}
	r.resolver = &CollisionResolver{room: r}
	r.detector = NewCollisionDetector(r, r.resolver)

	if mode.Arena {
		r.status = RoomWaiting
		r.waitDeadline = ArenaWaitTime
		r.nextSecondAt = 1
	} else {
		r.status = RoomPlaying
		r.fillBots(mode.BotFloor)
	}
	return r
}

// SetOnDestroy registers the teardown callback (the manager's deregistration)
func (r *Room) SetOnDestroy(fn func(*Room)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDestroy = fn
}

// Run drives the room at the tick rate until Stop or self-destruction
func (r *Room) Run() {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.update()
		case <-r.stop:
			return
		}
	}
}

// Stop terminates the loop
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Room) stopLocked() {
	if r.running {
		r.running = false
		close(r.stop)
	}
}

// Status returns the current lifecycle state
func (r *Room) Status() RoomStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// PlayerCount returns the number of human players
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.humanCount()
}

func (r *Room) humanCount() int {
	n := 0
	for _, p := range r.players {
		if !p.IsBot() {
			n++
		}
	}
	return n
}

func (r *Room) aliveCount() int {
	n := 0
	for _, p := range r.players {
		if !p.Dead {
			n++
		}
	}
	return n
}

// AddPlayer admits a human player and sends the init packet. Arena rooms
// only admit while waiting: once the countdown fills the seats with bots
// no further joins are accepted. Endless rooms admit any time.
func (r *Room) AddPlayer(name string, accountID int64, skin string, client Broadcaster) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode.Arena && r.status != RoomWaiting {
		return nil, ErrRoomClosed
	}
	if r.status == RoomEnded || r.status == RoomDestroyed {
		return nil, ErrRoomClosed
	}
	if r.humanCount() >= r.mode.MaxPlayers {
		return nil, ErrRoomFull
	}

	x, y := r.world.SpawnPosition(PlayerBaseRadius)
	p := NewPlayer(GenerateID(4), name, x, y)
	p.AccountID = accountID
	p.SkinID = skin
	r.players[p.ID] = p
	r.clients[p.ID] = client

	client.SendJSON(Envelope{T: MsgInit, Data: r.initMsg(p)})
	r.broadcastMsgExcept(p.ID, Envelope{T: MsgPlayerJoin, Data: p.ToState(r.now)})

	// A full lobby starts counting down without waiting out the timer
	if r.status == RoomWaiting && r.humanCount() >= r.mode.MaxPlayers {
		r.beginCountdown()
	}
	return p, nil
}

// RemovePlayer drops a player (disconnect or arenaLeave)
func (r *Room) RemovePlayer(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return
	}
	delete(r.players, id)
	delete(r.clients, id)
	r.broadcastMsg(Envelope{T: MsgPlayerLeave, Data: PlayerState{ID: p.ID, Name: p.Name}})

	// Leaving mid-match can decide it
	if r.mode.Arena && r.status == RoomPlaying {
		r.checkGameEnd()
	}
}

// HandleInput buffers a movement/aim snapshot; it is consumed on the next tick
func (r *Room) HandleInput(playerID string, in InputMsg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok || p.Dead {
		return
	}
	p.Input = Input{
		Up: in.Up, Down: in.Down, Left: in.Left, Right: in.Right,
		AimX: in.AimX, AimY: in.AimY,
	}
}

// QueueAttack requests a shot on the next tick
func (r *Room) QueueAttack(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok && !p.Dead {
		p.AttackQueued = true
	}
}

// QueueDash requests a dash on the next tick
func (r *Room) QueueDash(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[playerID]; ok && !p.Dead {
		p.DashQueued = true
	}
}

// SelectSlot switches the active inventory slot
func (r *Room) SelectSlot(playerID string, idx int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok || idx < 0 || idx >= InventorySlots {
		return
	}
	p.SelectedSlot = idx
}

// UseItem consumes the item in the selected slot
func (r *Room) UseItem(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok || p.Dead {
		return
	}
	t := p.Inventory[p.SelectedSlot]
	if t == ItemNone {
		return
	}
	if t == ItemBomb {
		r.addExplosion(NewExplosion(p.X, p.Y, p.ID, p.Name, r.now))
		p.Inventory[p.SelectedSlot] = ItemNone
		return
	}
	if ApplyItem(t, p, r.now) {
		p.Inventory[p.SelectedSlot] = ItemNone
	}
}

// RespawnPlayer brings a dead player back, endless mode only. A non-empty
// skin swaps the cosmetic for the new life.
func (r *Room) RespawnPlayer(playerID, skin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mode.AllowRespawn {
		return
	}
	p, ok := r.players[playerID]
	if !ok || !p.Dead {
		return
	}
	if skin != "" {
		p.SkinID = skin
	}
	x, y := r.world.SpawnPosition(PlayerBaseRadius)
	p.Respawn(r.now, x, y)
	r.broadcastMsg(Envelope{T: MsgPlayerJoin, Data: p.ToState(r.now)})
}

// ForceCountdown starts the countdown regardless of occupancy (manager mint
// cycle). No-op unless the room is still waiting with at least one human.
func (r *Room) ForceCountdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == RoomWaiting && r.humanCount() > 0 {
		r.beginCountdown()
	}
}

// update runs one room tick
func (r *Room) update() {
	r.mu.Lock()
	defer r.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	r.now += dt
	r.tick++

	switch r.status {
	case RoomWaiting:
		r.updateWaiting()
	case RoomCountdown:
		r.updateCountdown()
	case RoomPlaying:
		r.simulate(dt)
	case RoomEnded:
		if r.now >= r.destroyAt {
			r.destroyLocked()
			return
		}
	}

	if r.tick%BroadcastEvery == 0 {
		r.flushEvents()
		if r.status == RoomPlaying {
			r.broadcastState()
		}
	}
}

func (r *Room) updateWaiting() {
	if r.now < r.nextSecondAt {
		return
	}
	r.nextSecondAt += 1

	if r.now >= r.waitDeadline {
		if r.humanCount() > 0 {
			r.beginCountdown()
		} else {
			// Nobody showed up; the lobby retires instead of waiting
			// forever on a stale deadline
			r.destroyLocked()
		}
		return
	}
	r.broadcastMsg(Envelope{T: MsgArenaStatus, Data: r.statusMsg("")})
}

// beginCountdown fills empty seats with bots and starts the 5..1 cadence
func (r *Room) beginCountdown() {
	r.status = RoomCountdown
	r.fillBots(r.mode.MaxPlayers - len(r.players))
	r.countdownLeft = ArenaCountdownSecs
	r.nextSecondAt = r.now + 1
	r.broadcastMsg(Envelope{T: MsgArenaCountdown, Data: ArenaCountdownMsg{Seconds: r.countdownLeft}})
}

func (r *Room) updateCountdown() {
	if r.now < r.nextSecondAt {
		return
	}
	r.nextSecondAt += 1
	r.countdownLeft--
	if r.countdownLeft > 0 {
		r.broadcastMsg(Envelope{T: MsgArenaCountdown, Data: ArenaCountdownMsg{Seconds: r.countdownLeft}})
		return
	}
	r.beginMatch()
}

func (r *Room) beginMatch() {
	r.status = RoomPlaying
	if r.mode.UseZone {
		r.zone = NewZone(r.now)
	}
	r.endsAt = r.now + ArenaMatchDuration
	r.broadcastMsg(Envelope{T: MsgArenaStart, Data: ArenaStartMsg{
		RoomID:     r.ID,
		Players:    len(r.players),
		DurationMs: int64(ArenaMatchDuration * 1000),
	}})
}

// simulate advances the live game one tick in fixed order: AI, queued
// actions, movement, statics, collisions, zone, replenish, prune, end check
func (r *Room) simulate(dt float64) {
	for _, p := range r.players {
		p.Think(r.now, r.players, r.zone)
	}

	for _, p := range r.players {
		if p.DashQueued {
			p.Dash(r.now)
			p.DashQueued = false
		}
		if p.AttackQueued {
			if len(r.projectiles) < maxProjectilesPerRoom {
				for _, proj := range p.Attack(r.now) {
					r.projectiles[proj.ID] = proj
				}
			}
			p.AttackQueued = false
		}
	}

	for _, p := range r.players {
		p.Update(r.now, dt)
	}
	for _, proj := range r.projectiles {
		proj.Update(r.now, dt)
	}
	r.world.UpdateChests(dt)

	r.detector.Rebuild()
	r.detector.Run(r.now)

	if r.zone != nil {
		r.zone.Update(r.now, dt)
		r.applyZoneDamage(dt)
	}

	r.world.Replenish(r.now)
	r.prune()

	if r.mode.Arena {
		r.checkGameEnd()
	} else {
		r.topUpBots()
	}
}

// applyZoneDamage ticks exposure time for players outside the safe circle.
// Damage lands once per full interval of continuous exposure; re-entering
// resets the accumulator.
func (r *Room) applyZoneDamage(dt float64) {
	for _, p := range r.players {
		if p.Dead {
			continue
		}
		if r.zone.Contains(p.X, p.Y) {
			p.ZoneTime = 0
			continue
		}
		p.ZoneTime += dt
		if p.ZoneTime < ZoneDamageInterval {
			continue
		}
		p.ZoneTime -= ZoneDamageInterval
		died := p.TakeDamage(r.now, ZoneDamage)
		r.queueEvent(Envelope{T: MsgPlayerDamaged, Data: PlayerDamagedMsg{
			ID: p.ID, Health: p.Health, Source: DamageSourceZone,
		}})
		if died {
			r.resolver.HandlePlayerDeath(p, "", ZoneKillerName)
		}
	}
}

// prune compacts collections after the collision pass: spent projectiles,
// expired explosions, and dead bots past their linger window
func (r *Room) prune() {
	for id, proj := range r.projectiles {
		if !proj.Alive {
			delete(r.projectiles, id)
		}
	}

	kept := r.explosions[:0]
	for _, e := range r.explosions {
		if !e.Expired(r.now) {
			kept = append(kept, e)
		}
	}
	r.explosions = kept

	for id, p := range r.players {
		if p.IsBot() && p.Dead && r.now >= p.RemoveAt {
			delete(r.players, id)
			r.broadcastMsg(Envelope{T: MsgPlayerLeave, Data: PlayerState{ID: p.ID, Name: p.Name}})
		}
	}
}

// topUpBots keeps the endless room's bot population at the floor
func (r *Room) topUpBots() {
	bots := 0
	for _, p := range r.players {
		if p.IsBot() && !p.Dead {
			bots++
		}
	}
	if bots < r.mode.BotFloor {
		r.fillBots(r.mode.BotFloor - bots)
	}
}

func (r *Room) fillBots(n int) {
	for i := 0; i < n; i++ {
		x, y := r.world.SpawnPosition(PlayerBaseRadius)
		bot := NewBot(x, y)
		r.players[bot.ID] = bot
	}
}

// checkGameEnd evaluates the arena win conditions: last survivor standing,
// no humans left, or the match timer running out
func (r *Room) checkGameEnd() {
	if r.status != RoomPlaying {
		return
	}

	aliveHumans := make([]*Player, 0, 4)
	aliveBots := 0
	for _, p := range r.players {
		if p.Dead {
			continue
		}
		if p.IsBot() {
			aliveBots++
		} else {
			aliveHumans = append(aliveHumans, p)
		}
	}

	if r.now >= r.endsAt {
		r.endMatch(bestOf(aliveHumans), "timeUp")
		return
	}
	if len(aliveHumans) == 0 {
		// Bots cannot win; a match with no living humans just ends
		r.endMatch(nil, "eliminated")
		return
	}
	if len(aliveHumans) == 1 && aliveBots == 0 {
		r.endMatch(aliveHumans[0], "lastStanding")
	}
}

// bestOf returns the highest-scoring player of a slice, nil when empty
func bestOf(players []*Player) *Player {
	var best *Player
	for _, p := range players {
		if best == nil || p.Score > best.Score {
			best = p
		}
	}
	return best
}

func (r *Room) endMatch(winner *Player, reason string) {
	r.status = RoomEnded
	r.destroyAt = r.now + RoomDestroyDelay

	if winner != nil {
		r.broadcastMsg(Envelope{T: MsgArenaVictory, Data: ArenaVictoryMsg{
			WinnerID:   winner.ID,
			WinnerName: winner.Name,
			Score:      winner.Score,
		}})
		r.persistResult(winner, 1)
	}
	r.broadcastMsg(Envelope{T: MsgArenaEnd, Data: ArenaEndMsg{Reason: reason}})

	// Survivors who didn't win still get their run recorded
	for _, p := range r.players {
		if p != winner && !p.IsBot() && !p.Dead {
			r.persistResult(p, 0)
		}
	}
}

func (r *Room) destroyLocked() {
	if r.status == RoomDestroyed {
		return
	}
	r.status = RoomDestroyed
	r.stopLocked()
	if r.onDestroy != nil {
		go r.onDestroy(r)
	}
}

// Destroy tears the room down immediately (manager reaping an empty lobby)
func (r *Room) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked()
}

// addExplosion registers a blast for the explosion pass
func (r *Room) addExplosion(e *Explosion) {
	r.explosions = append(r.explosions, e)
}

// queueEvent defers a JSON event until the next broadcast flush
func (r *Room) queueEvent(msg Envelope) {
	r.events = append(r.events, msg)
}

func (r *Room) flushEvents() {
	if len(r.events) == 0 {
		return
	}
	for _, msg := range r.events {
		r.broadcastMsg(msg)
	}
	r.events = r.events[:0]
}

// persistDeath records a human player's finished run (death pathway)
func (r *Room) persistDeath(p *Player, rank int) {
	r.persistResultDied(p, rank, true)
}

func (r *Room) persistResult(p *Player, rank int) {
	r.persistResultDied(p, rank, false)
}

func (r *Room) persistResultDied(p *Player, rank int, died bool) {
	if r.profiles == nil || p.AccountID == 0 {
		return
	}
	r.profiles.RecordResult(p.AccountID, MatchResult{
		Score: p.Score,
		Kills: p.Kills,
		Coins: p.Coins,
		Died:  died,
		Rank:  rank,
		Arena: r.mode.Arena,
	})
}

func (r *Room) statusMsg(errText string) ArenaStatusMsg {
	waitMs := int64(0)
	if left := r.waitDeadline - r.now; left > 0 {
		waitMs = int64(left * 1000)
	}
	return ArenaStatusMsg{
		RoomID:     r.ID,
		Status:     r.status.String(),
		Players:    r.humanCount(),
		MaxPlayers: r.mode.MaxPlayers,
		WaitMs:     waitMs,
		Error:      errText,
	}
}

func (r *Room) initMsg(self *Player) InitMsg {
	msg := InitMsg{
		SelfID:   self.ID,
		RoomID:   r.ID,
		Mode:     r.mode.Name,
		Self:     self.ToState(r.now),
		Players:  make([]PlayerState, 0, len(r.players)),
		World:    r.world.Snapshot(),
		MapSize:  MapSize,
		TickRate: TickRate,
	}
	for _, p := range r.players {
		if p.ID != self.ID {
			msg.Players = append(msg.Players, p.ToState(r.now))
		}
	}
	if r.zone != nil {
		zs := r.zone.ToState()
		msg.Zone = &zs
	}
	return msg
}

// broadcastState packs the per-tick snapshot into a msgpack binary frame
func (r *Room) broadcastState() {
	state := UpdateState{
		T:           MsgUpdate,
		Timestamp:   time.Now().UnixMilli(),
		Tick:        r.tick,
		Players:     make([]PlayerState, 0, len(r.players)),
		Projectiles: make([]ProjectileState, 0, len(r.projectiles)),
		Delta:       r.world.ConsumeDeltas(),
	}
	if r.mode.Arena {
		state.T = MsgArenaUpdate
	}
	for _, p := range r.players {
		state.Players = append(state.Players, p.ToState(r.now))
	}
	for _, proj := range r.projectiles {
		state.Projectiles = append(state.Projectiles, proj.ToState())
	}
	for _, e := range r.explosions {
		state.Explosions = append(state.Explosions, e.ToState())
	}
	if r.zone != nil {
		zs := r.zone.ToState()
		state.Zone = &zs
	}

	data, err := packState(state)
	if err != nil {
		return
	}
	for _, client := range r.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a JSON event to every connected client
func (r *Room) broadcastMsg(msg Envelope) {
	for _, client := range r.clients {
		client.SendJSON(msg)
	}
}

func (r *Room) broadcastMsgExcept(skipID string, msg Envelope) {
	for id, client := range r.clients {
		if id != skipID {
			client.SendJSON(msg)
		}
	}
}

// sendTo targets one player's connection
func (r *Room) sendTo(playerID string, msg Envelope) {
	if client, ok := r.clients[playerID]; ok {
		client.SendJSON(msg)
	}
}
