package main

import (
	"sync"
	"testing"
)

// mockClient captures outbound traffic for assertions
type mockClient struct {
	mu   sync.Mutex
	msgs []Envelope
	bins [][]byte
}

func (m *mockClient) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if env, ok := msg.(Envelope); ok {
		m.msgs = append(m.msgs, env)
	}
}

func (m *mockClient) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bins = append(m.bins, data)
}

func (m *mockClient) count(msgType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, env := range m.msgs {
		if env.T == msgType {
			n++
		}
	}
	return n
}

func (m *mockClient) last(msgType string) (Envelope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.msgs) - 1; i >= 0; i-- {
		if m.msgs[i].T == msgType {
			return m.msgs[i], true
		}
	}
	return Envelope{}, false
}

// testMode is a minimal always-playing mode with no bots
var testMode = ModePolicy{Name: "test", MaxPlayers: 10}

func newTestRoom() *Room {
	return NewRoom("room1", testMode, nil)
}

func addTestPlayer(t *testing.T, r *Room, name string) (*Player, *mockClient) {
	t.Helper()
	mc := &mockClient{}
	p, err := r.AddPlayer(name, 0, "", mc)
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	return p, mc
}

func TestRoomAddRemovePlayer(t *testing.T) {
	r := newTestRoom()
	p, mc := addTestPlayer(t, r, "Alpha")

	if r.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", r.PlayerCount())
	}
	if mc.count(MsgInit) != 1 {
		t.Error("joining player should receive init")
	}

	r.RemovePlayer(p.ID)
	if r.PlayerCount() != 0 {
		t.Errorf("expected 0 players, got %d", r.PlayerCount())
	}
}

func TestRoomInitSnapshot(t *testing.T) {
	r := newTestRoom()
	_, mc1 := addTestPlayer(t, r, "Alpha")
	_, _ = addTestPlayer(t, r, "Beta")

	env, ok := mc1.last(MsgInit)
	if !ok {
		t.Fatal("no init message")
	}
	init := env.Data.(InitMsg)
	if init.RoomID != r.ID || init.Mode != "test" {
		t.Error("init room identity mismatch")
	}
	if len(init.World.Foods) != FoodTargetCount {
		t.Error("init should carry the full world snapshot")
	}
	if mc1.count(MsgPlayerJoin) != 1 {
		t.Error("existing player should see the second join")
	}
}

func TestRoomInputBuffering(t *testing.T) {
	r := newTestRoom()
	p, _ := addTestPlayer(t, r, "Alpha")

	r.HandleInput(p.ID, InputMsg{Right: true, AimX: 500, AimY: 0})
	if !p.Input.Right || p.Input.AimX != 500 {
		t.Error("input snapshot not buffered")
	}

	x := p.X
	r.update()
	if p.X <= x {
		t.Error("buffered input should move the player on the next tick")
	}
}

func TestRoomAttackProducesProjectiles(t *testing.T) {
	r := newTestRoom()
	p, _ := addTestPlayer(t, r, "Alpha")

	r.QueueAttack(p.ID)
	r.update()
	if len(r.projectiles) != 1 {
		t.Errorf("expected 1 projectile, got %d", len(r.projectiles))
	}
	if p.AttackQueued {
		t.Error("attack flag should be consumed")
	}
}

func TestCollectFoodAwardsScoreAndDelta(t *testing.T) {
	r := newTestRoom()
	p, _ := addTestPlayer(t, r, "Alpha")

	var f *Food
	for _, food := range r.world.Foods {
		f = food
		break
	}
	r.resolver.CollectFood(p, f)

	if p.Score != XPPerFood {
		t.Errorf("expected score %d, got %d", XPPerFood, p.Score)
	}
	if _, ok := r.world.Foods[f.ID]; ok {
		t.Error("food should be removed")
	}
	d := r.world.ConsumeDeltas()
	found := false
	for _, id := range d.FoodsRemoved {
		if id == f.ID {
			found = true
		}
	}
	if !found {
		t.Error("removal should appear in the broadcast delta")
	}
}

func TestPistolKillSequence(t *testing.T) {
	r := newTestRoom()
	killer, _ := addTestPlayer(t, r, "Killer")
	victim, _ := addTestPlayer(t, r, "Victim")

	itemsBefore := len(r.world.Items)
	def := Weapons[WeaponPistol]

	// 100 health / 15 damage: six hits leave the victim standing
	for i := 0; i < 6; i++ {
		proj := NewProjectile(killer, 0, def, r.now)
		r.resolver.HitPlayer(proj, victim)
	}
	if victim.Dead {
		t.Fatal("victim should survive six pistol hits")
	}
	if victim.Health != 100-6*def.Damage {
		t.Errorf("expected %d health, got %d", 100-6*def.Damage, victim.Health)
	}

	// The seventh kills
	proj := NewProjectile(killer, 0, def, r.now)
	r.resolver.HitPlayer(proj, victim)
	if !victim.Dead {
		t.Fatal("victim should die on the seventh hit")
	}

	if killer.Score != KillScore || killer.Kills != 1 {
		t.Errorf("killer should get %d score and 1 kill, got %d/%d",
			KillScore, killer.Score, killer.Kills)
	}
	if killer.Coins != 0 {
		t.Error("kills should never credit coins directly")
	}
	if len(r.world.Items) != itemsBefore+DeathDropCount {
		t.Errorf("death should drop exactly %d item(s)", DeathDropCount)
	}

	died := 0
	for _, env := range r.events {
		if env.T == MsgPlayerDied {
			died++
		}
	}
	if died != 1 {
		t.Errorf("expected exactly one death event, got %d", died)
	}
}

func TestDeathPathIdempotent(t *testing.T) {
	r := newTestRoom()
	killer, _ := addTestPlayer(t, r, "Killer")
	victim, _ := addTestPlayer(t, r, "Victim")
	itemsBefore := len(r.world.Items)

	victim.Health = 0
	r.resolver.HandlePlayerDeath(victim, killer.ID, killer.Name)
	r.resolver.HandlePlayerDeath(victim, killer.ID, killer.Name)

	if killer.Score != KillScore || killer.Kills != 1 {
		t.Error("double death call should credit the kill once")
	}
	if len(r.world.Items) != itemsBefore+DeathDropCount {
		t.Error("double death call should drop loot once")
	}
	died := 0
	for _, env := range r.events {
		if env.T == MsgPlayerDied {
			died++
		}
	}
	if died != 1 {
		t.Errorf("expected one death event, got %d", died)
	}
}

func TestZoneDamageAccumulation(t *testing.T) {
	r := newTestRoom()
	p, mc := addTestPlayer(t, r, "Alpha")
	p.X, p.Y = 500, 0
	r.zone = &Zone{X: -1500, Y: 0, Radius: 100, State: ZoneWaiting, NextActionAt: 1e9}

	// Just under the damage interval: unharmed
	for i := 0; i < 170; i++ {
		r.update()
	}
	if p.Health != PlayerMaxHealth {
		t.Fatalf("no damage expected before the interval, health=%d", p.Health)
	}

	// Crossing three full seconds of exposure costs one hit point
	for i := 0; i < 25; i++ {
		r.update()
	}
	if p.Health != PlayerMaxHealth-ZoneDamage {
		t.Errorf("expected %d health, got %d", PlayerMaxHealth-ZoneDamage, p.Health)
	}
	if mc.count(MsgPlayerDamaged) != 1 {
		t.Errorf("expected one damage event, got %d", mc.count(MsgPlayerDamaged))
	}
	env, _ := mc.last(MsgPlayerDamaged)
	if env.Data.(PlayerDamagedMsg).Source != DamageSourceZone {
		t.Error("damage source should be the zone")
	}
}

func TestZoneExposureResetsOnReentry(t *testing.T) {
	r := newTestRoom()
	p, _ := addTestPlayer(t, r, "Alpha")
	p.X, p.Y = 500, 0
	r.zone = &Zone{X: -1500, Y: 0, Radius: 100, State: ZoneWaiting, NextActionAt: 1e9}

	for i := 0; i < 120; i++ {
		r.update()
	}
	if p.ZoneTime == 0 {
		t.Fatal("exposure should accumulate outside the zone")
	}

	// Step back inside: the clock resets
	r.zone.X, r.zone.Y = p.X, p.Y
	r.update()
	if p.ZoneTime != 0 {
		t.Error("re-entering the zone should reset exposure")
	}
}

func TestArenaLobbyLifecycle(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	_, mc := addTestPlayer(t, r, "Solo")

	if r.Status() != RoomWaiting {
		t.Fatal("arena should open in the waiting lobby")
	}

	// Sit out the whole lobby wait, then the countdown
	for i := 0; i < int(ArenaWaitTime*TickRate)+5; i++ {
		r.update()
	}
	if r.Status() != RoomCountdown {
		t.Fatalf("expected countdown after the wait, got %v", r.Status())
	}
	if len(r.players) != ArenaMaxPlayers {
		t.Errorf("lobby should fill with bots, got %d players", len(r.players))
	}

	for i := 0; i < ArenaCountdownSecs*TickRate+5; i++ {
		r.update()
	}
	if r.Status() != RoomPlaying {
		t.Fatalf("expected playing after countdown, got %v", r.Status())
	}
	if r.zone == nil {
		t.Error("arena match should have a zone")
	}
	if mc.count(MsgArenaCountdown) != ArenaCountdownSecs {
		t.Errorf("expected %d countdown broadcasts, got %d",
			ArenaCountdownSecs, mc.count(MsgArenaCountdown))
	}
	if mc.count(MsgArenaStart) != 1 {
		t.Errorf("expected one start broadcast, got %d", mc.count(MsgArenaStart))
	}
	if mc.count(MsgArenaStatus) == 0 {
		t.Error("waiting lobby should broadcast status updates")
	}
}

func TestArenaEmptyLobbyDestroyedAtDeadline(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)

	for i := 0; i < int(ArenaWaitTime*TickRate)+5; i++ {
		r.update()
	}
	if r.Status() != RoomDestroyed {
		t.Errorf("a lobby nobody joined should retire at the deadline, got %v", r.Status())
	}
}

func TestArenaLobbyStatusCadence(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	_, mc := addTestPlayer(t, r, "Solo")

	for i := 0; i < 10*TickRate+5; i++ {
		r.update()
	}
	if got := mc.count(MsgArenaStatus); got != 10 {
		t.Errorf("expected 10 status broadcasts over 10s, got %d", got)
	}
}

func TestArenaFullLobbyStartsEarly(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	for i := 0; i < ArenaMaxPlayers; i++ {
		addTestPlayer(t, r, "P")
	}
	if r.Status() != RoomCountdown {
		t.Errorf("full lobby should start counting down, got %v", r.Status())
	}

	_, err := r.AddPlayer("Late", 0, "", &mockClient{})
	if err != ErrRoomClosed {
		t.Errorf("expected ErrRoomClosed, got %v", err)
	}
}

func TestArenaCountdownRejectsJoins(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	addTestPlayer(t, r, "Early")
	r.ForceCountdown()

	// Seats are free, but the bots already claimed them
	_, err := r.AddPlayer("Late", 0, "", &mockClient{})
	if err != ErrRoomClosed {
		t.Errorf("expected ErrRoomClosed during countdown, got %v", err)
	}
	if len(r.players) != ArenaMaxPlayers {
		t.Errorf("roster should stay at %d, got %d", ArenaMaxPlayers, len(r.players))
	}
}

func TestArenaLastStandingWins(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	winner, mc := addTestPlayer(t, r, "Winner")
	loser, _ := addTestPlayer(t, r, "Loser")
	r.ForceCountdown()
	for i := 0; i < ArenaCountdownSecs*TickRate+5; i++ {
		r.update()
	}
	if r.Status() != RoomPlaying {
		t.Fatalf("expected playing, got %v", r.Status())
	}

	// Eliminate everyone but the winner
	r.mu.Lock()
	for _, p := range r.players {
		if p.ID != winner.ID && p.ID != loser.ID {
			p.Health = 0
			r.resolver.HandlePlayerDeath(p, winner.ID, winner.Name)
		}
	}
	loser.Health = 0
	r.resolver.HandlePlayerDeath(loser, winner.ID, winner.Name)
	r.mu.Unlock()

	r.update()
	if r.Status() != RoomEnded {
		t.Fatalf("expected ended, got %v", r.Status())
	}
	env, ok := mc.last(MsgArenaVictory)
	if !ok {
		t.Fatal("no victory broadcast")
	}
	if env.Data.(ArenaVictoryMsg).WinnerID != winner.ID {
		t.Error("wrong winner announced")
	}

	// The room tears itself down after the linger window
	for i := 0; i < int(RoomDestroyDelay*TickRate)+5; i++ {
		r.update()
	}
	if r.Status() != RoomDestroyed {
		t.Errorf("expected destroyed, got %v", r.Status())
	}
}

func TestArenaTimeUpHighestScoreWins(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	low, _ := addTestPlayer(t, r, "Low")
	high, mc := addTestPlayer(t, r, "High")
	r.ForceCountdown()
	for i := 0; i < ArenaCountdownSecs*TickRate+5; i++ {
		r.update()
	}

	low.AddScore(10)
	high.AddScore(500)
	r.mu.Lock()
	r.endsAt = r.now
	r.mu.Unlock()

	r.update()
	if r.Status() != RoomEnded {
		t.Fatalf("expected ended, got %v", r.Status())
	}
	env, ok := mc.last(MsgArenaVictory)
	if !ok {
		t.Fatal("no victory broadcast")
	}
	if env.Data.(ArenaVictoryMsg).WinnerID != high.ID {
		t.Error("highest-scoring survivor should win on time up")
	}
}

func TestArenaBotsCannotWin(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	human, mc := addTestPlayer(t, r, "Human")
	r.ForceCountdown()
	for i := 0; i < ArenaCountdownSecs*TickRate+5; i++ {
		r.update()
	}

	// The only human dies while bots remain: match ends with no winner
	r.mu.Lock()
	human.Health = 0
	r.resolver.HandlePlayerDeath(human, "", ZoneKillerName)
	r.mu.Unlock()
	r.update()

	if r.Status() != RoomEnded {
		t.Fatalf("expected ended, got %v", r.Status())
	}
	if mc.count(MsgArenaVictory) != 0 {
		t.Error("a bot must never be announced as winner")
	}
	if mc.count(MsgArenaEnd) != 1 {
		t.Error("match end should still be broadcast")
	}
}

func TestArenaRejectsJoinAfterStart(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	addTestPlayer(t, r, "Early")
	r.ForceCountdown()
	for i := 0; i < ArenaCountdownSecs*TickRate+5; i++ {
		r.update()
	}

	_, err := r.AddPlayer("Late", 0, "", &mockClient{})
	if err != ErrRoomClosed {
		t.Errorf("expected ErrRoomClosed, got %v", err)
	}
}

func TestDeadBotsPrunedAfterDelay(t *testing.T) {
	r := newTestRoom()
	r.mu.Lock()
	bot := NewBot(0, 0)
	r.players[bot.ID] = bot
	bot.Health = 0
	r.resolver.HandlePlayerDeath(bot, "", ZoneKillerName)
	r.mu.Unlock()

	if _, ok := r.players[bot.ID]; !ok {
		t.Fatal("dead bot should linger briefly")
	}
	for i := 0; i < int(BotRemoveDelay*TickRate)+5; i++ {
		r.update()
	}
	if _, ok := r.players[bot.ID]; ok {
		t.Error("dead bot should be pruned after the linger window")
	}
}

func TestEndlessRespawn(t *testing.T) {
	r := NewRoom("e1", EndlessMode, nil)
	p, _ := addTestPlayer(t, r, "Alpha")
	p.AddScore(1000)
	p.Health = 0
	r.resolver.HandlePlayerDeath(p, "", "other")

	r.RespawnPlayer(p.ID, "skin_ice")
	if p.Dead {
		t.Error("endless mode should allow respawn")
	}
	if p.Score != 100 {
		t.Errorf("respawn should keep 10%% of score, got %d", p.Score)
	}
	if p.SkinID != "skin_ice" {
		t.Errorf("respawn should apply the requested skin, got %q", p.SkinID)
	}

	// Respawning without a skin keeps the current one
	p.Health = 0
	r.resolver.HandlePlayerDeath(p, "", "other")
	r.RespawnPlayer(p.ID, "")
	if p.SkinID != "skin_ice" {
		t.Errorf("empty skin should leave the cosmetic alone, got %q", p.SkinID)
	}
}

func TestArenaNoRespawn(t *testing.T) {
	r := NewRoom("a1", ArenaMode, nil)
	p, _ := addTestPlayer(t, r, "Alpha")
	p.Dead = true
	r.RespawnPlayer(p.ID, "")
	if !p.Dead {
		t.Error("arena mode must not allow respawn")
	}
}

func TestUseItemFromSlot(t *testing.T) {
	r := newTestRoom()
	p, _ := addTestPlayer(t, r, "Alpha")
	p.Inventory[0] = ItemShield

	r.UseItem(p.ID)
	if p.Inventory[0] != ItemNone {
		t.Error("used item should leave its slot")
	}
	if p.ShieldUntil <= r.now {
		t.Error("shield should be active")
	}

	// Bomb detonates in place
	p.Inventory[1] = ItemBomb
	r.SelectSlot(p.ID, 1)
	r.UseItem(p.ID)
	if len(r.explosions) != 1 {
		t.Errorf("bomb should spawn an explosion, got %d", len(r.explosions))
	}
}

func TestExplosionLingersForBroadcast(t *testing.T) {
	r := newTestRoom()
	p, mc := addTestPlayer(t, r, "Alpha")
	p.Inventory[0] = ItemBomb
	r.UseItem(p.ID)
	if len(r.explosions) != 1 {
		t.Fatal("bomb should spawn an explosion")
	}

	// Well past the damage window, still inside the linger
	for i := 0; i < 6; i++ {
		r.update()
	}
	if len(r.explosions) != 1 {
		t.Fatal("spent blast should stay visible for a few frames")
	}

	mc.mu.Lock()
	seen := false
	for _, bin := range mc.bins {
		if s, err := unpackState(bin); err == nil && len(s.Explosions) == 1 {
			seen = true
		}
	}
	mc.mu.Unlock()
	if !seen {
		t.Error("a broadcast frame should carry the explosion")
	}

	for i := 0; i < int(ExplosionLinger*TickRate)+5; i++ {
		r.update()
	}
	if len(r.explosions) != 0 {
		t.Error("blast should be pruned after the linger window")
	}
}

func TestBroadcastCadence(t *testing.T) {
	r := newTestRoom()
	_, mc := addTestPlayer(t, r, "Alpha")

	for i := 0; i < TickRate; i++ {
		r.update()
	}
	mc.mu.Lock()
	bins := len(mc.bins)
	mc.mu.Unlock()
	if bins != BroadcastRate {
		t.Errorf("expected %d binary frames per second, got %d", BroadcastRate, bins)
	}
}
