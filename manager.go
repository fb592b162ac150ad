package main

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	RoomMintInterval = 60 * time.Second
	maxActiveRooms   = 32
)

// RoomManager owns every room: the shared endless room, exactly one open
// arena lobby, and however many arena matches are in flight
type RoomManager struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	endless   *Room
	openArena *Room
	profiles  *ProfileStore

	stop chan struct{}
	once sync.Once
}

// NewRoomManager creates the manager with its endless room and first arena
// lobby already running
func NewRoomManager(profiles *ProfileStore) *RoomManager {
	m := &RoomManager{
		rooms:    make(map[string]*Room),
		profiles: profiles,
		stop:     make(chan struct{}),
	}
	m.mu.Lock()
	m.endless = m.spawnRoomLocked(EndlessMode)
	m.openArena = m.spawnRoomLocked(ArenaMode)
	m.mu.Unlock()
	return m
}

// Run drives the mint cycle: on each interval an occupied lobby is pushed
// into countdown and replaced with a fresh one, so waiting players never
// stall past the cycle.
func (m *RoomManager) Run() {
	ticker := time.NewTicker(RoomMintInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mint()
		case <-m.stop:
			return
		}
	}
}

// Stop halts the mint cycle and tears down every room
func (m *RoomManager) Stop() {
	m.once.Do(func() { close(m.stop) })
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}

func (m *RoomManager) mint() {
	m.mu.Lock()
	defer m.mu.Unlock()

	open := m.openArena
	if open == nil || open.Status() != RoomWaiting {
		m.openArena = m.spawnRoomLocked(ArenaMode)
		return
	}
	if open.PlayerCount() > 0 {
		open.ForceCountdown()
		m.openArena = m.spawnRoomLocked(ArenaMode)
		return
	}
	// An empty lobby is retired so the fresh one opens with a full wait
	m.openArena = m.spawnRoomLocked(ArenaMode)
	open.Destroy()
}

func (m *RoomManager) spawnRoomLocked(mode ModePolicy) *Room {
	if len(m.rooms) >= maxActiveRooms {
		log.Printf("room cap reached (%d), refusing to spawn", maxActiveRooms)
		return nil
	}
	r := NewRoom(uuid.NewString(), mode, m.profiles)
	r.SetOnDestroy(m.onRoomDestroyed)
	m.rooms[r.ID] = r
	go r.Run()
	log.Printf("room %s spawned (%s)", r.ID, mode.Name)
	return r
}

func (m *RoomManager) onRoomDestroyed(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, r.ID)
	if m.openArena == r {
		m.openArena = m.spawnRoomLocked(ArenaMode)
	}
	if m.endless == r {
		m.endless = m.spawnRoomLocked(EndlessMode)
	}
	log.Printf("room %s destroyed (%s)", r.ID, r.mode.Name)
}

// JoinEndless routes a player into the shared endless room
func (m *RoomManager) JoinEndless(name string, accountID int64, skin string, client Broadcaster) (*Room, *Player, error) {
	m.mu.RLock()
	r := m.endless
	m.mu.RUnlock()
	if r == nil {
		return nil, nil, ErrRoomClosed
	}
	p, err := r.AddPlayer(name, accountID, skin, client)
	if err != nil {
		return nil, nil, err
	}
	return r, p, nil
}

// JoinArena routes a player into the open lobby, minting a replacement the
// moment the current one closes under them
func (m *RoomManager) JoinArena(name string, accountID int64, skin string, client Broadcaster) (*Room, *Player, error) {
	for attempt := 0; attempt < 2; attempt++ {
		m.mu.Lock()
		r := m.openArena
		if r == nil || r.Status() != RoomWaiting {
			r = m.spawnRoomLocked(ArenaMode)
			m.openArena = r
		}
		m.mu.Unlock()
		if r == nil {
			return nil, nil, ErrRoomClosed
		}

		p, err := r.AddPlayer(name, accountID, skin, client)
		if err == nil {
			return r, p, nil
		}
		if err == ErrRoomFull {
			m.mu.Lock()
			if m.openArena == r {
				m.openArena = m.spawnRoomLocked(ArenaMode)
			}
			m.mu.Unlock()
			continue
		}
		return nil, nil, err
	}
	return nil, nil, ErrRoomFull
}

// GetRoom looks a room up by ID
func (m *RoomManager) GetRoom(id string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[id]
}

// RoomCount returns the number of live rooms
func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
