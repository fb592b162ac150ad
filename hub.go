package main

import "sync"

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and routes them to rooms
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      *RoomManager

	// Connection limiting, accessed from HTTP handlers
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	db       *DB
	auth     *Auth
	profiles *ProfileStore

	// Online auth users: accountID -> *Client
	onlineMu    sync.RWMutex
	onlineUsers map[int64]*Client
}

// NewHub creates a Hub; db may be nil for a persistence-free server
func NewHub(db *DB) *Hub {
	h := &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		ipConns:     make(map[string]int),
		db:          db,
		onlineUsers: make(map[int64]*Client),
	}
	if db != nil {
		h.auth = NewAuth(db)
		h.profiles = NewProfileStore(db, h.notifyUserData)
	}
	h.rooms = NewRoomManager(h.profiles)
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

			if client.roomID != "" && client.playerID != "" {
				if room := h.rooms.GetRoom(client.roomID); room != nil {
					room.RemovePlayer(client.playerID)
				}
			}
			if client.accountID != 0 {
				h.SetOffline(client.accountID)
			}
		}
	}
}

// notifyUserData pushes fresh profile data to an online user after an async
// persist (the ProfileStore callback)
func (h *Hub) notifyUserData(accountID int64, msg UserDataUpdateMsg) {
	if client := h.GetOnlineClient(accountID); client != nil {
		client.SendJSON(Envelope{T: MsgUserDataUpdate, Data: msg})
	}
}

// SetOnline marks an authenticated user as online
func (h *Hub) SetOnline(accountID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[accountID] = client
}

// SetOffline removes an authenticated user from online tracking
func (h *Hub) SetOffline(accountID int64) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	delete(h.onlineUsers, accountID)
}

// GetOnlineClient returns the connection of an online user, nil when offline
func (h *Hub) GetOnlineClient(accountID int64) *Client {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	return h.onlineUsers[accountID]
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
