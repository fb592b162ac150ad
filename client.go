package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // inputs arrive every tick, so the cap is generous
	maxNameLen        = 16
)

// Client represents one WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	roomID     string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time

	// Auth state
	accountID int64 // 0 = guest
	username  string
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		// Compact 6-byte binary input: [0x01, ax_hi, ax_lo, ay_hi, ay_lo, flags]
		if msgType == websocket.BinaryMessage && len(message) == 6 && message[0] == 0x01 {
			c.handleBinaryInput(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame queued by SendBinary
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			// Application-level probe so clients can measure latency
			ping, err := json.Marshal(Envelope{T: MsgPing, Data: PingMsg{Time: time.Now().UnixMilli()}})
			if err == nil {
				if err := c.conn.WriteMessage(websocket.TextMessage, ping); err != nil {
					return
				}
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message,
// prefixed with a 0xFF marker so WritePump can distinguish it from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgJoin:
		c.handleJoin(env.D, false)
	case MsgArenaJoin:
		c.handleJoin(env.D, true)
	case MsgArenaLeave:
		c.handleLeave()
	case MsgInput:
		c.handleInput(env.D)
	case MsgAttack:
		c.withRoom(func(r *Room) { r.QueueAttack(c.playerID) })
	case MsgDash:
		c.withRoom(func(r *Room) { r.QueueDash(c.playerID) })
	case MsgSelectSlot:
		c.handleSelectSlot(env.D)
	case MsgUseItem:
		c.withRoom(func(r *Room) { r.UseItem(c.playerID) })
	case MsgRespawn:
		c.handleRespawn(env.D)
	case MsgBuySkin:
		c.handleBuySkin(env.D)
	case MsgEquipSkin:
		c.handleEquipSkin(env.D)
	case MsgPong:
		// latency probes are client-side; nothing to do
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.handleProfile()
	}
}

func (c *Client) withRoom(fn func(*Room)) {
	if c.roomID == "" || c.playerID == "" {
		return
	}
	if room := c.hub.rooms.GetRoom(c.roomID); room != nil {
		fn(room)
	}
}

func (c *Client) handleJoin(data json.RawMessage, arena bool) {
	if c.roomID != "" {
		c.handleLeave()
	}

	var msg JoinMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			return
		}
	}

	name := msg.Name
	if name == "" {
		name = GenerateGuestName()
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	// A token upgrades the join to an authenticated run
	if msg.Token != "" && c.hub.auth != nil && c.accountID == 0 {
		if id, username, err := c.hub.auth.ValidateToken(msg.Token); err == nil {
			c.accountID = id
			c.username = username
			c.hub.SetOnline(id, c)
		}
	}
	skin := msg.SkinID
	if c.accountID != 0 && c.hub.profiles != nil {
		if row, err := c.hub.profiles.Load(c.accountID); err == nil && row != nil {
			name = c.username
			skin = row.EquippedSkin
			c.SendJSON(Envelope{T: MsgUserDataUpdate, Data: profileUpdateMsg(row)})
		}
	}

	var room *Room
	var player *Player
	var err error
	if arena {
		room, player, err = c.hub.rooms.JoinArena(name, c.accountID, skin, c)
	} else {
		room, player, err = c.hub.rooms.JoinEndless(name, c.accountID, skin, c)
	}
	if err != nil {
		if arena {
			c.SendJSON(Envelope{T: MsgArenaStatus, Data: ArenaStatusMsg{
				Status: "rejected", Error: err.Error(),
			}})
		} else {
			c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		}
		return
	}

	c.roomID = room.ID
	c.playerID = player.ID
}

func (c *Client) handleLeave() {
	if c.roomID == "" {
		return
	}
	if room := c.hub.rooms.GetRoom(c.roomID); room != nil && c.playerID != "" {
		room.RemovePlayer(c.playerID)
	}
	c.roomID = ""
	c.playerID = ""
}

func (c *Client) handleInput(data json.RawMessage) {
	if c.roomID == "" || c.playerID == "" {
		return
	}
	var msg InputMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if room := c.hub.rooms.GetRoom(c.roomID); room != nil {
		room.HandleInput(c.playerID, msg)
	}
}

// handleBinaryInput decodes the compact 6-byte input message. Aim coords are
// int16 world coordinates, which cover the whole map.
func (c *Client) handleBinaryInput(msg []byte) {
	if c.roomID == "" || c.playerID == "" {
		return
	}
	ax := float64(int16(uint16(msg[1])<<8 | uint16(msg[2])))
	ay := float64(int16(uint16(msg[3])<<8 | uint16(msg[4])))
	flags := msg[5]

	in := InputMsg{
		Up:    flags&0x01 != 0,
		Down:  flags&0x02 != 0,
		Left:  flags&0x04 != 0,
		Right: flags&0x08 != 0,
		AimX:  ax,
		AimY:  ay,
	}
	room := c.hub.rooms.GetRoom(c.roomID)
	if room == nil {
		return
	}
	room.HandleInput(c.playerID, in)
	if flags&0x10 != 0 {
		room.QueueAttack(c.playerID)
	}
	if flags&0x20 != 0 {
		room.QueueDash(c.playerID)
	}
}

func (c *Client) handleSelectSlot(data json.RawMessage) {
	var msg SlotMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.withRoom(func(r *Room) { r.SelectSlot(c.playerID, msg.Index) })
}

func (c *Client) handleRespawn(data json.RawMessage) {
	var msg RespawnMsg
	json.Unmarshal(data, &msg)
	c.withRoom(func(r *Room) { r.RespawnPlayer(c.playerID, msg.SkinID) })
}

func (c *Client) handleBuySkin(data json.RawMessage) {
	if c.hub.db == nil || c.accountID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	var msg SkinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if _, err := BuySkin(c.hub.db, c.accountID, msg.SkinID); err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.sendUserData()
}

func (c *Client) handleEquipSkin(data json.RawMessage) {
	if c.hub.db == nil || c.accountID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	var msg SkinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if err := EquipSkin(c.hub.db, c.accountID, msg.SkinID); err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.sendUserData()
}

func (c *Client) sendUserData() {
	row, err := c.hub.db.GetProfile(c.accountID)
	if err != nil || row == nil {
		return
	}
	c.SendJSON(Envelope{T: MsgUserDataUpdate, Data: profileUpdateMsg(row)})
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.setAuthenticated(id, msg.Username)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		UserID:   id,
	}})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: err.Error()}})
		return
	}
	c.setAuthenticated(id, msg.Username)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: msg.Username,
		UserID:   id,
	}})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "invalid token"}})
		return
	}
	c.setAuthenticated(id, username)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    msg.Token,
		Username: username,
		UserID:   id,
	}})
}

func (c *Client) setAuthenticated(accountID int64, username string) {
	c.accountID = accountID
	c.username = username
	c.hub.SetOnline(accountID, c)
}

func (c *Client) handleProfile() {
	if c.hub.db == nil || c.accountID == 0 {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "not authenticated"}})
		return
	}
	row, err := c.hub.db.GetProfile(c.accountID)
	if err != nil || row == nil {
		c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: "profile not found"}})
		return
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		Username: c.username,
		Data:     profileUpdateMsg(row),
	}})
}
