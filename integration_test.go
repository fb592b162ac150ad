package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type testServer struct {
	hub *Hub
	srv *httptest.Server
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()
	db := openTestDB(t)
	hub := NewHub(db)
	go hub.Run()
	srv := httptest.NewServer(SetupRoutes(hub, t.TempDir()))
	t.Cleanup(func() {
		srv.Close()
		hub.rooms.Stop()
		hub.profiles.Stop()
	})
	return &testServer{hub: hub, srv: srv}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	payload, _ := json.Marshal(data)
	raw, _ := json.Marshal(InEnvelope{T: msgType, D: payload})
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// waitForJSON reads frames until a text message of the wanted type arrives
func waitForJSON(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		if env.T == want {
			return env.D
		}
	}
	t.Fatalf("no %s message arrived", want)
	return nil
}

// waitForBinary reads frames until a binary state frame arrives
func waitForBinary(t *testing.T, conn *websocket.Conn) *UpdateState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		mt, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for state frame: %v", err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		s, err := unpackState(raw)
		if err != nil {
			t.Fatalf("decode state frame: %v", err)
		}
		return s
	}
	t.Fatal("no binary frame arrived")
	return nil
}

func TestServerJoinAndPlay(t *testing.T) {
	ts := startTestServer(t)
	conn := ts.dial(t)

	sendEnvelope(t, conn, MsgJoin, JoinMsg{Name: "Tester"})
	raw := waitForJSON(t, conn, MsgInit)

	var init InitMsg
	if err := json.Unmarshal(raw, &init); err != nil {
		t.Fatalf("decode init: %v", err)
	}
	if init.SelfID == "" || init.Mode != "endless" {
		t.Errorf("init mismatch: %+v", init)
	}
	if init.MapSize != MapSize || init.TickRate != TickRate {
		t.Error("init should carry map and tick constants")
	}

	// Drive east via the compact binary input and watch the state stream
	input := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x08}
	if err := conn.WriteMessage(websocket.BinaryMessage, input); err != nil {
		t.Fatalf("write input: %v", err)
	}

	state := waitForBinary(t, conn)
	found := false
	for _, p := range state.Players {
		if p.ID == init.SelfID {
			found = true
		}
	}
	if !found {
		t.Error("state stream should include the joined player")
	}
	if state.Tick == 0 {
		t.Error("state frames should carry the room tick")
	}
}

func TestServerRegisterThenProfile(t *testing.T) {
	ts := startTestServer(t)
	conn := ts.dial(t)

	sendEnvelope(t, conn, MsgRegister, RegisterMsg{Username: "alice", Password: "secret"})
	raw := waitForJSON(t, conn, MsgAuthOK)

	var ok AuthOKMsg
	if err := json.Unmarshal(raw, &ok); err != nil {
		t.Fatalf("decode authOk: %v", err)
	}
	if ok.Token == "" || ok.Username != "alice" || ok.UserID == 0 {
		t.Errorf("authOk mismatch: %+v", ok)
	}

	sendEnvelope(t, conn, MsgProfile, nil)
	raw = waitForJSON(t, conn, MsgProfileData)
	var prof ProfileDataMsg
	if err := json.Unmarshal(raw, &prof); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if prof.Username != "alice" {
		t.Errorf("profile username mismatch: %q", prof.Username)
	}

	// A second connection can resume with the issued token
	conn2 := ts.dial(t)
	sendEnvelope(t, conn2, MsgAuth, AuthMsg{Token: ok.Token})
	raw = waitForJSON(t, conn2, MsgAuthOK)
	var ok2 AuthOKMsg
	json.Unmarshal(raw, &ok2)
	if ok2.UserID != ok.UserID {
		t.Error("token resume should map to the same account")
	}
}

func TestServerAuthenticatedJoinUsesAccountName(t *testing.T) {
	ts := startTestServer(t)
	conn := ts.dial(t)

	sendEnvelope(t, conn, MsgRegister, RegisterMsg{Username: "bob", Password: "secret"})
	raw := waitForJSON(t, conn, MsgAuthOK)
	var ok AuthOKMsg
	json.Unmarshal(raw, &ok)

	sendEnvelope(t, conn, MsgJoin, JoinMsg{Name: "Impostor", Token: ok.Token})
	raw = waitForJSON(t, conn, MsgInit)
	var init InitMsg
	json.Unmarshal(raw, &init)
	if init.Self.Name != "bob" {
		t.Errorf("authenticated join should use the account name, got %q", init.Self.Name)
	}
}

func TestServerArenaJoinReportsLobby(t *testing.T) {
	ts := startTestServer(t)
	conn := ts.dial(t)

	sendEnvelope(t, conn, MsgArenaJoin, JoinMsg{Name: "Fighter"})
	raw := waitForJSON(t, conn, MsgInit)
	var init InitMsg
	json.Unmarshal(raw, &init)
	if init.Mode != "arena" {
		t.Errorf("expected arena mode, got %q", init.Mode)
	}

	// The lobby announces itself every second while waiting
	raw = waitForJSON(t, conn, MsgArenaStatus)
	var status ArenaStatusMsg
	if err := json.Unmarshal(raw, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "waiting" || status.Players != 1 {
		t.Errorf("lobby status mismatch: %+v", status)
	}
}

func TestHTTPEndpoints(t *testing.T) {
	ts := startTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/skins")
	if err != nil {
		t.Fatalf("skins: %v", err)
	}
	var skins []Skin
	json.NewDecoder(resp.Body).Decode(&skins)
	resp.Body.Close()
	if len(skins) != len(SkinCatalog) {
		t.Errorf("expected %d skins, got %d", len(SkinCatalog), len(skins))
	}

	resp, err = http.Get(ts.srv.URL + "/leaderboard")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("leaderboard status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.srv.URL + "/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats map[string]int
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()
	if stats["rooms"] < 2 {
		t.Errorf("expected at least 2 rooms, got %d", stats["rooms"])
	}

	resp, err = http.Get(ts.srv.URL + "/qr?size=128")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr content type %q", ct)
	}
}
