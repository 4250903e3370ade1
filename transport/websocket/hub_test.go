package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/tile-path-game/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, engine.WebSocketBufferSize),
	}
}

// waitForCount polls ClientCount until it matches or the deadline passes
func waitForCount(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients in %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server, sessionID string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil || hub.counts == nil {
		t.Error("Hub maps are nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are nil")
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub(nil)
	client1 := newTestClient(hub, "abcd")
	client2 := newTestClient(hub, "abcd")

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount("ABCD") != 2 {
		t.Errorf("Expected 2 clients, got %d", hub.ClientCount("ABCD"))
	}

	hub.unregisterClient(client1)
	if !hub.sessions["abcd"][client2] {
		t.Error("client2 should still be registered")
	}
	if _, open := <-client1.send; open {
		t.Error("Unregistering should close the send channel")
	}

	hub.unregisterClient(client2)
	if _, exists := hub.sessions["abcd"]; exists {
		t.Error("Session should be removed after the last client leaves")
	}
	if hub.ClientCount("abcd") != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount("abcd"))
	}

	// Unregistering twice is a no-op
	hub.unregisterClient(client2)
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	watcher := newTestClient(hub, "abcd")
	other := newTestClient(hub, "ef01")
	hub.register <- watcher
	hub.register <- other

	hub.BroadcastToSession("ABCD", &engine.GameState{
		Message:    "Placed straight-1",
		ConfigName: "Minimal",
		Victory:    true,
	})

	select {
	case data := <-watcher.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "abcd" {
			t.Errorf("Expected session abcd, got %s", message.SessionID)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected %s, got %s", EventStateUpdate, message.Event)
		}
		if message.GameState == nil || !message.GameState.Victory || message.GameState.ConfigName != "Minimal" {
			t.Errorf("GameState not correctly transmitted: %+v", message.GameState)
		}
	case <-time.After(time.Second):
		t.Fatal("No message received within timeout")
	}

	select {
	case data := <-other.send:
		t.Errorf("Client of another session received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub(nil)

	hub.BroadcastEvent("Event-Test", "victory", "done")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected session event-test, got %s", message.SessionID)
		}
		if message.Event != "victory" || message.Data != "done" {
			t.Errorf("Unexpected message %+v", message)
		}
	default:
		t.Fatal("Expected a queued broadcast message")
	}
}

func TestHubBroadcastQueueFull(t *testing.T) {
	hub := NewHub(nil)

	// Nothing drains the queue; extra messages are dropped instead of blocking
	for i := 0; i < engine.WebSocketBufferSize+10; i++ {
		hub.BroadcastEvent("abcd", "tick", i)
	}
	if len(hub.broadcast) != engine.WebSocketBufferSize {
		t.Errorf("Expected a full queue of %d, got %d", engine.WebSocketBufferSize, len(hub.broadcast))
	}
}

func TestWebSocketConnectAndDisconnect(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()
	server := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "ws-test"), nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	waitForCount(t, hub, "ws-test", 1)

	conn.Close()
	waitForCount(t, hub, "ws-test", 0)
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()
	server := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "msg-test"), nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForCount(t, hub, "msg-test", 1)

	state := &engine.GameState{
		Message:         "Tile placed",
		TotalPlacements: 3,
		Pool:            []engine.TileDefinition{{ID: "corner", Shape: engine.CornerDownLeft}},
	}
	hub.BroadcastToSession("msg-test", state)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.GameState.TotalPlacements != 3 {
		t.Errorf("Expected 3 placements, got %d", message.GameState.TotalPlacements)
	}
	if len(message.GameState.Pool) != 1 || message.GameState.Pool[0].Shape != engine.CornerDownLeft {
		t.Errorf("Pool not correctly received: %+v", message.GameState.Pool)
	}
}

func TestWebSocketOriginCheck(t *testing.T) {
	hub := NewHub(func(origin string) bool { return origin == "http://allowed.test" })
	go hub.Run()
	defer hub.Stop()
	server := startServer(t, hub)

	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{"allowed origin", "http://allowed.test", false},
		{"rejected origin", "http://evil.test", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{"Origin": []string{tt.origin}}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "origin"), header)
			if tt.wantErr {
				if err == nil {
					conn.Close()
					t.Fatal("Expected the handshake to fail")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("Expected 403, got %v", resp)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected the handshake to succeed: %v", err)
			}
			conn.Close()
		})
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	server := startServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "stop"), nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForCount(t, hub, "stop", 1)

	hub.Stop()
	waitForCount(t, hub, "stop", 0)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to close after Stop")
	}
}
