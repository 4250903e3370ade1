package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// EventStateUpdate tags messages that carry a full GameState
const EventStateUpdate = "state_update"

// OriginChecker decides whether an Origin header may open a connection
type OriginChecker func(origin string) bool

// Message represents a WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID, owned by Run
	sessions map[string]map[*Client]bool

	// Client counts readable outside Run
	mu     sync.RWMutex
	counts map[string]int

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	upgrader websocket.Upgrader
}

// NewHub creates a new WebSocket hub. A nil checker accepts every origin.
func NewHub(allowOrigin OriginChecker) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Client]bool),
		counts:     make(map[string]int),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowOrigin == nil {
				return true
			}
			origin := r.Header.Get("Origin")
			if allowOrigin(origin) {
				return true
			}
			logger.Warning("Rejected WebSocket origin", "origin", origin)
			return false
		},
	}
	return h
}

// Run starts the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.done:
			for _, clients := range h.sessions {
				for client := range clients {
					h.unregisterClient(client)
				}
			}
			return
		}
	}
}

// Stop ends Run and closes every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warning("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: strings.ToLower(sessionID),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

// ClientCount returns the number of clients watching a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.counts[strings.ToLower(sessionID)]
}

func (h *Hub) enqueue(message *Message) {
	message.SessionID = strings.ToLower(message.SessionID)
	select {
	case h.broadcast <- message:
	default:
		logger.Warning("Broadcast queue full, dropping message",
			"session", message.SessionID, "event", message.Event)
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
	h.setCount(client.sessionID, len(h.sessions[client.sessionID]))

	logger.Debug("Client registered",
		"session", client.sessionID, "clients", len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}
	h.setCount(client.sessionID, len(clients))

	logger.Debug("Client unregistered",
		"session", client.sessionID, "clients", len(clients))
}

func (h *Hub) setCount(sessionID string, n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n == 0 {
		delete(h.counts, sessionID)
		return
	}
	h.counts[sessionID] = n
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal broadcast message", "error", err)
		return
	}

	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			// Slow client
			h.unregisterClient(client)
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming messages only keep the connection alive
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warning("WebSocket read error", "session", c.sessionID, "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
