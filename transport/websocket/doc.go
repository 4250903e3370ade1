// Package websocket pushes game state to browsers watching a session.
//
// A central Hub tracks connections per session ID. Each connection runs a
// read pump (which only keeps the connection alive) and a write pump; all
// registration, removal and fan-out happens on the hub's Run goroutine.
//
// Message Protocol:
//
// Every frame is one JSON Message:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// State updates follow every placement and reset. Other events (victory,
// defeat) carry their payload in "data".
//
// Usage:
//
//	hub := websocket.NewHub(cfg.WebSocket.IsOriginAllowed)
//	go hub.Run()
//	defer hub.Stop()
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Broadcasts never block the caller: when the hub queue is full the message
// is dropped and logged, and a client whose send buffer is full is
// disconnected.
package websocket
