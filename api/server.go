package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/tile-path-game/game/config"
	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/game/service"
	"github.com/wricardo/tile-path-game/logger"
	"github.com/wricardo/tile-path-game/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Must be registered before the {id} pattern
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/place", s.handlePlace).Methods("POST")
	api.HandleFunc("/sessions/{id}/preview", s.handlePreview).Methods("GET", "POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/hints", s.handleHints).Methods("GET")
	api.HandleFunc("/sessions/{id}/path", s.handlePath).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the mux router so callers can mount more handlers
func (s *Server) Router() *mux.Router {
	return s.router
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warning("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrTileNotInPool),
		errors.Is(err, engine.ErrInvalidPosition),
		errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) broadcastState(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.ConfigName
	}
	if configID == "" {
		configID = r.URL.Query().Get("config")
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// placementRequest names a pool tile and a target cell
type placementRequest struct {
	TileID string `json:"tile_id"`
	X      *int   `json:"x"`
	Y      *int   `json:"y"`
}

func (p placementRequest) validate() error {
	if strings.TrimSpace(p.TileID) == "" {
		return errors.New("tile_id is required")
	}
	if p.X == nil || p.Y == nil {
		return errors.New("x and y are required")
	}
	return nil
}

func (p placementRequest) cell() engine.GridCell {
	return engine.GridCell{X: *p.X, Y: *p.Y}
}

// placementFromQuery reads tile_id, x and y from the URL query
func placementFromQuery(r *http.Request) (placementRequest, error) {
	query := r.URL.Query()
	req := placementRequest{TileID: query.Get("tile_id")}
	for key, target := range map[string]**int{"x": &req.X, "y": &req.Y} {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%s must be an integer", key)
		}
		*target = &v
	}
	return req, nil
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req placementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.PlaceTile(r.Context(), sessionID, req.TileID, req.cell())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.broadcastState(sessionID, result.GameState)
	if s.hub != nil {
		for _, event := range result.Events {
			if event.Type == service.EventVictory || event.Type == service.EventDefeat {
				s.hub.BroadcastEvent(sessionID, event.Type, event)
			}
		}
	}

	status := "REJECTED"
	if result.Success {
		status = "OK"
	}
	logger.Info("Placement",
		"session", sessionID,
		"tile", req.TileID,
		"pos", req.cell().String(),
		"status", status,
		"tiles_left", result.TilesLeft)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req placementRequest
	if r.Method == http.MethodGet {
		var err error
		if req, err = placementFromQuery(r); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.PreviewPlacement(r.Context(), sessionID, req.TileID, req.cell())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.broadcastState(sessionID, state)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game reset successfully",
		"state":   state,
	})
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	hints, err := s.service.GetHints(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, hints)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	path, err := s.service.CheckPath(r.Context(), sessionID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, path)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetPlacementHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]
	for _, ext := range []string{".yaml", ".yml"} {
		configName = strings.TrimSuffix(configName, ext)
	}

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusNotFound
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.GameConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	// Without an explicit ID the file is named after the level
	configID := req.ConfigID
	if configID == "" {
		configID = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(req.Name), " ", "-"))
	}

	if err := s.service.SaveConfig(r.Context(), configID, &req.GameConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	logger.Info("Level saved", "config", configID, "name", req.Name)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// handleUnifiedSessions returns several sessions at once for side-by-side views.
// Filters: ?sessionIds=a,b,c or ?config=<config_id>.
func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessions []*service.SessionInfo
	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		for _, id := range strings.Split(sessionIDs, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if session, err := s.service.GetSession(r.Context(), id); err == nil {
				sessions = append(sessions, session)
			}
		}
	} else {
		all, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		configName := query.Get("config")
		for _, session := range all {
			if configName == "" || strings.EqualFold(session.ConfigName, configName) {
				sessions = append(sessions, session)
			}
		}
	}

	entries := make([]map[string]interface{}, 0, len(sessions))
	victories := 0
	for _, session := range sessions {
		if session.GameState != nil && session.GameState.Victory {
			victories++
		}
		entries = append(entries, map[string]interface{}{
			"session_id":    session.ID,
			"config_name":   session.ConfigName,
			"game_state":    session.GameState,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessedAt,
		})
	}

	configName := ""
	if len(sessions) > 0 {
		configName = sessions[0].ConfigName
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"config_name": configName,
		"victories":   victories,
		"sessions":    entries,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session parameter required")
		return
	}
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "WebSocket updates are disabled")
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		respondError(w, statusFor(err), "Invalid session")
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
