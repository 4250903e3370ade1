package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a level display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	return ""
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	configID := sess.ConfigID
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	if configID == "" {
		configID = "default"
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	configID := strings.TrimSpace(configName)
	if configID != "" {
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configID, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configID)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configID, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.Info("Session created", "session", sess.ID, "level", config.Name)
	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	logger.Info("Session deleted", "session", sessionID)
	return nil
}

// touch loads a session and refreshes its last access time
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		logger.Warning("Failed to update session access time", "session", sessionID, "error", err)
	}
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Warning("Failed to persist session", "session", sessionID, "after", after, "error", err)
	}
}

// SaveSessions writes every in-memory session to the store while no game
// operation can touch an engine
func (s *gameServiceImpl) SaveSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.SaveAllSessions()
}

// PlaceTile puts a pool tile on the board of a session
func (s *gameServiceImpl) PlaceTile(ctx context.Context, sessionID, tileID string, pos engine.GridCell) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.Engine.Place(tileID, pos)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	result := &PlaceResult{
		Success:    outcome.Success,
		Message:    state.Message,
		Tile:       outcome.Tile,
		Position:   outcome.Position,
		Validation: outcome.Validation,
		Path:       outcome.Path,
		Victory:    outcome.Victory,
		Defeat:     outcome.Defeat,
		TilesLeft:  len(state.Pool),
		GameState:  state,
		Events:     placementEvents(outcome, state.Message),
	}

	s.persist(sessionID, "placement")
	logger.Debug("Tile placement", "session", sessionID, "tile", tileID, "position", pos.String(), "success", outcome.Success)
	return result, nil
}

func placementEvents(outcome engine.PlacementOutcome, message string) []GameEvent {
	now := time.Now()
	pos := outcome.Position
	if !outcome.Success {
		return []GameEvent{{
			Type:      EventRejected,
			Message:   strings.Join(outcome.Validation.Issues, "; "),
			Timestamp: now,
			Position:  &pos,
		}}
	}

	events := []GameEvent{{
		Type:      EventPlaced,
		Message:   fmt.Sprintf("Placed %s at %s", outcome.Tile.Shape, pos),
		Timestamp: now,
		Position:  &pos,
	}}
	switch {
	case outcome.Victory:
		events = append(events, GameEvent{Type: EventVictory, Message: message, Timestamp: now})
	case outcome.Defeat:
		events = append(events, GameEvent{Type: EventDefeat, Message: message, Timestamp: now})
	}
	return events
}

// PreviewPlacement reports whether a tile would fit without changing anything
func (s *gameServiceImpl) PreviewPlacement(ctx context.Context, sessionID, tileID string, pos engine.GridCell) (*PreviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	preview, err := sess.Engine.Preview(tileID, pos)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		TileID:   tileID,
		Position: pos,
		Valid:    preview.Valid,
		Reason:   preview.Reason,
	}, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	s.persist(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetHints lists every legal placement of the remaining pool
func (s *gameServiceImpl) GetHints(ctx context.Context, sessionID string) (*HintsResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	hints := sess.Engine.Hints()
	return &HintsResult{
		Hints:     hints,
		Count:     len(hints),
		TilesLeft: len(sess.Engine.AvailableTiles()),
	}, nil
}

// CheckPath evaluates whether Start and Goal are or can still be connected
func (s *gameServiceImpl) CheckPath(ctx context.Context, sessionID string) (*engine.PathResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	status := sess.Engine.Status()
	return &status, nil
}

// GetPlacementHistory returns paginated placement history
func (s *gameServiceImpl) GetPlacementHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetPlacementHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	placements := []engine.PlacementEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				placements = append(placements, history[i])
			}
		} else {
			placements = append(placements, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Placements:      placements,
		TotalPlacements: total,
		Page:            opts.Page,
		PageSize:        opts.Limit,
		TotalPages:      totalPages,
		HasNext:         opts.Page < totalPages,
		HasPrevious:     opts.Page > 1,
	}, nil
}

// ListConfigs returns available levels
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a level to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}
