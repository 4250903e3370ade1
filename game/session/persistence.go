package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON document stored for each session
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"` // level ID; empty for the built-in level
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
}

func encodeSession(session *service.Session, indent bool) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
	}
	if indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// decodeSession rebuilds a session, replaying its stored state onto a fresh engine
func decodeSession(raw []byte, configs service.ConfigManager) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	gameConfig := configs.GetDefault()
	if data.ConfigName != "" {
		loaded, err := configs.LoadConfig(data.ConfigName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
		}
		gameConfig = loaded
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if data.GameState != nil {
		if err := gameEngine.SetState(data.GameState); err != nil {
			return nil, fmt.Errorf("failed to set game state: %w", err)
		}
	}

	return &service.Session{
		ID:             data.ID,
		ConfigID:       data.ConfigName,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
