package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/tile-path-game/game/engine"
)

var (
	// ErrSessionNotFound is returned for unknown session IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfigNotFound is returned when no level matches a config ID
	ErrConfigNotFound = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	PlaceTile(ctx context.Context, sessionID, tileID string, pos engine.GridCell) (*PlaceResult, error)
	PreviewPlacement(ctx context.Context, sessionID, tileID string, pos engine.GridCell) (*PreviewResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHints(ctx context.Context, sessionID string) (*HintsResult, error)
	CheckPath(ctx context.Context, sessionID string) (*engine.PathResult, error)
	GetPlacementHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Persistence
	SaveSessions(ctx context.Context) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configID string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
	SaveAllSessions() error
}

// ConfigManager handles level loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string // level file name without extension; empty for the built-in level
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
