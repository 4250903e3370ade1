package service

import (
	"time"

	"github.com/wricardo/tile-path-game/game/engine"
)

// Event types reported with placement results
const (
	EventPlaced   = "placed"
	EventRejected = "rejected"
	EventVictory  = "victory"
	EventDefeat   = "defeat"
	EventReset    = "reset"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlaceResult contains the result of a placement attempt
type PlaceResult struct {
	Success    bool                    `json:"success"`
	Message    string                  `json:"message"`
	Tile       engine.TileDefinition   `json:"tile"`
	Position   engine.GridCell         `json:"position"`
	Validation engine.ValidationResult `json:"validation"`
	Path       *engine.PathResult      `json:"path,omitempty"`
	Victory    bool                    `json:"victory"`
	Defeat     bool                    `json:"defeat"`
	TilesLeft  int                     `json:"tiles_left"`
	GameState  *engine.GameState       `json:"game_state"`
	Events     []GameEvent             `json:"events,omitempty"`
}

// PreviewResult is the hover feedback for a tile over a cell
type PreviewResult struct {
	TileID   string          `json:"tile_id"`
	Position engine.GridCell `json:"position"`
	Valid    bool            `json:"valid"`
	Reason   string          `json:"reason"`
}

// HintsResult lists the legal placements for the remaining pool
type HintsResult struct {
	Hints     []engine.Hint `json:"hints"`
	Count     int           `json:"count"`
	TilesLeft int           `json:"tiles_left"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // "placed", "rejected", "victory", "defeat", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.GridCell `json:"position,omitempty"`
}

// HistoryOptions configures placement history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated placement history
type HistoryResponse struct {
	Placements      []engine.PlacementEntry `json:"placements"`
	TotalPlacements int                     `json:"total_placements"`
	Page            int                     `json:"page"`
	PageSize        int                     `json:"page_size"`
	TotalPages      int                     `json:"total_pages"`
	HasNext         bool                    `json:"has_next"`
	HasPrevious     bool                    `json:"has_previous"`
}

// ConfigInfo provides information about a level
type ConfigInfo struct {
	Filename         string `json:"filename"`
	ConfigID         string `json:"config_id"` // The identifier to use for session creation
	Name             string `json:"name"`      // Display name
	Description      string `json:"description"`
	Level            int    `json:"level"`
	BoardCells       int    `json:"board_cells"`
	PoolSize         int    `json:"pool_size"`
	GlobalValidation bool   `json:"global_validation"`
}
