package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is wrapped by every level validation failure
	ErrInvalidConfig = errors.New("config validation")
	// ErrTileNotInPool is returned when a tile ID is not in the remaining inventory
	ErrTileNotInPool = errors.New("tile not in pool")
	// ErrInvalidPosition is returned for cells outside the playable area
	ErrInvalidPosition = errors.New("position outside board")
	// ErrGameOver is returned for placements after the game has ended
	ErrGameOver = errors.New("game is over")
)

// Layout characters
const (
	LayoutOutside = '#'
	LayoutBlank   = ' '
	LayoutEmpty   = '.'
	LayoutStart   = 'S'
	LayoutGoal    = 'G'
)

// GameConfig describes one level
type GameConfig struct {
	Name             string           `json:"name" yaml:"name"`
	Description      string           `json:"description" yaml:"description"`
	Level            int              `json:"level" yaml:"level"`
	Seed             int64            `json:"seed,omitempty" yaml:"seed,omitempty"`
	GlobalValidation bool             `json:"global_validation" yaml:"global_validation"`
	Layout           []string         `json:"layout,omitempty" yaml:"layout,omitempty"`
	Pool             []TileDefinition `json:"pool" yaml:"pool"`
	Messages         Messages         `json:"messages" yaml:"messages"`
}

// Messages are the player-facing texts of a level
type Messages struct {
	Welcome  string `json:"welcome" yaml:"welcome"`
	Placed   string `json:"placed,omitempty" yaml:"placed,omitempty"`
	Rejected string `json:"rejected,omitempty" yaml:"rejected,omitempty"`
	Victory  string `json:"victory" yaml:"victory"`
	Defeat   string `json:"defeat" yaml:"defeat"`
}

// PoolTiles returns the configured pool with generated IDs for entries that have none
func (c *GameConfig) PoolTiles() []TileDefinition {
	tiles := make([]TileDefinition, len(c.Pool))
	for i, t := range c.Pool {
		if t.ID == "" {
			t.ID = fmt.Sprintf("tile-%d", i+1)
		}
		tiles[i] = t
	}
	return tiles
}

// ValidateGameConfig validates a level for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidConfig)
	}
	if config.Level < MinLevel || config.Level > MaxLevel {
		return fmt.Errorf("%w: level must be between %d and %d, got %d", ErrInvalidConfig, MinLevel, MaxLevel, config.Level)
	}

	if len(config.Layout) > 0 {
		if err := validateLayout(config.Layout); err != nil {
			return err
		}
	}

	if len(config.Pool) == 0 {
		return fmt.Errorf("%w: pool must contain at least one tile", ErrInvalidConfig)
	}
	if len(config.Pool) > MaxPoolSize {
		return fmt.Errorf("%w: pool may hold at most %d tiles, got %d", ErrInvalidConfig, MaxPoolSize, len(config.Pool))
	}
	ids := make(map[string]int, len(config.Pool))
	for i, tile := range config.PoolTiles() {
		if !tile.Shape.Valid() {
			return fmt.Errorf("%w: pool entry %d has an unknown shape", ErrInvalidConfig, i+1)
		}
		if prev, dup := ids[tile.ID]; dup {
			return fmt.Errorf("%w: pool entries %d and %d share id %q", ErrInvalidConfig, prev, i+1, tile.ID)
		}
		ids[tile.ID] = i + 1
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: messages.welcome is required", ErrInvalidConfig)
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("%w: messages.victory is required", ErrInvalidConfig)
	}
	if config.Messages.Defeat == "" {
		return fmt.Errorf("%w: messages.defeat is required", ErrInvalidConfig)
	}

	return nil
}

func validateLayout(layout []string) error {
	starts, goals, cells := 0, 0, 0
	for y, row := range layout {
		for x, char := range []rune(row) {
			switch char {
			case LayoutOutside, LayoutBlank:
				continue
			case LayoutEmpty:
			case LayoutStart:
				starts++
			case LayoutGoal:
				goals++
			default:
				if _, ok := ShapeFromGlyph(string(char)); !ok {
					return fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidConfig, char, y+1, x+1)
				}
			}
			cells++
		}
	}
	if starts != 1 {
		return fmt.Errorf("%w: layout must contain exactly one start (S) cell, got %d", ErrInvalidConfig, starts)
	}
	if goals != 1 {
		return fmt.Errorf("%w: layout must contain exactly one goal (G) cell, got %d", ErrInvalidConfig, goals)
	}
	if cells > MaxBoardCells {
		return fmt.Errorf("%w: layout has %d playable cells, at most %d allowed", ErrInvalidConfig, cells, MaxBoardCells)
	}
	return nil
}

// ParseGameConfig decodes and validates a YAML level
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a level from a YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// CONFIG_DIR replaces the default configs/ prefix
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data)
}

// LoadConfigByName loads a level by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".yaml") && !strings.HasSuffix(configName, ".yml") {
		configName = configName + ".yaml"
	}

	configPath := filepath.Join("configs", configName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	config, err := LoadGameConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

// MarshalGameConfig encodes a level as YAML
func MarshalGameConfig(config *GameConfig) ([]byte, error) {
	return yaml.Marshal(config)
}

// DefaultGameConfig returns the built-in level used when no file is available
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:             "Minimal",
		Description:      "A small built-in board: lead the line from S around the corner to G",
		Level:            1,
		GlobalValidation: false,
		Layout: []string{
			"S...",
			".##.",
			"...G",
		},
		Pool: []TileDefinition{
			{ID: "start-cap", Shape: DeadEndRight},
			{ID: "straight-1", Shape: StraightHorizontal},
			{ID: "straight-2", Shape: StraightHorizontal},
			{ID: "corner", Shape: CornerDownLeft},
			{ID: "riser", Shape: StraightVertical},
			{ID: "goal-cap", Shape: DeadEndUp},
			{ID: "cross", Shape: Cross},
			{ID: "elbow", Shape: CornerUpRight},
		},
		Messages: Messages{
			Welcome:  "Connect Start to Goal using the tiles in your pool.",
			Placed:   "Tile placed.",
			Rejected: "That tile does not fit there.",
			Victory:  "Connected! Start and Goal are linked.",
			Defeat:   "No path can be completed with the remaining tiles.",
		},
	}
}
