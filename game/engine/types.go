package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four sides of a tile
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Validation and sizing constants
const (
	MinLevel            = 0
	MaxLevel            = 60
	MaxBoardCells       = 400
	MaxPoolSize         = 200
	UnknownTilesNeeded  = -1
	WebSocketBufferSize = 256
)

// AllDirections returns the four directions in discovery order
func AllDirections() []Direction {
	return []Direction{Up, Right, Down, Left}
}

// String returns the lowercase name of a Direction
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	return Opposite(d)
}

// Offset returns the grid delta for one step in this direction.
// Rows grow downwards, so Up decreases Y.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	}
	return 0, 0
}

// MarshalText encodes a Direction by name
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a Direction by name
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection parses up/right/down/left, case-insensitively
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "right":
		return Right, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// GridCell is a 2D integer board coordinate
type GridCell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Neighbor returns the adjacent cell in direction d
func (c GridCell) Neighbor(d Direction) GridCell {
	dx, dy := d.Offset()
	return GridCell{X: c.X + dx, Y: c.Y + dy}
}

// String renders the cell as (x,y)
func (c GridCell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ConnectorMask states which sides of a tile have an open connector
type ConnectorMask struct {
	Up    bool `json:"up"`
	Right bool `json:"right"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
}

// NewMask builds a mask from the listed open directions
func NewMask(open ...Direction) ConnectorMask {
	var m ConnectorMask
	for _, d := range open {
		switch d {
		case Up:
			m.Up = true
		case Right:
			m.Right = true
		case Down:
			m.Down = true
		case Left:
			m.Left = true
		}
	}
	return m
}

// Has reports whether the mask has an open connector towards d
func (m ConnectorMask) Has(d Direction) bool {
	switch d {
	case Up:
		return m.Up
	case Right:
		return m.Right
	case Down:
		return m.Down
	case Left:
		return m.Left
	default:
		return false
	}
}

// ConnectionCount returns the number of open connectors
func (m ConnectorMask) ConnectionCount() int {
	count := 0
	for _, d := range AllDirections() {
		if m.Has(d) {
			count++
		}
	}
	return count
}

// Equals reports whether both masks open exactly the same sides
func (m ConnectorMask) Equals(other ConnectorMask) bool {
	return m == other
}

// Covers reports whether m opens at least every side that required opens
func (m ConnectorMask) Covers(required ConnectorMask) bool {
	for _, d := range AllDirections() {
		if required.Has(d) && !m.Has(d) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no connector is open
func (m ConnectorMask) IsEmpty() bool {
	return m == ConnectorMask{}
}

// String renders the mask as the glyph of its shape
func (m ConnectorMask) String() string {
	if m.IsEmpty() {
		return "·"
	}
	if shape, ok := ShapeOf(m); ok {
		return shape.Glyph()
	}
	return "?"
}

// SpecialRole marks the Start and Goal cells of a board
type SpecialRole string

const (
	RoleNone  SpecialRole = ""
	RoleStart SpecialRole = "start"
	RoleGoal  SpecialRole = "goal"
)

// TileDefinition is an inventory item the player can place
type TileDefinition struct {
	ID        string     `json:"id" yaml:"id"`
	Shape     TileShape  `json:"shape" yaml:"shape"`
	Footprint []GridCell `json:"footprint,omitempty" yaml:"footprint,omitempty"`
}

// Mask returns the connectors of the tile's shape
func (t TileDefinition) Mask() ConnectorMask {
	return ConnectorsOf(t.Shape)
}

// ValidationResult is the outcome of a single placement check
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// PathResult is the outcome of a Start/Goal reachability check
type PathResult struct {
	PathPossible       bool     `json:"path_possible"`
	CurrentlyConnected bool     `json:"currently_connected"`
	Issues             []string `json:"issues"`

	// EstimatedTilesNeeded is the minimum number of empty cells a completing
	// path must fill; UnknownTilesNeeded when not computed.
	EstimatedTilesNeeded int `json:"estimated_tiles_needed"`
}

// BoardCell is one playable slot of the board as exposed in GameState
type BoardCell struct {
	Position GridCell        `json:"position"`
	Role     SpecialRole     `json:"role,omitempty"`
	Tile     *TileDefinition `json:"tile,omitempty"`
	Fixed    bool            `json:"fixed,omitempty"` // prefilled by the level, survives reset
}

// GameState represents the complete game state
type GameState struct {
	Cells      []BoardCell      `json:"cells"`
	Start      *GridCell        `json:"start,omitempty"`
	Goal       *GridCell        `json:"goal,omitempty"`
	Pool       []TileDefinition `json:"pool"`
	Message    string           `json:"message"`
	GameOver   bool             `json:"game_over"`
	Victory    bool             `json:"victory"`
	ConfigName string           `json:"config_name"`
	Path       *PathResult      `json:"path,omitempty"`

	PlacementHistory []PlacementEntry `json:"placement_history"`
	TotalPlacements  int              `json:"total_placements"`

	// CurrentPlacements tracks only the placements since the last reset.
	CurrentPlacements      []PlacementEntry `json:"current_placements"`
	CurrentPlacementsCount int              `json:"current_placements_count"`

	// Computed helper view (not required for core game logic)
	Board []string `json:"board,omitempty"`
}

// PlacementEntry represents a single placement attempt in the game history
type PlacementEntry struct {
	TileID          string    `json:"tile_id"`
	Shape           TileShape `json:"shape"`
	Position        GridCell  `json:"position"`
	Success         bool      `json:"success"`
	Issues          []string  `json:"issues,omitempty"`
	Timestamp       int64     `json:"timestamp"`
	PlacementNumber int       `json:"placement_number"`
}
