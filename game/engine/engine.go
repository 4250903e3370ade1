package engine

import (
	"fmt"
	"strings"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool

	// Placement operations
	Place(tileID string, pos GridCell) (PlacementOutcome, error)
	Preview(tileID string, pos GridCell) (PreviewOutcome, error)
	Hints() []Hint
	AvailableTiles() []TileDefinition

	// Board queries
	Snapshot() Snapshot
	Status() PathResult
	Render() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetPlacementHistory() []PlacementEntry
	GetLastPlacement() *PlacementEntry
}

// PlacementOutcome is the result of a placement attempt
type PlacementOutcome struct {
	Success    bool             `json:"success"`
	Tile       TileDefinition   `json:"tile"`
	Position   GridCell         `json:"position"`
	Validation ValidationResult `json:"validation"`
	Path       *PathResult      `json:"path,omitempty"`
	Victory    bool             `json:"victory"`
	Defeat     bool             `json:"defeat"`
}

// PreviewOutcome is the hover feedback for a tile over a cell
type PreviewOutcome struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// Hint lists the tiles that can legally go into one empty cell
type Hint struct {
	Position GridCell `json:"position"`
	TileIDs  []string `json:"tile_ids"`
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	board  *Board
	pool   *TilePool
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	engine := &GameEngine{config: config}
	if err := engine.init(); err != nil {
		return nil, err
	}
	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in level
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("built-in level is invalid: %v", err))
	}
	return engine
}

func (e *GameEngine) init() error {
	board, err := NewBoard(e.config)
	if err != nil {
		return err
	}
	e.board = board
	e.pool = NewTilePool(e.config.PoolTiles())
	e.state = &GameState{
		Message:           e.config.Messages.Welcome,
		ConfigName:        e.config.Name,
		PlacementHistory:  []PlacementEntry{},
		CurrentPlacements: []PlacementEntry{},
	}
	return nil
}

// GetState returns a copy of the current game state with the board and pool
// views filled in. It does not modify the engine.
func (e *GameEngine) GetState() *GameState {
	status := e.Status()
	state := *e.state
	state.Cells = e.board.Cells()
	state.Start = e.board.Start()
	state.Goal = e.board.Goal()
	state.Pool = e.pool.AvailableTiles()
	state.Path = &status
	state.Board = e.board.Render()
	state.PlacementHistory = append([]PlacementEntry{}, e.state.PlacementHistory...)
	state.CurrentPlacements = append([]PlacementEntry{}, e.state.CurrentPlacements...)
	return &state
}

// SetState restores a persisted state onto a fresh board of the current level
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	board, err := NewBoard(e.config)
	if err != nil {
		return err
	}
	for _, cell := range state.Cells {
		if cell.Tile == nil || cell.Fixed {
			continue
		}
		if err := board.Place(cell.Position, *cell.Tile); err != nil {
			return fmt.Errorf("restore state: %w", err)
		}
	}

	e.board = board
	e.pool.Restore(state.Pool)
	e.state = state
	if e.state.PlacementHistory == nil {
		e.state.PlacementHistory = []PlacementEntry{}
	}
	if e.state.CurrentPlacements == nil {
		e.state.CurrentPlacements = []PlacementEntry{}
	}
	return nil
}

// Reset clears the board back to the level's prefilled tiles and refills the pool
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.PlacementHistory
	prevTotal := e.state.TotalPlacements

	board, err := NewBoard(e.config)
	if err == nil {
		e.board = board
	}
	e.pool.Reset()
	e.state = &GameState{
		Message:    e.config.Messages.Welcome,
		ConfigName: e.config.Name,
	}

	e.state.PlacementHistory = prevHistory
	e.state.TotalPlacements = prevTotal
	e.state.CurrentPlacements = []PlacementEntry{}
	e.state.CurrentPlacementsCount = 0

	return e.GetState()
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether Start and Goal have been connected
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// Snapshot captures the current board
func (e *GameEngine) Snapshot() Snapshot {
	return BuildSnapshot(e.board)
}

// Status evaluates the current board against the remaining pool
func (e *GameEngine) Status() PathResult {
	return CheckReachability(e.board.Start(), e.board.Goal(), e.Snapshot(), e.pool)
}

// Render returns the text view of the board
func (e *GameEngine) Render() []string {
	return e.board.Render()
}

// AvailableTiles returns the tiles left in the pool
func (e *GameEngine) AvailableTiles() []TileDefinition {
	return e.pool.AvailableTiles()
}

// Place attempts to put the pool tile tileID at pos
func (e *GameEngine) Place(tileID string, pos GridCell) (PlacementOutcome, error) {
	if e.state.GameOver {
		return PlacementOutcome{}, ErrGameOver
	}
	tile, ok := e.pool.Find(tileID)
	if !ok {
		return PlacementOutcome{}, fmt.Errorf("%w: %s", ErrTileNotInPool, tileID)
	}
	if _, ok := e.board.Cell(pos); !ok {
		return PlacementOutcome{}, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}

	snap := e.Snapshot()
	outcome := PlacementOutcome{Tile: tile, Position: pos}
	outcome.Validation = ValidatePlacement(pos, tile.Mask(), snap)

	if outcome.Validation.Valid && e.config.GlobalValidation &&
		!CanPlaceWithPath(pos, tile.Mask(), snap, e.board.Start(), e.board.Goal(), e.pool) {
		outcome.Validation = ValidationResult{
			Valid: false,
			Issues: []string{fmt.Sprintf("placing %s at %s would leave no way to connect Start and Goal",
				tile.Shape, pos)},
		}
	}

	if !outcome.Validation.Valid {
		e.state.AddPlacementToHistory(tile, pos, false, outcome.Validation.Issues)
		e.state.Message = e.rejectedMessage(outcome.Validation.Issues)
		return outcome, nil
	}

	if err := e.board.Place(pos, tile); err != nil {
		return PlacementOutcome{}, err
	}
	e.pool.Remove(tile)
	e.state.AddPlacementToHistory(tile, pos, true, nil)
	outcome.Success = true

	path := e.Status()
	outcome.Path = &path
	switch {
	case path.CurrentlyConnected:
		e.state.Victory = true
		e.state.GameOver = true
		e.state.Message = e.config.Messages.Victory
		outcome.Victory = true
	case !path.PathPossible:
		e.state.GameOver = true
		e.state.Message = e.config.Messages.Defeat
		outcome.Defeat = true
	default:
		e.state.Message = e.placedMessage()
	}
	return outcome, nil
}

func (e *GameEngine) placedMessage() string {
	if e.config.Messages.Placed != "" {
		return e.config.Messages.Placed
	}
	return "Tile placed."
}

func (e *GameEngine) rejectedMessage(issues []string) string {
	msg := e.config.Messages.Rejected
	if msg == "" {
		msg = "Placement rejected."
	}
	if len(issues) > 0 {
		msg += " [" + strings.Join(issues, "; ") + "]"
	}
	return msg
}

// Preview reports whether tileID could go to pos without changing anything
func (e *GameEngine) Preview(tileID string, pos GridCell) (PreviewOutcome, error) {
	tile, ok := e.pool.Find(tileID)
	if !ok {
		return PreviewOutcome{}, fmt.Errorf("%w: %s", ErrTileNotInPool, tileID)
	}
	valid, reason := CanPlaceQuick(pos, tile.Mask(), e.Snapshot())
	return PreviewOutcome{Valid: valid, Reason: reason}, nil
}

// Hints lists, for each empty cell, the pool tiles that can legally be placed there
func (e *GameEngine) Hints() []Hint {
	if e.state.GameOver {
		return []Hint{}
	}
	snap := e.Snapshot()
	start, goal := e.board.Start(), e.board.Goal()
	tiles := e.pool.AvailableTiles()

	hints := []Hint{}
	for _, pos := range e.board.EmptyCells() {
		var ids []string
		for _, tile := range tiles {
			fits := CanPlace(pos, tile.Mask(), snap)
			if fits && e.config.GlobalValidation {
				fits = CanPlaceWithPath(pos, tile.Mask(), snap, start, goal, e.pool)
			}
			if fits {
				ids = append(ids, tile.ID)
			}
		}
		if len(ids) > 0 {
			hints = append(hints, Hint{Position: pos, TileIDs: ids})
		}
	}
	return hints
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new level and restarts the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	prev := e.config
	e.config = config
	if err := e.init(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetPlacementHistory returns the complete placement history
func (e *GameEngine) GetPlacementHistory() []PlacementEntry {
	return e.state.PlacementHistory
}

// GetLastPlacement returns the last placement attempt, or nil if none
func (e *GameEngine) GetLastPlacement() *PlacementEntry {
	if len(e.state.PlacementHistory) == 0 {
		return nil
	}
	return &e.state.PlacementHistory[len(e.state.PlacementHistory)-1]
}
