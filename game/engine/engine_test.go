package engine

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func createTestConfig() *GameConfig {
	return DefaultGameConfig()
}

func mustPlace(t *testing.T, e *GameEngine, tileID string, x, y int) PlacementOutcome {
	t.Helper()
	outcome, err := e.Place(tileID, GridCell{X: x, Y: y})
	if err != nil {
		t.Fatalf("Place(%s, (%d,%d)) failed: %v", tileID, x, y, err)
	}
	return outcome
}

// solveDefault plays the built-in level to victory
func solveDefault(t *testing.T, e *GameEngine) PlacementOutcome {
	t.Helper()
	steps := []struct {
		id   string
		x, y int
	}{
		{"start-cap", 0, 0},
		{"straight-1", 1, 0},
		{"straight-2", 2, 0},
		{"corner", 3, 0},
		{"riser", 3, 1},
	}
	for _, s := range steps {
		outcome := mustPlace(t, e, s.id, s.x, s.y)
		if !outcome.Success {
			t.Fatalf("Expected %s at (%d,%d) to succeed: %v", s.id, s.x, s.y, outcome.Validation.Issues)
		}
		if outcome.Victory || outcome.Defeat {
			t.Fatalf("Game ended early after %s", s.id)
		}
	}
	return mustPlace(t, e, "goal-cap", 3, 2)
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	state := engine.GetState()
	if state.Message != config.Messages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if len(state.Pool) != len(config.Pool) {
		t.Errorf("Expected %d pool tiles, got %d", len(config.Pool), len(state.Pool))
	}
	if state.Start == nil || *state.Start != (GridCell{X: 0, Y: 0}) {
		t.Errorf("Unexpected start %v", state.Start)
	}
	if state.Goal == nil || *state.Goal != (GridCell{X: 3, Y: 2}) {
		t.Errorf("Unexpected goal %v", state.Goal)
	}
	if len(state.Cells) != 10 {
		t.Errorf("Expected 10 playable cells, got %d", len(state.Cells))
	}
	if engine.IsGameOver() || engine.IsVictory() {
		t.Error("Expected a fresh game")
	}
	if state.Path == nil || !state.Path.PathPossible {
		t.Error("Expected the fresh level to be solvable")
	}

	if _, err := NewEngine(&GameConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestEngineGetStateIsACopy(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	before := engine.GetState()
	mustPlace(t, engine, "start-cap", 0, 0)
	after := engine.GetState()

	if before == after {
		t.Fatal("Expected a new state value on every call")
	}
	if before.TotalPlacements != 0 || len(before.PlacementHistory) != 0 {
		t.Errorf("Earlier state changed after a placement: %+v", before.PlacementHistory)
	}
	if len(before.Pool) != len(after.Pool)+1 {
		t.Errorf("Expected the earlier pool to keep %d tiles, got %d", len(after.Pool)+1, len(before.Pool))
	}

	after.Message = "edited"
	after.PlacementHistory[0].TileID = "edited"
	again := engine.GetState()
	if again.Message == "edited" || again.PlacementHistory[0].TileID == "edited" {
		t.Error("Editing a returned state changed the engine")
	}
}

func TestEnginePlaceToVictory(t *testing.T) {
	engine := NewEngineWithDefaults()
	outcome := solveDefault(t, engine)

	if !outcome.Success || !outcome.Victory {
		t.Fatalf("Expected the last tile to win, got %+v", outcome)
	}
	if outcome.Path == nil || !outcome.Path.CurrentlyConnected {
		t.Error("Expected a connected path in the outcome")
	}
	if !engine.IsVictory() || !engine.IsGameOver() {
		t.Error("Expected victory to end the game")
	}
	if engine.GetState().Message != engine.GetConfig().Messages.Victory {
		t.Errorf("Expected victory message, got %q", engine.GetState().Message)
	}
	if got := len(engine.AvailableTiles()); got != 2 {
		t.Errorf("Expected 2 tiles left, got %d", got)
	}

	if _, err := engine.Place("cross", GridCell{X: 0, Y: 1}); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver after victory, got %v", err)
	}
}

func TestEnginePlaceDefeat(t *testing.T) {
	engine := NewEngineWithDefaults()
	// The start cell facing off the board can never be linked
	outcome := mustPlace(t, engine, "goal-cap", 0, 0)

	if !outcome.Success {
		t.Fatalf("Expected the first tile to be accepted, got %v", outcome.Validation.Issues)
	}
	if !outcome.Defeat || outcome.Victory {
		t.Errorf("Expected defeat, got %+v", outcome)
	}
	if !engine.IsGameOver() || engine.IsVictory() {
		t.Error("Expected the game to be lost")
	}
	if engine.GetState().Message != engine.GetConfig().Messages.Defeat {
		t.Errorf("Expected defeat message, got %q", engine.GetState().Message)
	}
}

func TestEngineGlobalValidation(t *testing.T) {
	config := createTestConfig()
	config.GlobalValidation = true
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	outcome := mustPlace(t, engine, "goal-cap", 0, 0)
	if outcome.Success {
		t.Fatal("Expected a placement that blocks the goal to be rejected")
	}
	if len(outcome.Validation.Issues) != 1 || !strings.Contains(outcome.Validation.Issues[0], "no way to connect") {
		t.Errorf("Unexpected issues %v", outcome.Validation.Issues)
	}
	if engine.IsGameOver() {
		t.Error("A rejected placement must not end the game")
	}
	if len(engine.AvailableTiles()) != len(config.Pool) {
		t.Error("A rejected placement must not consume a tile")
	}

	last := engine.GetLastPlacement()
	if last == nil || last.Success || last.TileID != "goal-cap" {
		t.Errorf("Expected failed attempt in history, got %+v", last)
	}

	if outcome := solveDefault(t, engine); !outcome.Victory {
		t.Error("Expected the level to stay solvable with global validation")
	}
}

func TestEnginePlaceRejected(t *testing.T) {
	engine := NewEngineWithDefaults()
	mustPlace(t, engine, "start-cap", 0, 0)

	outcome := mustPlace(t, engine, "riser", 2, 0)
	if outcome.Success {
		t.Fatal("Expected an unconnected tile to be rejected")
	}
	if len(outcome.Validation.Issues) == 0 {
		t.Error("Expected issues for the rejected tile")
	}
	if !strings.HasPrefix(engine.GetState().Message, engine.GetConfig().Messages.Rejected) {
		t.Errorf("Expected rejected message, got %q", engine.GetState().Message)
	}
	if _, ok := engine.pool.Find("riser"); !ok {
		t.Error("Rejected tile must stay in the pool")
	}

	history := engine.GetPlacementHistory()
	if len(history) != 2 || !history[0].Success || history[1].Success {
		t.Errorf("Unexpected history %+v", history)
	}
	if history[1].PlacementNumber != 2 {
		t.Errorf("Expected placement number 2, got %d", history[1].PlacementNumber)
	}
}

func TestEnginePlaceErrors(t *testing.T) {
	engine := NewEngineWithDefaults()

	if _, err := engine.Place("missing", GridCell{X: 0, Y: 0}); !errors.Is(err, ErrTileNotInPool) {
		t.Errorf("Expected ErrTileNotInPool, got %v", err)
	}
	if _, err := engine.Place("cross", GridCell{X: 1, Y: 1}); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("Expected ErrInvalidPosition for a wall cell, got %v", err)
	}
	if len(engine.GetPlacementHistory()) != 0 {
		t.Error("Errors must not be recorded as placement attempts")
	}
}

func TestEngineReset(t *testing.T) {
	engine := NewEngineWithDefaults()
	solveDefault(t, engine)
	mustPlaceHistory := engine.GetState().TotalPlacements

	state := engine.Reset()
	if state.GameOver || state.Victory {
		t.Error("Expected reset to restart the game")
	}
	if len(state.Pool) != len(engine.GetConfig().Pool) {
		t.Errorf("Expected full pool after reset, got %d", len(state.Pool))
	}
	for _, cell := range state.Cells {
		if cell.Tile != nil {
			t.Errorf("Expected empty board after reset, found tile at %s", cell.Position)
		}
	}
	if state.TotalPlacements != mustPlaceHistory {
		t.Errorf("Expected cumulative history to survive reset, got %d", state.TotalPlacements)
	}
	if state.CurrentPlacementsCount != 0 || len(state.CurrentPlacements) != 0 {
		t.Error("Expected current placements to be cleared")
	}
	if state.Message != engine.GetConfig().Messages.Welcome {
		t.Errorf("Expected welcome message after reset, got %q", state.Message)
	}
}

func TestEngineResetKeepsPrefilledTiles(t *testing.T) {
	config := createTestConfig()
	config.Layout = []string{"S━.G"}
	config.Pool = []TileDefinition{{ID: "cap", Shape: DeadEndRight}}
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	mustPlace(t, engine, "cap", 0, 0)
	engine.Reset()
	rows := engine.Render()
	if len(rows) != 1 || rows[0] != "S━.G" {
		t.Errorf("Expected prefilled straight to survive reset, got %v", rows)
	}
}

func TestEnginePreview(t *testing.T) {
	engine := NewEngineWithDefaults()

	preview, err := engine.Preview("cross", GridCell{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if !preview.Valid || preview.Reason != ReasonValid {
		t.Errorf("Expected valid preview, got %+v", preview)
	}

	preview, _ = engine.Preview("cross", GridCell{X: 1, Y: 1})
	if preview.Valid || preview.Reason != ReasonOutOfBounds {
		t.Errorf("Expected out of bounds preview, got %+v", preview)
	}

	if _, err := engine.Preview("missing", GridCell{}); !errors.Is(err, ErrTileNotInPool) {
		t.Errorf("Expected ErrTileNotInPool, got %v", err)
	}
	if len(engine.GetPlacementHistory()) != 0 {
		t.Error("Preview must not change the game")
	}
}

func TestEngineHints(t *testing.T) {
	engine := NewEngineWithDefaults()

	hints := engine.Hints()
	if len(hints) != 10 {
		t.Fatalf("Expected a hint for each of the 10 empty cells, got %d", len(hints))
	}
	for _, h := range hints {
		if len(h.TileIDs) != 8 {
			t.Errorf("Any tile can open an empty board, got %d at %s", len(h.TileIDs), h.Position)
		}
	}

	mustPlace(t, engine, "start-cap", 0, 0)
	byCell := make(map[GridCell][]string)
	for _, h := range engine.Hints() {
		byCell[h.Position] = h.TileIDs
	}
	if _, ok := byCell[GridCell{X: 0, Y: 1}]; ok {
		t.Error("Nothing can connect below a tile opening only to the right")
	}
	ids := strings.Join(byCell[GridCell{X: 1, Y: 0}], ",")
	if !strings.Contains(ids, "straight-1") || strings.Contains(ids, "elbow") {
		t.Errorf("Unexpected hints for (1,0): %s", ids)
	}
}

func TestEngineRender(t *testing.T) {
	engine := NewEngineWithDefaults()
	want := []string{"S...", ".##.", "...G"}
	got := engine.Render()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Render() = %v, want %v", got, want)
	}

	mustPlace(t, engine, "start-cap", 0, 0)
	if got := engine.Render()[0]; got != "╺..." {
		t.Errorf("Expected placed tile glyph, got %q", got)
	}
}

func TestEngineSetStateRoundTrip(t *testing.T) {
	original := NewEngineWithDefaults()
	mustPlace(t, original, "start-cap", 0, 0)
	mustPlace(t, original, "straight-1", 1, 0)

	data, err := json.Marshal(original.GetState())
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}
	var restored GameState
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal state: %v", err)
	}

	copyEngine := NewEngineWithDefaults()
	if err := copyEngine.SetState(&restored); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if strings.Join(copyEngine.Render(), "\n") != strings.Join(original.Render(), "\n") {
		t.Errorf("Boards differ after restore: %v vs %v", copyEngine.Render(), original.Render())
	}
	if len(copyEngine.AvailableTiles()) != len(original.AvailableTiles()) {
		t.Error("Pools differ after restore")
	}
	if copyEngine.GetState().TotalPlacements != 2 {
		t.Errorf("Expected 2 placements after restore, got %d", copyEngine.GetState().TotalPlacements)
	}

	if err := copyEngine.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
	bad := &GameState{Cells: []BoardCell{{Position: GridCell{X: 1, Y: 1}, Tile: &TileDefinition{ID: "x", Shape: Cross}}}}
	if err := copyEngine.SetState(bad); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("Expected ErrInvalidPosition for a tile off the board, got %v", err)
	}
}

func TestEngineGeneratedBoard(t *testing.T) {
	config := createTestConfig()
	config.Layout = nil
	config.Level = 3
	config.Seed = 11
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	state := engine.GetState()
	if len(state.Cells) != ResolveSize(3) {
		t.Errorf("Expected %d cells, got %d", ResolveSize(3), len(state.Cells))
	}
	if *state.Start == *state.Goal {
		t.Error("Expected distinct start and goal")
	}
	if *state.Start != (GridCell{}) {
		t.Errorf("Expected start at the origin, got %s", *state.Start)
	}
}

func TestEngineSetConfig(t *testing.T) {
	engine := NewEngineWithDefaults()
	mustPlace(t, engine, "start-cap", 0, 0)

	next := createTestConfig()
	next.Name = "Other"
	if err := engine.SetConfig(next); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if engine.GetState().ConfigName != "Other" {
		t.Errorf("Expected config name Other, got %s", engine.GetState().ConfigName)
	}
	if len(engine.GetPlacementHistory()) != 0 {
		t.Error("Expected a new level to start with empty history")
	}

	if err := engine.SetConfig(&GameConfig{Name: "broken"}); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
	if engine.GetConfig().Name != "Other" {
		t.Error("A rejected config must not replace the current one")
	}
}
