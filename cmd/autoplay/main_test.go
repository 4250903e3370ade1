package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/tile-path-game/api"
	"github.com/wricardo/tile-path-game/game/config"
	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/game/service"
	"github.com/wricardo/tile-path-game/game/session"
)

func loadLevel(t *testing.T, name string) *engine.GameConfig {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("../../configs", name+".yaml"))
	if err != nil {
		t.Fatalf("Failed to read level %s: %v", name, err)
	}
	cfg, err := engine.ParseGameConfig(data)
	if err != nil {
		t.Fatalf("Failed to parse level %s: %v", name, err)
	}
	return cfg
}

func blockedLevel() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Blocked",
		Description: "Only vertical straights for a horizontal row",
		Level:       1,
		Layout:      []string{"S..G"},
		Pool: []engine.TileDefinition{
			{ID: "v1", Shape: engine.StraightVertical},
			{ID: "v2", Shape: engine.StraightVertical},
		},
		Messages: engine.Messages{Welcome: "Go", Victory: "Won", Defeat: "Lost"},
	}
}

// playPlan drops every planned tile on a local engine
func playPlan(t *testing.T, eng *engine.GameEngine, plan []Placement) {
	t.Helper()
	for _, step := range plan {
		outcome, err := eng.Place(step.TileID, step.Position)
		if err != nil {
			t.Fatalf("Place %s at %s failed: %v", step.TileID, step.Position, err)
		}
		if !outcome.Success {
			t.Fatalf("Place %s at %s rejected: %v", step.TileID, step.Position, outcome.Validation.Issues)
		}
	}
}

func TestRoutePlanner(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantSteps int
	}{
		{"tutorial", "tutorial", 4},
		{"classic with a fixed tile", "classic", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := engine.NewEngine(loadLevel(t, tt.level))
			if err != nil {
				t.Fatalf("NewEngine failed: %v", err)
			}

			for seed := int64(1); seed <= 3; seed++ {
				eng.Reset()
				plan, ok := NewRoutePlanner(eng.GetState(), seed).Plan()
				if !ok {
					t.Fatalf("Expected a route with seed %d", seed)
				}
				if len(plan) < tt.wantSteps {
					t.Errorf("Expected at least %d placements, got %d", tt.wantSteps, len(plan))
				}

				playPlan(t, eng, plan)
				if !eng.IsVictory() {
					t.Errorf("Expected victory after the planned route with seed %d", seed)
				}
			}
		})
	}
}

func TestRoutePlannerTutorialOrder(t *testing.T) {
	eng, err := engine.NewEngine(loadLevel(t, "tutorial"))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	plan, ok := NewRoutePlanner(eng.GetState(), 1).Plan()
	if !ok {
		t.Fatal("Expected a route")
	}
	want := []struct {
		shape engine.TileShape
		x     int
	}{
		{engine.DeadEndRight, 0},
		{engine.StraightHorizontal, 1},
		{engine.StraightHorizontal, 2},
		{engine.DeadEndLeft, 3},
	}
	if len(plan) != len(want) {
		t.Fatalf("Expected %d placements, got %+v", len(want), plan)
	}
	for i, w := range want {
		if plan[i].Shape != w.shape || plan[i].Position != (engine.GridCell{X: w.x, Y: 0}) {
			t.Errorf("Step %d: expected %s at (%d,0), got %s at %s", i, w.shape, w.x, plan[i].Shape, plan[i].Position)
		}
	}
}

func TestRoutePlannerNoRoute(t *testing.T) {
	eng, err := engine.NewEngine(blockedLevel())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if plan, ok := NewRoutePlanner(eng.GetState(), 1).Plan(); ok {
		t.Errorf("Expected no route, got %+v", plan)
	}
}

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		a, b engine.GridCell
		want int
	}{
		{engine.GridCell{X: 0, Y: 0}, engine.GridCell{X: 4, Y: 3}, 7},
		{engine.GridCell{X: 2, Y: 2}, engine.GridCell{X: 2, Y: 2}, 0},
		{engine.GridCell{X: -1, Y: 0}, engine.GridCell{X: 1, Y: -2}, 4},
	}
	for _, tt := range tests {
		if got := manhattanDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("manhattanDistance(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func newGameServer(t *testing.T, configDir string) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager(configDir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configs)
	server := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(server.Close)
	return server
}

func TestPlay(t *testing.T) {
	server := newGameServer(t, "../../configs")
	ctx := context.Background()

	for _, level := range []string{"tutorial", "classic"} {
		t.Run(level, func(t *testing.T) {
			client := NewClient(server.URL + "/")
			state, err := client.CreateSession(ctx, level)
			if err != nil {
				t.Fatalf("CreateSession failed: %v", err)
			}
			if client.SessionID() == "" || state == nil {
				t.Fatal("Expected a session with state")
			}

			result, err := Play(ctx, client, PlayOptions{MaxAttempts: 3})
			if err != nil {
				t.Fatalf("Play failed: %v", err)
			}
			if !result.State.Victory || result.Attempts != 1 {
				t.Errorf("Expected victory on the first attempt, got %+v", result)
			}

			// The server agrees
			state, err = client.GetState(ctx)
			if err != nil {
				t.Fatalf("GetState failed: %v", err)
			}
			if !state.Victory || state.CurrentPlacementsCount != result.Placements {
				t.Errorf("Expected server victory with %d placements, got victory=%v count=%d",
					result.Placements, state.Victory, state.CurrentPlacementsCount)
			}
		})
	}
}

func TestPlayNoRoute(t *testing.T) {
	dir := t.TempDir()
	data, err := engine.MarshalGameConfig(blockedLevel())
	if err != nil {
		t.Fatalf("Failed to marshal level: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "blocked.yaml"), data, 0644); err != nil {
		t.Fatal(err)
	}

	server := newGameServer(t, dir)
	client := NewClient(server.URL)
	ctx := context.Background()

	if _, err := client.CreateSession(ctx, "blocked"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := Play(ctx, client, PlayOptions{MaxAttempts: 2}); !errors.Is(err, ErrNoRoute) {
		t.Errorf("Expected ErrNoRoute, got %v", err)
	}
}

func TestClientErrors(t *testing.T) {
	server := newGameServer(t, "../../configs")
	ctx := context.Background()

	client := NewClient(server.URL)
	if _, err := client.CreateSession(ctx, "missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected a not found error, got %v", err)
	}
	if _, err := client.Resume(ctx, "zzzz"); err == nil || !strings.Contains(err.Error(), "session not found") {
		t.Errorf("Expected session not found, got %v", err)
	}

	unreachable := NewClient("http://127.0.0.1:1")
	if _, err := unreachable.CreateSession(ctx, ""); err == nil {
		t.Error("Expected error for an unreachable server")
	}
}
