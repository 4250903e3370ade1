package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tutorialYAML = `name: Tutorial
description: Connect the two ends
level: 1
global_validation: true
layout:
  - "S..G"
pool:
  - shape: DeadEndRight
  - {id: middle, shape: "━"}
  - shape: straighthorizontal
  - shape: DeadEndLeft
messages:
  welcome: Hello
  victory: Done
  defeat: Stuck
`

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"valid", func(c *GameConfig) {}, ""},
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"negative level", func(c *GameConfig) { c.Level = -1 }, "level must be between"},
		{"level too high", func(c *GameConfig) { c.Level = MaxLevel + 1 }, "level must be between"},
		{"bad character", func(c *GameConfig) { c.Layout = []string{"S.xG"} }, "invalid character 'x' at row 1, col 3"},
		{"two starts", func(c *GameConfig) { c.Layout = []string{"S.SG"} }, "exactly one start"},
		{"no goal", func(c *GameConfig) { c.Layout = []string{"S..."} }, "exactly one goal"},
		{"prefilled glyph", func(c *GameConfig) { c.Layout = []string{"S╋#G"} }, ""},
		{"generated board", func(c *GameConfig) { c.Layout = nil }, ""},
		{"empty pool", func(c *GameConfig) { c.Pool = nil }, "pool must contain"},
		{"unknown shape", func(c *GameConfig) { c.Pool = []TileDefinition{{ID: "a"}} }, "unknown shape"},
		{"duplicate ids", func(c *GameConfig) {
			c.Pool = []TileDefinition{{ID: "a", Shape: Cross}, {ID: "a", Shape: Cross}}
		}, "share id"},
		{"generated id collision", func(c *GameConfig) {
			c.Pool = []TileDefinition{{Shape: Cross}, {ID: "tile-1", Shape: Cross}}
		}, "share id"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome"},
		{"missing victory", func(c *GameConfig) { c.Messages.Victory = "" }, "messages.victory"},
		{"missing defeat", func(c *GameConfig) { c.Messages.Defeat = "" }, "messages.defeat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGameConfig()
			tt.mutate(config)
			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}

	if err := ValidateGameConfig(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil config, got %v", err)
	}
}

func TestParseGameConfig(t *testing.T) {
	config, err := ParseGameConfig([]byte(tutorialYAML))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	if !config.GlobalValidation || config.Level != 1 {
		t.Errorf("Unexpected config %+v", config)
	}

	tiles := config.PoolTiles()
	if len(tiles) != 4 {
		t.Fatalf("Expected 4 tiles, got %d", len(tiles))
	}
	wantIDs := []string{"tile-1", "middle", "tile-3", "tile-4"}
	wantShapes := []TileShape{DeadEndRight, StraightHorizontal, StraightHorizontal, DeadEndLeft}
	for i := range tiles {
		if tiles[i].ID != wantIDs[i] || tiles[i].Shape != wantShapes[i] {
			t.Errorf("Tile %d = %+v, want %s %s", i, tiles[i], wantIDs[i], wantShapes[i])
		}
	}

	if _, err := ParseGameConfig([]byte("name: [")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for malformed YAML, got %v", err)
	}
	if _, err := ParseGameConfig([]byte(strings.Replace(tutorialYAML, "DeadEndLeft", "Spiral", 1))); err == nil {
		t.Error("Expected error for unknown shape name")
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tutorial.yaml")
	if err := os.WriteFile(path, []byte(tutorialYAML), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "Tutorial" {
		t.Errorf("Expected Tutorial, got %s", config.Name)
	}

	t.Setenv("CONFIG_DIR", dir)
	config, err = LoadGameConfig("configs/tutorial.yaml")
	if err != nil {
		t.Fatalf("Expected CONFIG_DIR to be honoured: %v", err)
	}
	if config.Messages.Welcome != "Hello" {
		t.Errorf("Unexpected welcome %q", config.Messages.Welcome)
	}

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestMarshalGameConfigReadsBack(t *testing.T) {
	data, err := MarshalGameConfig(DefaultGameConfig())
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if !strings.Contains(string(data), "shape: DeadEndRight") {
		t.Errorf("Expected shapes written by name:\n%s", data)
	}
	config, err := ParseGameConfig(data)
	if err != nil {
		t.Fatalf("Marshalled config does not parse: %v", err)
	}
	if len(config.Layout) != 3 || config.Layout[1] != ".##." {
		t.Errorf("Unexpected layout %v", config.Layout)
	}
}
