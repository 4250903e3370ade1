// Package config provides level management for the tile path game.
//
// The config package handles:
//   - Loading levels from YAML files (.yaml or .yml)
//   - Level validation through engine.ValidateGameConfig
//   - Default level selection
//   - Level discovery and listing
//
// Level Format:
//
// Each level is a YAML document with a name, a description, an optional text
// layout, the tile pool and the player-facing messages:
//
//	name: Tutorial
//	description: Connect the two ends
//	level: 1
//	global_validation: true
//	layout:
//	  - "S..G"
//	pool:
//	  - shape: DeadEndRight
//	  - {id: middle, shape: StraightHorizontal}
//	  - shape: "━"
//	  - shape: DeadEndLeft
//	messages:
//	  welcome: Connect Start to Goal
//	  victory: Connected!
//	  defeat: No way through any more
//
// Layout characters: '#' or ' ' outside the board, '.' empty slot, 'S' start,
// 'G' goal, and any tile glyph for a prefilled tile. A level without a layout
// gets a generated board of 4+level cells.
//
// Default Level:
//
// The manager uses "classic" when present, otherwise the first readable level
// in the directory, otherwise the built-in engine level.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		return err
//	}
//	level, err := manager.LoadConfig("tutorial")
//
// Loaded levels are cached; RefreshCache drops the cache after files change.
package config
