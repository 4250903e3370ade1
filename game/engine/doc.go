// Package engine provides the core rules of the tile path game.
//
// The engine package implements the game mechanics including:
//   - The connector catalog of the fifteen tile shapes
//   - Read-only board snapshots
//   - Single placement validation
//   - Start/Goal reachability and path feasibility
//   - The tile pool and the level board
//
// Core Types:
//
// ValidatePlacement, CanPlace and CheckReachability are pure functions of a
// Snapshot, built from any SnapshotSource. TilePool is the player's inventory.
// The Engine interface, implemented by GameEngine, drives a whole level loaded
// from a YAML GameConfig.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := gameEngine.Place("tile-1", engine.GridCell{X: 1, Y: 0})
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Each tile opens connectors on up to four sides. A placed tile must agree with
// every occupied neighbour: both sides open or both closed. Apart from the
// first tile on an empty board, a tile must form at least one mutual
// connection. The game is won when Start and Goal are linked through mutual
// connections, and lost when the remaining pool can no longer complete a link.
package engine
