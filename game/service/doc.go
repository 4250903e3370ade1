// Package service provides the business logic layer for the tile path game.
//
// The service package implements:
//   - Multi-session game management
//   - Level loading through a ConfigManager
//   - Tile placement, hover previews and hints
//   - Start/Goal path status
//   - Placement history with pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages level loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every session owns an engine; a single service mutex
// serialises engine mutations, and sessions are saved after each placement and
// reset.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "tutorial")
//	if err != nil {
//		return err
//	}
//
//	result, err := gameService.PlaceTile(ctx, info.ID, "start-cap", engine.GridCell{X: 0, Y: 0})
//
// Errors:
//
// Unknown sessions wrap ErrSessionNotFound. Engine errors (engine.ErrTileNotInPool,
// engine.ErrInvalidPosition, engine.ErrGameOver) are returned unchanged so
// transports can map them to status codes with errors.Is.
package service
