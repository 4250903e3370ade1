// Package mcp exposes the tile path game to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API, and the JSON response is rendered as plain text for the agent. The same
// MCPServer serves both transports:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp on the main server
//
// MCP Tools:
//   - create_session, get_session, list_sessions
//   - game_state: board with coordinates, pool and path status
//   - place_tile, preview_tile: tile_id plus x, y (y grows downwards)
//   - hints, check_path
//   - reset_game, placement_history
//   - list_configs, game_instructions
//
// REST failures come back as tool results with IsError set, not as Go errors,
// so agents see the server's message.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		return err
//	}
package mcp
