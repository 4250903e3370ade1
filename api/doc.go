// Package api provides the HTTP REST handlers for the tile path game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "tutorial"}; empty uses the default level)
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Several sessions at once (?sessionIds=a,b or ?config=tutorial)
//   - GET /api/sessions/{id} - Session info with state and level
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current GameState
//   - POST /api/sessions/{id}/place - Place a tile: {"tile_id": "corner", "x": 3, "y": 0}
//   - GET|POST /api/sessions/{id}/preview - Hover check without side effects
//   - POST /api/sessions/{id}/reset - Restore board and pool, keep cumulative history
//   - GET /api/sessions/{id}/hints - Legal tiles per empty cell
//   - GET /api/sessions/{id}/path - Start/Goal reachability
//   - GET /api/sessions/{id}/history - Placement history (?page=1&limit=20&order=desc)
//
// Levels:
//   - GET /api/configs - List levels
//   - POST /api/configs - Save a level (GameConfig JSON, optional "config_id")
//   - GET /api/configs/{name} - Fetch one level
//
// Also /ws?session=<id> for WebSocket state updates and /health.
//
// Error Handling:
//
// Errors are JSON objects with an HTTP status code:
//
//	{"error": "session abcd: session not found", "code": 404}
//
// Unknown sessions and levels map to 404, bad tiles, cells and levels to 400,
// and placements after the game ended to 409. A rejected placement is not an
// error: it returns 200 with "success": false and the validation issues.
package api
