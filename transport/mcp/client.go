package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Path Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Path Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Place tiles from the pool onto the board so that connectors form an unbroken
line from the Start cell (S) to the Goal cell (G).

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage games
- game_state: board, pool, path status
- place_tile: place one pool tile on a cell - requires intent explanation
- preview_tile: check a placement without changing anything
- hints: which pool tiles fit which empty cells
- check_path: can Start still reach Goal, and how many tiles are needed
- reset_game: restore the level's board and pool
- placement_history: past placement attempts
- list_configs: available levels
- game_instructions: rules and coordinate system

NOTE: The 'intent' parameter on place_tile serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func placementProperties() map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionProperty(),
		"tile_id": map[string]interface{}{
			"type":        "string",
			"description": "ID of a tile in the pool (see game_state)",
		},
		"x": map[string]interface{}{
			"type":        "integer",
			"description": "Column, 0 is the left edge",
		},
		"y": map[string]interface{}{
			"type":        "integer",
			"description": "Row, 0 is the top edge; y grows downwards",
		},
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{"session_id": sessionProperty()},
		Required:   []string{"session_id"},
	}
}

func emptySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally choosing a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (see list_configs); empty uses the default level",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: emptySchema(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the board, the remaining tile pool and the Start/Goal path status",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	placeProps := placementProperties()
	placeProps["intent"] = map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of why this tile goes here (serves as a rubber duck to help explain your reasoning)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_tile",
		Description: "Place a tile from the pool on an empty cell. Connectors must match every occupied neighbour.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: placeProps,
			Required:   []string{"session_id", "tile_id", "x", "y"},
		},
	}, c.handlePlaceTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "preview_tile",
		Description: "Check whether a tile could be placed on a cell, without placing it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: placementProperties(),
			Required:   []string{"session_id", "tile_id", "x", "y"},
		},
	}, c.handlePreviewTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hints",
		Description: "List, for each empty cell, the pool tiles that fit there",
		InputSchema: sessionOnlySchema(),
	}, c.handleHints)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "check_path",
		Description: "Report whether Start and Goal are connected, whether they still can be, and the minimum tiles needed",
		InputSchema: sessionOnlySchema(),
	}, c.handleCheckPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the board and pool to the level's initial state",
		InputSchema: sessionOnlySchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "placement_history",
		Description: "Get placement history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Entries per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlacementHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available levels",
		InputSchema: emptySchema(),
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules, tile shapes and coordinate system",
		InputSchema: emptySchema(),
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg accepts the numeric forms JSON decoding and direct callers produce
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// placementArgs extracts session, tile and cell, or returns a tool error result
func placementArgs(request mcp.CallToolRequest) (string, map[string]interface{}, *mcp.CallToolResult) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	tileID := stringArg(args, "tile_id")
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	switch {
	case sessionID == "":
		return "", nil, mcp.NewToolResultError("session_id is required")
	case tileID == "":
		return "", nil, mcp.NewToolResultError("tile_id is required")
	case !okX || !okY:
		return "", nil, mcp.NewToolResultError("x and y are required integers")
	}
	return sessionID, map[string]interface{}{"tile_id": tileID, "x": x, "y": y}, nil
}

func requireSession(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	sessionID := stringArg(request.GetArguments(), "session_id")
	if sessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := stringArg(request.GetArguments(), "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil && s.GameState.Victory {
			status = "won"
		} else if s.GameState != nil && s.GameState.GameOver {
			status = "lost"
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePlaceTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, body, errResult := placementArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	// intent is only for the caller's benefit

	var result service.PlaceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPlaceResult(&result)), nil
}

func (c *Client) handlePreviewTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, body, errResult := placementArgs(request)
	if errResult != nil {
		return errResult, nil
	}

	var result service.PreviewResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/preview"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	verdict := "✅ fits"
	if !result.Valid {
		verdict = "❌ does not fit"
	}
	text := fmt.Sprintf("%s at %s %s: %s", result.TileID, result.Position, verdict, result.Reason)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleHints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var hints service.HintsResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hints"), nil, &hints); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHints(&hints)), nil
}

func (c *Client) handleCheckPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var path engine.PathResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/path"), nil, &path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPath(&path)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request)
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlacementHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request)
	if errResult != nil {
		return errResult, nil
	}

	args := request.GetArguments()
	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := stringArg(args, "order"); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Level %d, %d cells, %d tiles",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Level, cfg.BoardCells, cfg.PoolSize)
		if cfg.GlobalValidation {
			b.WriteString(", strict path checking")
		}
		b.WriteString("\n\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions()), nil
}

func instructions() string {
	var b strings.Builder
	b.WriteString(`Tile Path Game - Instructions

GAME OBJECTIVE:
Build an unbroken line of connectors from the Start cell (S) to the Goal cell (G)
using the tiles in your pool.

COORDINATES:
• (x, y) with x = column and y = row, both starting at 0 in the top-left corner
• y grows DOWNWARDS: "Up" from (2,3) is (2,2), "Down" is (2,4)

PLACEMENT RULES:
• Each tile can be used once; placed tiles leave the pool
• The target cell must be on the board and empty
• For every occupied neighbour, both tiles must open towards each other or both must be closed
• Once the board has tiles, a new tile must connect to at least one of them
• Some levels also reject tiles that would make Start and Goal impossible to connect

END OF GAME:
• Victory: Start and Goal are joined by matching connectors
• Defeat: the remaining pool can no longer complete any path

TILE SHAPES (name: open sides):
`)
	for _, shape := range engine.AllShapes() {
		fmt.Fprintf(&b, "• %s %s: %s\n", shape.Glyph(), shape, engine.ConnectorsOf(shape))
	}
	b.WriteString(`
STRATEGY:
• Call check_path first: it tells you how many empty cells a path still needs
• Use hints or preview_tile before placing when unsure
• Work outward from S or G so every tile has a neighbour to connect to
• Save flexible tiles (crosses, T-junctions) for the cells where the path turns
`)
	return b.String()
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state"
	}

	var b strings.Builder
	switch {
	case state.Victory:
		b.WriteString("🎉 VICTORY!\n")
	case state.GameOver:
		b.WriteString("💀 GAME OVER\n")
	}
	if state.ConfigName != "" {
		fmt.Fprintf(&b, "Level: %s\n", state.ConfigName)
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	if state.Start != nil && state.Goal != nil {
		fmt.Fprintf(&b, "Start: %s  Goal: %s\n", *state.Start, *state.Goal)
	}

	if len(state.Board) > 0 {
		b.WriteString("\nBoard (row y, column x; # is off-board, . is empty):\n")
		b.WriteString(formatBoard(state.Board))
	}

	fmt.Fprintf(&b, "\nPool (%d tiles):\n", len(state.Pool))
	for _, tile := range state.Pool {
		fmt.Fprintf(&b, "  %s %s [%s]\n", tile.Shape.Glyph(), tile.ID, tile.Shape)
	}

	if state.Path != nil {
		b.WriteString("\n" + formatPath(state.Path))
	}
	fmt.Fprintf(&b, "Placements: %d this round, %d total\n", state.CurrentPlacementsCount, state.TotalPlacements)
	return b.String()
}

func formatBoard(rows []string) string {
	width := 0
	for _, row := range rows {
		if n := len([]rune(row)); n > width {
			width = n
		}
	}

	var b strings.Builder
	b.WriteString("    ")
	for x := 0; x < width; x++ {
		fmt.Fprintf(&b, "%d", x%10)
	}
	b.WriteString("\n")
	for y, row := range rows {
		fmt.Fprintf(&b, "%3d %s\n", y, row)
	}
	return b.String()
}

func formatPlaceResult(result *service.PlaceResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✅ Placed %s [%s] at %s\n", result.Tile.ID, result.Tile.Shape, result.Position)
	} else {
		fmt.Fprintf(&b, "❌ Rejected %s [%s] at %s\n", result.Tile.ID, result.Tile.Shape, result.Position)
		for _, issue := range result.Validation.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "%s\n", result.Message)
	}
	fmt.Fprintf(&b, "Tiles left: %d\n", result.TilesLeft)
	if result.GameState != nil {
		b.WriteString("\n" + formatGameState(result.GameState))
	}
	return b.String()
}

func formatHints(hints *service.HintsResult) string {
	if hints.Count == 0 {
		return fmt.Sprintf("No legal placements (%d tiles left)\n", hints.TilesLeft)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Legal placements for %d cells (%d tiles left):\n", hints.Count, hints.TilesLeft)
	for _, hint := range hints.Hints {
		fmt.Fprintf(&b, "  %s: %s\n", hint.Position, strings.Join(hint.TileIDs, ", "))
	}
	return b.String()
}

func formatPath(path *engine.PathResult) string {
	var b strings.Builder
	switch {
	case path.CurrentlyConnected:
		b.WriteString("Path: Start and Goal are connected\n")
	case path.PathPossible:
		b.WriteString("Path: still possible")
		if path.EstimatedTilesNeeded >= 0 {
			fmt.Fprintf(&b, ", at least %d more tiles needed", path.EstimatedTilesNeeded)
		}
		b.WriteString("\n")
	default:
		b.WriteString("Path: no longer possible\n")
	}
	for _, issue := range path.Issues {
		fmt.Fprintf(&b, "  - %s\n", issue)
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Placement History (page %d/%d, %d total):\n",
		history.Page, history.TotalPages, history.TotalPlacements)
	for _, entry := range history.Placements {
		mark := "✓"
		if !entry.Success {
			mark = "✗"
		}
		fmt.Fprintf(&b, "  #%d %s %s [%s] at %s\n", entry.PlacementNumber, mark, entry.TileID, entry.Shape, entry.Position)
		for _, issue := range entry.Issues {
			fmt.Fprintf(&b, "      %s\n", issue)
		}
	}
	if history.HasNext {
		fmt.Fprintf(&b, "More on page %d\n", history.Page+1)
	}
	return b.String()
}
