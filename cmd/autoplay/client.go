package main

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

	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s failed: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// CreateSession starts a session on a level; an empty configID uses the server default
func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume attaches the client to an existing session
func (c *Client) Resume(ctx context.Context, sessionID string) (*engine.GameState, error) {
	c.sessionID = sessionID
	return c.GetState(ctx)
}

func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

// Place drops a tile. A rejected placement is not an error: check result.Success.
func (c *Client) Place(ctx context.Context, tileID string, pos engine.GridCell) (*service.PlaceResult, error) {
	req := map[string]interface{}{"tile_id": tileID, "x": pos.X, "y": pos.Y}

	var result service.PlaceResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/place"), req, &result); err != nil {
		return nil, fmt.Errorf("place %s at %s: %w", tileID, pos, err)
	}
	return &result, nil
}

type ResetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) Reset(ctx context.Context) (*engine.GameState, error) {
	var resetResp ResetResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &resetResp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resetResp.State, nil
}
