// Command autoplay plays a level through the REST API. Each attempt resets
// the session, plans a route from Start to Goal with the remaining pool and
// drops the planned tiles one by one.
//
// Usage:
//
//	go run ./cmd/autoplay --url http://localhost:8080 --config classic
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/tile-path-game/game/engine"
	"github.com/wricardo/tile-path-game/logger"
)

// ErrNoRoute is returned when no attempt found a route that wins
var ErrNoRoute = errors.New("no winning route found")

// PlayOptions bound how hard the player tries
type PlayOptions struct {
	MaxAttempts int
	Delay       time.Duration
	Verbose     bool
}

// PlayResult summarizes a finished run
type PlayResult struct {
	Attempts   int
	Placements int
	State      *engine.GameState
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play a tile path level through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "config", Usage: "level to play (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-attempts", Value: 10, Usage: "maximum attempts before giving up"},
			&cli.IntFlag{Name: "delay", Usage: "delay between placements in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("Autoplay failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger.Info("Connecting to game server", "url", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	var state *engine.GameState
	var err error
	if id := cmd.String("continue"); id != "" {
		state, err = client.Resume(ctx, id)
		if err != nil {
			logger.Warning("Failed to resume session, creating a new one", "session", id, "error", err)
		}
	}
	if state == nil {
		state, err = client.CreateSession(ctx, cmd.String("config"))
		if err != nil {
			return err
		}
		logger.Info("✨ Session created", "session", client.SessionID(), "level", state.ConfigName)
	}

	result, err := Play(ctx, client, PlayOptions{
		MaxAttempts: int(cmd.Int("max-attempts")),
		Delay:       time.Duration(cmd.Int("delay")) * time.Millisecond,
		Verbose:     cmd.Bool("v"),
	})
	if err != nil {
		return fmt.Errorf("session %s: %w", client.SessionID(), err)
	}

	logger.Info("🎉 VICTORY!", "session", client.SessionID(), "attempt", result.Attempts, "placements", result.Placements)
	return nil
}

// Play resets the session and tries planned routes until one wins
func Play(ctx context.Context, client *Client, opts PlayOptions) (*PlayResult, error) {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	var state *engine.GameState
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		var err error
		state, err = client.Reset(ctx)
		if err != nil {
			return nil, err
		}

		plan, ok := NewRoutePlanner(state, int64(attempt)).Plan()
		if !ok {
			logger.Info("No route found", "attempt", attempt)
			continue
		}
		logger.Info("Attempt", "number", attempt, "max", opts.MaxAttempts, "placements", len(plan))

		placed := 0
		for _, step := range plan {
			result, err := client.Place(ctx, step.TileID, step.Position)
			if err != nil {
				return nil, err
			}
			state = result.GameState
			if !result.Success {
				logger.Info("Placement rejected", "tile", step.TileID, "position", step.Position, "issues", result.Validation.Issues)
				break
			}
			placed++
			if opts.Verbose {
				logger.Info("Placed", "tile", step.TileID, "shape", step.Shape, "position", step.Position, "tiles_left", result.TilesLeft)
			}
			if result.Victory || result.Defeat {
				break
			}
			if opts.Delay > 0 {
				time.Sleep(opts.Delay)
			}
		}

		if state != nil && state.Victory {
			return &PlayResult{Attempts: attempt, Placements: placed, State: state}, nil
		}
		logger.Info("Attempt failed", "number", attempt, "placed", placed)
	}
	return nil, ErrNoRoute
}
