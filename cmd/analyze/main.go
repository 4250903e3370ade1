// Command analyze prints quick, human-readable heuristics about level files.
// It summarizes board bounds, cell counts and the pool's shape mix, and
// highlights missing connector directions and pools too small to finish the
// route from Start to Goal.
//
// Usage:
//
//	go run ./cmd/analyze [file.yaml|dir ...]
//
// Without arguments every level in configs/ is analyzed.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/tile-path-game/game/engine"
)

// LevelAnalysis holds the numbers printed for one level
type LevelAnalysis struct {
	Name        string
	Level       int
	Cells       int
	Empty       int
	Fixed       int
	TopLeft     engine.GridCell
	BottomRight engine.GridCell
	Start       engine.GridCell
	Goal        engine.GridCell
	Distance    int // Manhattan distance from Start to Goal
	PoolSize    int
	Shapes      map[engine.TileShape]int
	Openings    map[engine.Direction]int
	Missing     []engine.TileShape // catalog shapes with no exact match in the pool
	Path        engine.PathResult
	Warnings    []string
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"configs"}
	}

	files, err := collectFiles(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("Error reading file: %v\n", err)
			continue
		}
		config, err := engine.ParseGameConfig(data)
		if err != nil {
			fmt.Printf("Error parsing level: %v\n", err)
			continue
		}
		analysis, err := analyzeLevel(config)
		if err != nil {
			fmt.Printf("Error building board: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analysis)
	}
}

// collectFiles expands directories into their .yaml/.yml files
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(arg, pattern))
			if err != nil {
				return nil, err
			}
			files = append(files, matches...)
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeLevel(config *engine.GameConfig) (*LevelAnalysis, error) {
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}
	state := eng.GetState()
	pool := engine.NewTilePool(eng.AvailableTiles())

	a := &LevelAnalysis{
		Name:     config.Name,
		Level:    config.Level,
		Cells:    len(state.Cells),
		PoolSize: pool.Count(),
		Shapes:   pool.ShapeCounts(),
		Openings: make(map[engine.Direction]int),
		Path:     *state.Path,
	}
	a.TopLeft, a.BottomRight, _ = eng.Snapshot().Bounds()
	if state.Start != nil && state.Goal != nil {
		a.Start, a.Goal = *state.Start, *state.Goal
		a.Distance = abs(a.Goal.X-a.Start.X) + abs(a.Goal.Y-a.Start.Y)
	}

	for _, cell := range state.Cells {
		switch {
		case cell.Fixed:
			a.Fixed++
		case cell.Tile == nil:
			a.Empty++
		}
	}

	for _, tile := range state.Pool {
		for _, d := range engine.AllDirections() {
			if tile.Mask().Has(d) {
				a.Openings[d]++
			}
		}
	}
	for _, d := range engine.AllDirections() {
		if !pool.CanProvideConnection(d) {
			a.Warnings = append(a.Warnings, fmt.Sprintf("no tile opens %s", d))
		}
	}

	for _, shape := range engine.AllShapes() {
		if len(pool.TilesMatchingExactly(engine.ConnectorsOf(shape))) == 0 {
			a.Missing = append(a.Missing, shape)
		}
	}

	// A finished route covers at least the Manhattan distance plus both ends
	if a.Start != a.Goal && a.PoolSize < a.Distance+1 {
		a.Warnings = append(a.Warnings, fmt.Sprintf("pool has %d tiles, Start and Goal are %d steps apart", a.PoolSize, a.Distance))
	}
	if !a.Path.PathPossible {
		a.Warnings = append(a.Warnings, a.Path.Issues...)
	}
	return a, nil
}

func printAnalysis(w io.Writer, a *LevelAnalysis) {
	fmt.Fprintf(w, "Name: %s (level %d)\n", a.Name, a.Level)
	fmt.Fprintf(w, "Bounds: %s to %s\n", a.TopLeft, a.BottomRight)
	fmt.Fprintf(w, "Cells: %d (%d empty, %d fixed)\n", a.Cells, a.Empty, a.Fixed)
	fmt.Fprintf(w, "Start: %s  Goal: %s  Distance: %d\n", a.Start, a.Goal, a.Distance)
	fmt.Fprintf(w, "Pool: %d tiles\n", a.PoolSize)

	for _, shape := range engine.AllShapes() {
		if n := a.Shapes[shape]; n > 0 {
			fmt.Fprintf(w, "   %s %-24s x%d\n", shape.Glyph(), shape, n)
		}
	}

	var openings []string
	for _, d := range engine.AllDirections() {
		openings = append(openings, fmt.Sprintf("%s=%d", d, a.Openings[d]))
	}
	fmt.Fprintf(w, "Openings: %s\n", strings.Join(openings, " "))

	if len(a.Missing) > 0 {
		names := make([]string, len(a.Missing))
		for i, shape := range a.Missing {
			names[i] = shape.String()
		}
		fmt.Fprintf(w, "Shapes not in pool: %s\n", strings.Join(names, ", "))
	}

	switch {
	case a.Path.CurrentlyConnected:
		fmt.Fprintln(w, "✅ Start and Goal are already connected")
	case a.Path.PathPossible:
		fmt.Fprintf(w, "✅ Route possible, at least %d tiles needed\n", a.Path.EstimatedTilesNeeded)
	}

	if len(a.Warnings) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d problems found\n", len(a.Warnings))
		for _, warning := range a.Warnings {
			fmt.Fprintf(w, "   %s\n", warning)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
