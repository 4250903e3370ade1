// Package validate checks level files before they are served. Besides the
// structural checks of engine.ValidateGameConfig it builds each board and
// asks the reachability search whether the pool can connect Start to Goal at
// all.
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/tile-path-game/game/engine"
)

// Result captures the outcome of validating a single file.
// Errors explain an invalid file; Info is filled for valid ones.
type Result struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// File loads and validates a single level file
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		return result.fail(fmt.Sprintf("Failed to read file: %v", err))
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		return result.fail(err.Error())
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return result.fail(fmt.Sprintf("Failed to build board: %v", err))
	}

	// Solvability from the initial board
	status := eng.Status()
	if !status.PathPossible {
		result = result.fail("Unsolvable: the pool cannot connect Start and Goal")
		result.Errors = append(result.Errors, status.Issues...)
		return result
	}

	state := eng.GetState()
	fixed, empty := 0, 0
	for _, cell := range state.Cells {
		switch {
		case cell.Fixed:
			fixed++
		case cell.Tile == nil:
			empty++
		}
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s (level %d)", config.Name, config.Level),
		fmt.Sprintf("✓ Board: %d cells, %d empty, %d fixed", len(state.Cells), empty, fixed),
		fmt.Sprintf("✓ Pool: %d tiles", len(state.Pool)),
	)
	if status.CurrentlyConnected {
		result.Info = append(result.Info, "✓ Start and Goal are already connected")
	} else {
		result.Info = append(result.Info, fmt.Sprintf("✓ Solvable: at least %d tiles needed", status.EstimatedTilesNeeded))
	}
	if config.GlobalValidation {
		result.Info = append(result.Info, "✓ Global path validation enabled")
	}
	return result
}

func (r Result) fail(msg string) Result {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
	return r
}

// Dir validates every .yaml/.yml file in dir, sorted by name
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}

// Report prints a concise report and returns whether every result is valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "⚠️  No level files found")
		return false
	case allValid:
		fmt.Fprintln(w, "✅ All levels are valid!")
	default:
		fmt.Fprintln(w, "❌ Some levels have errors")
	}
	return allValid
}
