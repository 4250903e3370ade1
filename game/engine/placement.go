package engine

import "time"

// AddPlacementToHistory records a placement attempt in the cumulative and current histories
func (gs *GameState) AddPlacementToHistory(tile TileDefinition, pos GridCell, success bool, issues []string) {
	entry := PlacementEntry{
		TileID:          tile.ID,
		Shape:           tile.Shape,
		Position:        pos,
		Success:         success,
		Issues:          issues,
		Timestamp:       time.Now().Unix(),
		PlacementNumber: gs.TotalPlacements + 1,
	}
	// Cumulative history survives resets
	gs.PlacementHistory = append(gs.PlacementHistory, entry)
	gs.TotalPlacements++

	gs.CurrentPlacements = append(gs.CurrentPlacements, entry)
	gs.CurrentPlacementsCount++
}

// SuccessfulPlacements counts the accepted placements since the last reset
func (gs *GameState) SuccessfulPlacements() int {
	count := 0
	for _, entry := range gs.CurrentPlacements {
		if entry.Success {
			count++
		}
	}
	return count
}
