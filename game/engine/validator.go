package engine

import "fmt"

// Quick-check reasons returned by CanPlaceQuick
const (
	ReasonOutOfBounds  = "position outside map bounds"
	ReasonOccupied     = "position already occupied"
	ReasonNoConnection = "no valid connections to existing network"
	ReasonValid        = "valid placement"
)

// ValidatePlacement checks whether a tile with the candidate connectors may be placed at pos.
// Neighbours are scanned in the order Up, Right, Down, Left and issues keep that order.
func ValidatePlacement(pos GridCell, candidate ConnectorMask, snap Snapshot) ValidationResult {
	if snap.IsOccupied(pos) {
		return ValidationResult{
			Valid:  false,
			Issues: []string{fmt.Sprintf("cell %s is already occupied", pos)},
		}
	}

	var issues []string
	mutual := 0
	for _, d := range AllDirections() {
		neighborPos := pos.Neighbor(d)
		neighbor, ok := snap.Lookup(neighborPos)
		if !ok || !neighbor.Occupied {
			continue
		}

		wants := candidate.Has(d)
		neighborWants := neighbor.Mask.Has(Opposite(d))
		switch {
		case wants && neighborWants:
			mutual++
		case wants:
			issues = append(issues, conflictOffered(pos, candidate, d, neighborPos, neighbor.Mask))
		case neighborWants:
			issues = append(issues, conflictExpected(pos, candidate, d, neighborPos, neighbor.Mask))
		}
	}

	if mutual == 0 && snap.OccupiedCount(&pos) > 0 {
		issues = append(issues, fmt.Sprintf("tile %s at %s does not connect to the existing network", candidate, pos))
	}

	return ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

// CanPlace applies the same rules as ValidatePlacement without collecting issues
func CanPlace(pos GridCell, candidate ConnectorMask, snap Snapshot) bool {
	if snap.IsOccupied(pos) {
		return false
	}
	mutual := 0
	for _, d := range AllDirections() {
		neighbor, ok := snap.Lookup(pos.Neighbor(d))
		if !ok || !neighbor.Occupied {
			continue
		}
		wants := candidate.Has(d)
		if wants != neighbor.Mask.Has(Opposite(d)) {
			return false
		}
		if wants {
			mutual++
		}
	}
	return mutual > 0 || snap.OccupiedCount(&pos) == 0
}

// CanPlaceQuick returns a verdict and a single human-readable reason for hover feedback.
// Unlike CanPlace, a position outside the playable area is rejected.
func CanPlaceQuick(pos GridCell, candidate ConnectorMask, snap Snapshot) (bool, string) {
	state, ok := snap.Lookup(pos)
	if !ok {
		return false, ReasonOutOfBounds
	}
	if state.Occupied {
		return false, ReasonOccupied
	}

	mutual := 0
	for _, d := range AllDirections() {
		neighborPos := pos.Neighbor(d)
		neighbor, ok := snap.Lookup(neighborPos)
		if !ok || !neighbor.Occupied {
			continue
		}
		wants := candidate.Has(d)
		neighborWants := neighbor.Mask.Has(Opposite(d))
		switch {
		case wants && neighborWants:
			mutual++
		case wants:
			return false, conflictOffered(pos, candidate, d, neighborPos, neighbor.Mask)
		case neighborWants:
			return false, conflictExpected(pos, candidate, d, neighborPos, neighbor.Mask)
		}
	}

	if mutual == 0 && snap.OccupiedCount(&pos) > 0 {
		return false, ReasonNoConnection
	}
	return true, ReasonValid
}

// CanPlaceWithPath is CanPlace followed by a simulated placement that must keep
// the goal reachable. The path check is skipped when start, goal or pool is nil.
func CanPlaceWithPath(pos GridCell, candidate ConnectorMask, snap Snapshot, start, goal *GridCell, pool PoolView) bool {
	if !CanPlace(pos, candidate, snap) {
		return false
	}
	if start == nil || goal == nil || isNilPool(pool) {
		return true
	}
	after := snap.WithPlacement(pos, candidate)
	remaining := withoutOne(pool, candidate)
	return CheckReachability(start, goal, after, remaining).PathPossible
}

func conflictOffered(pos GridCell, candidate ConnectorMask, d Direction, neighborPos GridCell, neighbor ConnectorMask) string {
	return fmt.Sprintf("connection conflict: tile %s at %s opens %s but %s at %s has no %s connector",
		candidate, pos, d, neighbor, neighborPos, Opposite(d))
}

func conflictExpected(pos GridCell, candidate ConnectorMask, d Direction, neighborPos GridCell, neighbor ConnectorMask) string {
	return fmt.Sprintf("connection conflict: %s at %s opens %s towards %s but tile %s has no %s connector",
		neighbor, neighborPos, Opposite(d), pos, candidate, d)
}
