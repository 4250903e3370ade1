package engine

import "math/rand"

// BaseBoardSize is the size of a level 0 generated board
const BaseBoardSize = 4

// ResolveSize returns the number of cells a generated board has at level
func ResolveSize(level int) int {
	size := BaseBoardSize + level
	if size < 1 {
		size = 1
	}
	if size > MaxBoardCells {
		size = MaxBoardCells
	}
	return size
}

// GenerateBoard grows a 4-connected region of size cells from the origin.
// The same seed always yields the same cells in the same order.
func GenerateBoard(size int, seed int64) []GridCell {
	if size < 1 {
		size = 1
	}
	rng := rand.New(rand.NewSource(seed))
	origin := GridCell{}
	cells := []GridCell{origin}
	taken := map[GridCell]bool{origin: true}
	directions := AllDirections()

	for len(cells) < size {
		from := cells[rng.Intn(len(cells))]
		next := from.Neighbor(directions[rng.Intn(len(directions))])
		if taken[next] {
			continue
		}
		taken[next] = true
		cells = append(cells, next)
	}
	return cells
}

// FarthestCell returns the cell with the greatest step distance from start.
// Ties go to the cell listed first.
func FarthestCell(cells []GridCell, start GridCell) GridCell {
	inRegion := make(map[GridCell]bool, len(cells))
	for _, c := range cells {
		inRegion[c] = true
	}
	if !inRegion[start] {
		return start
	}

	dist := map[GridCell]int{start: 0}
	queue := []GridCell{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, d := range AllDirections() {
			next := current.Neighbor(d)
			if !inRegion[next] {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}

	best, bestDist := start, 0
	for _, c := range cells {
		if d, ok := dist[c]; ok && d > bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
