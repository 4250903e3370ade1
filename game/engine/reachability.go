package engine

import (
	"container/list"
	"fmt"
)

// PoolView exposes the remaining inventory as connector masks with counts
type PoolView interface {
	Masks() map[ConnectorMask]int
}

// maskCounts is a detached PoolView
type maskCounts map[ConnectorMask]int

func (m maskCounts) Masks() map[ConnectorMask]int {
	return m
}

// withoutOne returns a copy of pool with one tile of mask removed, if it holds one
func withoutOne(pool PoolView, mask ConnectorMask) PoolView {
	counts := make(maskCounts)
	for m, n := range pool.Masks() {
		counts[m] = n
	}
	if counts[mask] > 0 {
		counts[mask]--
		if counts[mask] == 0 {
			delete(counts, mask)
		}
	}
	return counts
}

func isNilPool(pool PoolView) bool {
	if pool == nil {
		return true
	}
	if p, ok := pool.(*TilePool); ok && p == nil {
		return true
	}
	return false
}

// CheckReachability reports whether Start and Goal are linked by placed tiles and
// whether a link can still be completed from the pool.
// A nil pool means the inventory is unknown and every shape is available.
func CheckReachability(start, goal *GridCell, snap Snapshot, pool PoolView) PathResult {
	undecided := PathResult{
		PathPossible:         true,
		CurrentlyConnected:   false,
		Issues:               []string{},
		EstimatedTilesNeeded: UnknownTilesNeeded,
	}
	if start == nil || goal == nil {
		return undecided
	}
	if snap.Len() == 0 || !snap.Consistent() {
		return undecided
	}
	if !snap.Contains(*start) || !snap.Contains(*goal) {
		return undecided
	}

	if IsConnected(*start, *goal, snap) {
		return PathResult{
			PathPossible:         true,
			CurrentlyConnected:   true,
			Issues:               []string{},
			EstimatedTilesNeeded: 0,
		}
	}

	search := newCompletionSearch(snap, pool)
	needed, reachable := search.minTilesNeeded(*start, *goal)
	if !reachable {
		return PathResult{
			PathPossible:         false,
			CurrentlyConnected:   false,
			Issues:               []string{fmt.Sprintf("no possible path from Start %s to Goal %s", *start, *goal)},
			EstimatedTilesNeeded: UnknownTilesNeeded,
		}
	}
	if !search.unlimited && needed > search.total {
		return PathResult{
			PathPossible:       false,
			CurrentlyConnected: false,
			Issues: []string{fmt.Sprintf("path needs at least %d more tiles but only %d remain in the pool",
				needed, search.total)},
			EstimatedTilesNeeded: needed,
		}
	}
	return PathResult{
		PathPossible:         true,
		CurrentlyConnected:   false,
		Issues:               []string{},
		EstimatedTilesNeeded: needed,
	}
}

// IsConnected runs a breadth-first search over mutual connections between occupied cells
func IsConnected(start, goal GridCell, snap Snapshot) bool {
	if !snap.IsOccupied(start) || !snap.IsOccupied(goal) {
		return false
	}
	if start == goal {
		return true
	}

	visited := map[GridCell]bool{start: true}
	queue := []GridCell{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		mask := snap.cells[current].Mask

		for _, d := range AllDirections() {
			if !mask.Has(d) {
				continue
			}
			next := current.Neighbor(d)
			if visited[next] {
				continue
			}
			state, ok := snap.Lookup(next)
			if !ok || !state.Occupied || !state.Mask.Has(Opposite(d)) {
				continue
			}
			if next == goal {
				return true
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// ConnectedComponent returns every occupied cell linked to from by mutual connections
func ConnectedComponent(from GridCell, snap Snapshot) []GridCell {
	if !snap.IsOccupied(from) {
		return nil
	}
	visited := map[GridCell]bool{from: true}
	order := []GridCell{from}
	for i := 0; i < len(order); i++ {
		current := order[i]
		mask := snap.cells[current].Mask
		for _, d := range AllDirections() {
			next := current.Neighbor(d)
			if !mask.Has(d) || visited[next] {
				continue
			}
			if state, ok := snap.Lookup(next); ok && state.Occupied && state.Mask.Has(Opposite(d)) {
				visited[next] = true
				order = append(order, next)
			}
		}
	}
	return order
}

// noEntry marks the search origin, which was not entered from any side
const noEntry Direction = -1

type searchState struct {
	cell  GridCell
	entry Direction
}

// completionSearch finds the fewest empty cells that must be filled to link two cells.
// Each empty cell may only use shapes still in the pool that agree with its
// occupied neighbours. Placement order and per-shape counts are not modelled.
type completionSearch struct {
	snap      Snapshot
	shapes    []ConnectorMask
	total     int
	unlimited bool
	allowed   map[GridCell][]ConnectorMask
}

func newCompletionSearch(snap Snapshot, pool PoolView) *completionSearch {
	s := &completionSearch{
		snap:    snap,
		allowed: make(map[GridCell][]ConnectorMask),
	}
	if isNilPool(pool) {
		s.unlimited = true
		for _, shape := range AllShapes() {
			s.shapes = append(s.shapes, ConnectorsOf(shape))
		}
		return s
	}
	// Iterate the catalog so the candidate order is deterministic
	counts := pool.Masks()
	for _, shape := range AllShapes() {
		mask := ConnectorsOf(shape)
		if n := counts[mask]; n > 0 {
			s.shapes = append(s.shapes, mask)
		}
	}
	for _, n := range counts {
		if n > 0 {
			s.total += n
		}
	}
	return s
}

// candidates returns the pool shapes that could sit at an empty cell without a conflict
func (s *completionSearch) candidates(pos GridCell) []ConnectorMask {
	if masks, ok := s.allowed[pos]; ok {
		return masks
	}
	var masks []ConnectorMask
	for _, mask := range s.shapes {
		fits := true
		for _, d := range AllDirections() {
			neighbor, ok := s.snap.Lookup(pos.Neighbor(d))
			if ok && neighbor.Occupied && mask.Has(d) != neighbor.Mask.Has(Opposite(d)) {
				fits = false
				break
			}
		}
		if fits {
			masks = append(masks, mask)
		}
	}
	s.allowed[pos] = masks
	return masks
}

// canRoute reports whether some candidate at an empty cell opens both sides.
// noEntry as entry only asks for the exit side.
func (s *completionSearch) canRoute(pos GridCell, entry, exit Direction) bool {
	for _, mask := range s.candidates(pos) {
		if (entry == noEntry || mask.Has(entry)) && mask.Has(exit) {
			return true
		}
	}
	return false
}

// canEnter reports whether a tile at an empty cell could accept a connection on side
func (s *completionSearch) canEnter(pos GridCell, side Direction) bool {
	for _, mask := range s.candidates(pos) {
		if mask.Has(side) {
			return true
		}
	}
	return false
}

// minTilesNeeded runs a 0-1 breadth-first search where entering an empty cell costs one tile
func (s *completionSearch) minTilesNeeded(start, goal GridCell) (int, bool) {
	startState, ok := s.snap.Lookup(start)
	if !ok {
		return 0, false
	}
	startCost := 0
	if !startState.Occupied {
		if len(s.candidates(start)) == 0 {
			return 0, false
		}
		startCost = 1
	}
	if start == goal {
		return startCost, true
	}

	origin := searchState{cell: start, entry: noEntry}
	dist := map[searchState]int{origin: startCost}
	settled := make(map[searchState]bool)
	deque := list.New()
	deque.PushBack(origin)

	for deque.Len() > 0 {
		current := deque.Remove(deque.Front()).(searchState)
		if settled[current] {
			continue
		}
		settled[current] = true
		cost := dist[current]
		if current.cell == goal {
			return cost, true
		}

		cellState := s.snap.cells[current.cell]
		for _, d := range AllDirections() {
			if d == current.entry {
				continue
			}
			if cellState.Occupied {
				if !cellState.Mask.Has(d) {
					continue
				}
			} else if !s.canRoute(current.cell, current.entry, d) {
				continue
			}

			nextPos := current.cell.Neighbor(d)
			nextState, ok := s.snap.Lookup(nextPos)
			if !ok {
				continue
			}
			side := Opposite(d)
			step := 0
			if nextState.Occupied {
				if !nextState.Mask.Has(side) {
					continue
				}
			} else {
				if !s.canEnter(nextPos, side) {
					continue
				}
				step = 1
			}

			next := searchState{cell: nextPos, entry: side}
			if settled[next] {
				continue
			}
			if prev, seen := dist[next]; seen && prev <= cost+step {
				continue
			}
			dist[next] = cost + step
			if step == 0 {
				deque.PushFront(next)
			} else {
				deque.PushBack(next)
			}
		}
	}
	return 0, false
}
