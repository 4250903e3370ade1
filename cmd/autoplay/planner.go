package main

import (
	"math/rand"
	"sort"

	"github.com/wricardo/tile-path-game/game/engine"
)

// defaultSearchBudget caps the number of cells the planner expands per attempt
const defaultSearchBudget = 200000

// Placement is one planned tile drop
type Placement struct {
	TileID   string
	Shape    engine.TileShape
	Position engine.GridCell
}

// RoutePlanner searches for a simple path from Start to Goal together with an
// assignment of pool tiles to its empty cells, then orders the drops so that
// every tile joins the network already on the board.
type RoutePlanner struct {
	cells    map[engine.GridCell]bool
	assigned map[engine.GridCell]engine.ConnectorMask // fixed and planned tiles
	fixed    map[engine.GridCell]bool
	pool     map[engine.ConnectorMask][]engine.TileDefinition
	start    engine.GridCell
	goal     engine.GridCell
	rng      *rand.Rand
	budget   int

	onPath map[engine.GridCell]bool
	route  []Placement
}

// NewRoutePlanner prepares a planner for the board in state. Attempts with a
// different seed break ties between equally promising directions differently.
func NewRoutePlanner(state *engine.GameState, seed int64) *RoutePlanner {
	p := &RoutePlanner{
		cells:    make(map[engine.GridCell]bool),
		assigned: make(map[engine.GridCell]engine.ConnectorMask),
		fixed:    make(map[engine.GridCell]bool),
		pool:     make(map[engine.ConnectorMask][]engine.TileDefinition),
		rng:      rand.New(rand.NewSource(seed)),
		budget:   defaultSearchBudget,
		onPath:   make(map[engine.GridCell]bool),
	}
	for _, cell := range state.Cells {
		p.cells[cell.Position] = true
		if cell.Tile != nil {
			p.assigned[cell.Position] = cell.Tile.Mask()
			p.fixed[cell.Position] = true
		}
	}
	for _, tile := range state.Pool {
		p.pool[tile.Mask()] = append(p.pool[tile.Mask()], tile)
	}
	if state.Start != nil {
		p.start = *state.Start
	}
	if state.Goal != nil {
		p.goal = *state.Goal
	}
	return p
}

// Plan returns the placements in the order they should be made.
// ok is false when no route was found within the search budget.
func (p *RoutePlanner) Plan() ([]Placement, bool) {
	if !p.cells[p.start] || !p.cells[p.goal] {
		return nil, false
	}
	if !p.search(p.start, noEntry) {
		return nil, false
	}
	return p.dropOrder()
}

// noEntry marks the Start cell, which is not entered from any side
const noEntry engine.Direction = -1

// search extends the route through pos, entered from side entry
func (p *RoutePlanner) search(pos engine.GridCell, entry engine.Direction) bool {
	if p.budget <= 0 {
		return false
	}
	p.budget--

	p.onPath[pos] = true
	defer delete(p.onPath, pos)

	if pos == p.goal {
		return p.finish(pos, maskOf(entry))
	}

	for _, exit := range p.exits(pos, entry) {
		next := pos.Neighbor(exit)
		needed := maskOf(entry, exit)

		if p.fixed[pos] {
			if !p.assigned[pos].Covers(needed) {
				continue
			}
			if p.search(next, engine.Opposite(exit)) {
				return true
			}
			continue
		}

		for _, mask := range p.candidates(pos, needed) {
			p.take(pos, mask)
			if p.search(next, engine.Opposite(exit)) {
				return true
			}
			p.giveBack(pos, mask)
		}
	}
	return false
}

// finish closes the route at the Goal cell. The route only counts when its
// tiles can be dropped one by one onto the existing network.
func (p *RoutePlanner) finish(pos engine.GridCell, needed engine.ConnectorMask) bool {
	if p.fixed[pos] {
		if !p.assigned[pos].Covers(needed) {
			return false
		}
		_, ok := p.dropOrder()
		return ok
	}
	for _, mask := range p.candidates(pos, needed) {
		p.take(pos, mask)
		if _, ok := p.dropOrder(); ok {
			return true
		}
		p.giveBack(pos, mask)
	}
	return false
}

// exits lists the sides to leave pos through, closest to the Goal first
func (p *RoutePlanner) exits(pos engine.GridCell, entry engine.Direction) []engine.Direction {
	var exits []engine.Direction
	for _, d := range engine.AllDirections() {
		next := pos.Neighbor(d)
		if d == entry || !p.cells[next] || p.onPath[next] {
			continue
		}
		// A planned tile off the route cannot be walked through
		if _, taken := p.assigned[next]; taken && !p.fixed[next] {
			continue
		}
		exits = append(exits, d)
	}
	p.rng.Shuffle(len(exits), func(i, j int) { exits[i], exits[j] = exits[j], exits[i] })
	sort.SliceStable(exits, func(i, j int) bool {
		return manhattanDistance(pos.Neighbor(exits[i]), p.goal) < manhattanDistance(pos.Neighbor(exits[j]), p.goal)
	})
	return exits
}

// candidates returns pool masks that open every needed side and agree with
// every tile already fixed or planned next to pos. Exact matches come first.
func (p *RoutePlanner) candidates(pos engine.GridCell, needed engine.ConnectorMask) []engine.ConnectorMask {
	var exact, covering []engine.ConnectorMask
	for _, shape := range engine.AllShapes() {
		mask := engine.ConnectorsOf(shape)
		if len(p.pool[mask]) == 0 || !mask.Covers(needed) || !p.agrees(pos, mask) {
			continue
		}
		if mask == needed {
			exact = append(exact, mask)
		} else {
			covering = append(covering, mask)
		}
	}
	return append(exact, covering...)
}

func (p *RoutePlanner) agrees(pos engine.GridCell, mask engine.ConnectorMask) bool {
	for _, d := range engine.AllDirections() {
		neighbor, ok := p.assigned[pos.Neighbor(d)]
		if !ok {
			continue
		}
		if mask.Has(d) != neighbor.Has(engine.Opposite(d)) {
			return false
		}
	}
	return true
}

func (p *RoutePlanner) take(pos engine.GridCell, mask engine.ConnectorMask) {
	tiles := p.pool[mask]
	tile := tiles[len(tiles)-1]
	p.pool[mask] = tiles[:len(tiles)-1]
	p.assigned[pos] = mask
	p.route = append(p.route, Placement{TileID: tile.ID, Shape: tile.Shape, Position: pos})
}

func (p *RoutePlanner) giveBack(pos engine.GridCell, mask engine.ConnectorMask) {
	last := p.route[len(p.route)-1]
	p.route = p.route[:len(p.route)-1]
	p.pool[mask] = append(p.pool[mask], engine.TileDefinition{ID: last.TileID, Shape: last.Shape})
	delete(p.assigned, pos)
}

// dropOrder sorts the route so each tile connects to a tile already on the board.
// The first drop on an empty board is free.
func (p *RoutePlanner) dropOrder() ([]Placement, bool) {
	onBoard := make(map[engine.GridCell]bool, len(p.fixed))
	for pos := range p.fixed {
		onBoard[pos] = true
	}

	remaining := append([]Placement(nil), p.route...)
	ordered := make([]Placement, 0, len(remaining))
	for len(remaining) > 0 {
		next := -1
		for i, placement := range remaining {
			if len(onBoard) == 0 || p.joinsNetwork(placement.Position, onBoard) {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, false
		}
		placement := remaining[next]
		ordered = append(ordered, placement)
		onBoard[placement.Position] = true
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return ordered, true
}

func (p *RoutePlanner) joinsNetwork(pos engine.GridCell, onBoard map[engine.GridCell]bool) bool {
	mask := p.assigned[pos]
	for _, d := range engine.AllDirections() {
		neighbor := pos.Neighbor(d)
		if onBoard[neighbor] && mask.Has(d) && p.assigned[neighbor].Has(engine.Opposite(d)) {
			return true
		}
	}
	return false
}

// maskOf opens the listed sides, ignoring noEntry
func maskOf(sides ...engine.Direction) engine.ConnectorMask {
	open := make([]engine.Direction, 0, len(sides))
	for _, d := range sides {
		if d != noEntry {
			open = append(open, d)
		}
	}
	return engine.NewMask(open...)
}

func manhattanDistance(a, b engine.GridCell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
